package corporate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// BlobStore persists uploaded proposal files. Put returns the stored path
// recorded in the documents table; URL resolves a stored path back to a
// downloadable location.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	URL(storedPath string) string
}

// ObjectKey builds a collision-free storage key from the original filename.
func ObjectKey(leadID int64, fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	safe := b.String()
	if safe == "" {
		safe = "proposal"
	}
	return fmt.Sprintf("proposals/%d/%s_%s", leadID, safe, uuid.New().String())
}

type cloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore connects to Cloudinary from a CLOUDINARY_URL style DSN.
func NewCloudinaryStore(cloudinaryURL string) (BlobStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary: %w", err)
	}
	return &cloudinaryStore{cld: cld}, nil
}

func (s *cloudinaryStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	overwrite := false
	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:     key,
		Overwrite:    &overwrite,
		ResourceType: "raw",
	})
	if err != nil {
		return "", fmt.Errorf("upload proposal: %w", err)
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	return strings.Replace(result.URL, "http://", "https://", 1), nil
}

func (s *cloudinaryStore) URL(storedPath string) string { return storedPath }

type diskStore struct {
	root string
}

// NewDiskStore stores uploads under root on the local filesystem. It is the
// fallback when no Cloudinary DSN is configured.
func NewDiskStore(root string) (BlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &diskStore{root: root}, nil
}

func (s *diskStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	rel := key + ".pdf"
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return rel, nil
}

func (s *diskStore) URL(storedPath string) string {
	if strings.HasPrefix(storedPath, "http://") || strings.HasPrefix(storedPath, "https://") {
		return storedPath
	}
	return "/uploads/" + storedPath
}
