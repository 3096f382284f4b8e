package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/nexatech/crm-backend/internal/db"
	"github.com/nexatech/crm-backend/internal/modules/auth"
	"github.com/nexatech/crm-backend/internal/modules/corporate"
	"github.com/nexatech/crm-backend/internal/modules/employee"
	"github.com/nexatech/crm-backend/internal/modules/reminder"
	"github.com/nexatech/crm-backend/internal/modules/report"
	"github.com/nexatech/crm-backend/internal/modules/retail"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	migrationsDir := envOr("MIGRATIONS_DIR", "migrations")
	if err := db.Migrate(databaseURL, migrationsDir); err != nil {
		log.Fatal(err)
	}
	log.Println("database ready")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{envOr("CORS_ORIGIN", "*")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	authn := auth.NewMiddleware(jwtSecret).RequireAuth

	// ── Identity ────────────────────────────────────────────
	employeeRepo := employee.NewPostgresRepository(conn)
	employeeService := employee.NewService(employeeRepo)
	employee.NewHandler(employeeService, authn).RegisterRoutes(router)

	authService := auth.NewService(employeeRepo, jwtSecret)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Retail leads ────────────────────────────────────────
	retailRepo := retail.NewPostgresRepository(conn)
	retailService := retail.NewService(retailRepo)
	retail.NewHandler(retailService, authn).RegisterRoutes(router)

	// ── Corporate leads ─────────────────────────────────────
	blobs, err := newBlobStore()
	if err != nil {
		log.Fatal(err)
	}
	corporateRepo := corporate.NewPostgresRepository(conn)
	corporateService := corporate.NewService(corporateRepo, blobs)
	corporate.NewHandler(corporateService, authn).RegisterRoutes(router)

	// ── Reminders ───────────────────────────────────────────
	reminderRepo := reminder.NewPostgresRepository(conn)
	reminderService := reminder.NewService(reminderRepo)
	reminder.NewHandler(reminderService, authn).RegisterRoutes(router)

	sweeper := reminder.NewSweeper(reminderRepo, nil)
	sweeper.Start(context.Background(), 9, 30)

	// ── Analytics ───────────────────────────────────────────
	reportRepo := report.NewPostgresRepository(conn)
	reportService := report.NewService(reportRepo)
	report.NewHandler(reportService, authn).RegisterRoutes(router)

	// Locally stored proposals are served straight from disk.
	uploadDir := envOr("UPLOAD_DIR", "uploads")
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	port := envOr("PORT", "8080")
	log.Printf("listening on :%s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}

func newBlobStore() (corporate.BlobStore, error) {
	if dsn := os.Getenv("CLOUDINARY_URL"); dsn != "" {
		return corporate.NewCloudinaryStore(dsn)
	}
	return corporate.NewDiskStore(envOr("UPLOAD_DIR", "uploads"))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
