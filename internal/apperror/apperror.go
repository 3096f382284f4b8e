// Package apperror carries the failure taxonomy the engines return to the
// HTTP boundary. Handlers map a Kind to a status code instead of inspecting
// error strings.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind int

const (
	// KindValidation covers malformed, missing, or out-of-range input.
	KindValidation Kind = iota
	// KindForbidden covers role, domain, or ownership mismatches.
	KindForbidden
	// KindNotFound covers references to rows that do not exist.
	KindNotFound
	// KindConflict covers duplicate or already-settled state.
	KindConflict
)

// Error is a typed engine failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Validationf builds a KindValidation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Forbiddenf builds a KindForbidden error.
func Forbiddenf(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a KindNotFound error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflictf builds a KindConflict error.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of err and whether err is an apperror.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is an apperror of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
