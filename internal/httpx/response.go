// Package httpx holds the JSON response helpers shared by every handler.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/nexatech/crm-backend/internal/apperror"
)

// ErrorResponse is the wire shape of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// JSONError writes an ErrorResponse with the given status.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg})
}

// Err maps a service failure to a transport status. Typed apperrors carry
// their own status; anything else is an internal failure.
func Err(w http.ResponseWriter, err error) {
	if kind, ok := apperror.KindOf(err); ok {
		JSONError(w, statusFor(kind), err.Error())
		return
	}
	JSONError(w, http.StatusInternalServerError, "operation failed")
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
