package api

import (
	"errors"
	"net/http"

	"github.com/stress-monitor/esms/internal/validation"
)

// Sentinel errors produced by handlers, mapped deterministically to envelope
// codes and HTTP statuses.
var (
	ErrNotFound   = errors.New("NOT_FOUND")
	ErrBadRequest = errors.New("BAD_REQUEST")
)

// WriteErrorFrom maps an error to its envelope code and HTTP status and
// writes the response.
func WriteErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, validation.ErrValidation):
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, ErrBadRequest):
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	case errors.Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
	}
}
