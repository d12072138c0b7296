package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opinionboard/opinion-service/internal/domain"
)

// apiError is the wire shape for every failure: a human-readable message and
// an optional detail string.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message, detail string) {
	writeJSON(w, statusCode, apiError{Message: message, Error: detail})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"message": message})
}

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Post not found"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "Too many concurrent updates, please retry"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusInternalServerError, "Internal Server Error"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, message := mapDomainError(err)
	detail := ""
	if status == http.StatusInternalServerError {
		detail = err.Error()
	}
	writeError(w, status, message, detail)
}
