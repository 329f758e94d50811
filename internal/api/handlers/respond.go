package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/aldis-z/notice-board/internal/domain"
	"github.com/aldis-z/notice-board/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

// writeDomainError maps the service error taxonomy onto HTTP statuses.
// Everything unrecognized is a 500 with a generic body so internals never
// leak to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var rateLimitedErr *domain.RateLimitedError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, validationErr.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidCode), errors.Is(err, domain.ErrCodeExpired):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrNoProfile):
		writeError(w, "No profile for this account", http.StatusForbidden)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, "You do not own this resource", http.StatusForbidden)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, "Conflict, please retry", http.StatusConflict)
	case errors.Is(err, domain.ErrExternalService):
		writeError(w, "Upstream storage unavailable", http.StatusBadGateway)
	case errors.As(err, &rateLimitedErr):
		retryAfter := int(math.Ceil(rateLimitedErr.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		writeError(w, rateLimitedErr.Error(), http.StatusTooManyRequests)
	default:
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}
