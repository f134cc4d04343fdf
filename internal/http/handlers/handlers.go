package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/peasomy/identity/internal/domain"
	"github.com/peasomy/identity/internal/http/response"
	"github.com/peasomy/identity/internal/service"
	"github.com/peasomy/identity/internal/upload"
	"github.com/peasomy/identity/pkg/config"
	"github.com/peasomy/identity/pkg/logger"
)

type Handlers struct {
	authService service.AuthService
	uploads     *upload.Store
	config      *config.Config
}

func New(authService service.AuthService, uploads *upload.Store, config *config.Config) *Handlers {
	return &Handlers{
		authService: authService,
		uploads:     uploads,
		config:      config,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeServiceError maps domain failures to the boundary contract.
// Anything outside the taxonomy becomes an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		response.WriteError(w, http.StatusBadRequest, "Email already in use", response.CodeEmailExists)
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, domain.ErrInvalidOrExpiredToken):
		response.WriteError(w, http.StatusBadRequest, "Invalid or expired verification token", response.CodeInvalidToken)
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "User not found")
	default:
		logger.ErrorContext(r.Context(), "Unhandled service error", "error", err)
		response.InternalError(w, "Something went wrong")
	}
}
