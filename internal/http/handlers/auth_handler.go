package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/peasomy/identity/internal/domain"
	"github.com/peasomy/identity/internal/http/middleware"
	"github.com/peasomy/identity/internal/http/response"
	"github.com/peasomy/identity/internal/upload"
)

// Register handles user registration. The payload is either JSON or a
// multipart form carrying an optional profile_picture image.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.config.Upload.MaxFileSize + 1<<20); err != nil {
			response.BadRequest(w, "Invalid multipart form")
			return
		}
		req.FirstName = r.FormValue("first_name")
		req.LastName = r.FormValue("last_name")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
		req.Phone = r.FormValue("phone")
		req.Role = r.FormValue("role")

		file, header, err := r.FormFile("profile_picture")
		switch {
		case err == nil:
			defer file.Close()
			path, err := h.uploads.SaveProfilePicture(file, header)
			if err != nil {
				if errors.Is(err, upload.ErrFileTooLarge) || errors.Is(err, upload.ErrUnsupportedType) {
					response.BadRequest(w, err.Error())
					return
				}
				writeServiceError(w, r, err)
				return
			}
			req.ProfilePicture = path
		case errors.Is(err, http.ErrMissingFile):
			// picture is optional
		default:
			response.BadRequest(w, "Invalid profile picture upload")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid JSON format")
			return
		}
	}

	user, token, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "User registered successfully. Please verify your email.",
		"data": map[string]interface{}{
			"user":  user.PublicProfile(h.config.App.BackendURL),
			"token": token,
		},
	})
}

// Login handles user authentication
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	user, token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"user":  user.PublicProfile(h.config.App.BackendURL),
			"token": token,
		},
	})
}

// VerifyEmail consumes a verification secret delivered by email
func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "token")
	if secret == "" {
		response.BadRequest(w, "Missing verification token")
		return
	}

	if _, err := h.authService.VerifyEmail(r.Context(), secret); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Email verified successfully",
	})
}

// ResendVerification issues a fresh verification secret
func (h *Handlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		response.BadRequest(w, "Email is required")
		return
	}

	if err := h.authService.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Verification email sent",
	})
}

// ForgotPassword issues a password reset secret
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		response.BadRequest(w, "Email is required")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "If the email exists, a reset link has been sent",
	})
}

// ResetPassword consumes a reset secret and stores a new password
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		response.BadRequest(w, "Token and password are required")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Password reset successfully",
	})
}

// Me returns the authenticated account's public view
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		response.Unauthorized(w, "Missing authentication")
		return
	}

	user, err := h.authService.GetUser(r.Context(), claims.Sub)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"user": user.PublicProfile(h.config.App.BackendURL),
		},
	})
}
