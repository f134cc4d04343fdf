package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/peasomy/identity/internal/domain"
	"github.com/peasomy/identity/internal/http/handlers"
	authmw "github.com/peasomy/identity/internal/http/middleware"
	"github.com/peasomy/identity/internal/upload"
	"github.com/peasomy/identity/pkg/auth"
	"github.com/peasomy/identity/pkg/config"
)

// ---------- Mocks ----------

type mockAuthService struct {
	user      *domain.User
	token     string
	err       error
	verifyErr error
}

func (m *mockAuthService) Register(context.Context, *domain.RegisterRequest) (*domain.User, string, error) {
	return m.user, m.token, m.err
}

func (m *mockAuthService) Login(context.Context, *domain.LoginRequest) (*domain.User, string, error) {
	return m.user, m.token, m.err
}

func (m *mockAuthService) VerifyEmail(context.Context, string) (*domain.User, error) {
	return m.user, m.verifyErr
}

func (m *mockAuthService) ResendVerification(context.Context, string) error { return m.err }
func (m *mockAuthService) ForgotPassword(context.Context, string) error     { return m.err }
func (m *mockAuthService) ResetPassword(context.Context, string, string) error {
	return m.err
}

func (m *mockAuthService) GetUser(context.Context, int64) (*domain.User, error) {
	return m.user, m.err
}

// ---------- Helpers ----------

func testUser() *domain.User {
	return &domain.User{
		ID:           1,
		Role:         domain.RoleGuest,
		Email:        "a@x.com",
		PasswordHash: "$2a$10$secret-hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Phone:        "+1 555 0100",
	}
}

func newRouter(svc *mockAuthService) http.Handler {
	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTL: time.Hour},
		App:  config.AppConfig{BackendURL: "http://localhost:5000"},
	}
	h := handlers.New(svc, upload.NewStore("uploads/images", 5*1024*1024), cfg)

	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/verify-email/{token}", h.VerifyEmail)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireJWT("test-secret"))
		r.Get("/me", h.Me)
	})
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ---------- Tests ----------

func TestRegisterHandler_Success(t *testing.T) {
	svc := &mockAuthService{user: testUser(), token: "signed-token"}
	router := newRouter(svc)

	rec := postJSON(t, router, "/register", map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "a@x.com",
		"password":   "password1",
		"phone":      "+1 555 0100",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Token string          `json:"token"`
			User  *domain.Profile `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("expected success status, got %q", resp.Status)
	}
	if resp.Data.Token != "signed-token" {
		t.Fatalf("token missing from response: %q", resp.Data.Token)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Fatalf("response leaks password hash: %s", rec.Body.String())
	}
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	svc := &mockAuthService{err: domain.ErrDuplicateEmail}
	router := newRouter(svc)

	rec := postJSON(t, router, "/register", map[string]string{"email": "a@x.com"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "EMAIL_EXISTS") {
		t.Fatalf("expected EMAIL_EXISTS code, got %s", rec.Body.String())
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{err: domain.ErrInvalidCredentials}
	router := newRouter(svc)

	rec := postJSON(t, router, "/login", map[string]string{"email": "a@x.com", "password": "wrong"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "UNAUTHORIZED") {
		t.Fatalf("expected UNAUTHORIZED code, got %s", rec.Body.String())
	}
}

func TestVerifyEmailHandler_InvalidSecret(t *testing.T) {
	svc := &mockAuthService{verifyErr: domain.ErrInvalidOrExpiredToken}
	router := newRouter(svc)

	req := httptest.NewRequest("GET", "/verify-email/stale-secret", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_TOKEN") {
		t.Fatalf("expected INVALID_TOKEN code, got %s", rec.Body.String())
	}
}

func TestMeHandler_RequiresToken(t *testing.T) {
	router := newRouter(&mockAuthService{user: testUser()})

	req := httptest.NewRequest("GET", "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestMeHandler_WithToken(t *testing.T) {
	router := newRouter(&mockAuthService{user: testUser()})

	token, err := auth.NewAccessToken(1, "a@x.com", domain.RoleGuest, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"a@x.com"`) {
		t.Fatalf("expected user email in response, got %s", rec.Body.String())
	}
}
