package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/peasomy/identity/internal/domain"
	"github.com/peasomy/identity/internal/mailer"
	"github.com/peasomy/identity/internal/repo/postgres"
	"github.com/peasomy/identity/pkg/auth"
	"github.com/peasomy/identity/pkg/config"
	"github.com/peasomy/identity/pkg/events"
	"github.com/peasomy/identity/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt work factor; verification lands in the tens of milliseconds.
const passwordHashCost = 10

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error)
	VerifyEmail(ctx context.Context, secret string) (*domain.User, error)
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, secret, newPassword string) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type authService struct {
	userRepo postgres.UserRepository
	mailer   mailer.Service
	eventBus events.Publisher
	config   *config.Config
}

func NewAuthService(
	userRepo postgres.UserRepository,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) AuthService {
	return &authService{
		userRepo: userRepo,
		mailer:   mailer,
		eventBus: eventBus,
		config:   config,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	// Uniqueness rides on the storage constraint; a duplicate email
	// comes back as domain.ErrDuplicateEmail.
	user, err := s.userRepo.Create(ctx, req, string(passwordHash))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	secret, expiresAt := newVerificationSecret(s.config.Auth.EmailVerificationTTL)
	if err := s.userRepo.SetEmailVerification(ctx, user.ID, secret, expiresAt); err != nil {
		logger.ErrorContext(ctx, "Failed to store verification secret", "error", err, "user_id", user.ID)
		return nil, "", fmt.Errorf("failed to create verification secret: %w", err)
	}

	// Delivery failure never fails registration.
	verifyURL := s.buildVerificationURL(secret)
	if err := s.mailer.SendVerificationEmail(user.Email, user.FirstName, verifyURL, secret); err != nil {
		logger.ErrorContext(ctx, "Failed to send verification email", "error", err, "user_id", user.ID)
	}

	s.publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		RegisteredAt: user.CreatedAt,
	})

	token, err := auth.NewAccessToken(user.ID, user.Email, user.Role, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create access token: %w", err)
	}

	return user, token, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	// Verification is informational: an unverified account may log in.

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.WarnContext(ctx, "Failed to update last login", "error", err, "user_id", user.ID)
	} else {
		now := time.Now()
		user.LastLogin = &now
	}

	s.publish(ctx, events.UserLoggedIn, events.UserLoggedInEvent{
		UserID:     user.ID,
		Email:      user.Email,
		LoggedInAt: time.Now(),
	})

	token, err := auth.NewAccessToken(user.ID, user.Email, user.Role, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create access token: %w", err)
	}

	return user, token, nil
}

func (s *authService) VerifyEmail(ctx context.Context, secret string) (*domain.User, error) {
	user, err := s.userRepo.ConsumeEmailVerification(ctx, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to consume verification secret: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidOrExpiredToken
	}

	s.publish(ctx, events.UserEmailVerified, events.UserEmailVerifiedEvent{
		UserID:     user.ID,
		Email:      user.Email,
		VerifiedAt: time.Now(),
	})

	return user, nil
}

func (s *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// Don't reveal if an account exists.
		return nil
	}

	if user.IsVerified {
		return fmt.Errorf("%w: account is already verified", domain.ErrValidation)
	}

	secret, expiresAt := newVerificationSecret(s.config.Auth.EmailVerificationTTL)
	if err := s.userRepo.SetEmailVerification(ctx, user.ID, secret, expiresAt); err != nil {
		return fmt.Errorf("failed to store verification secret: %w", err)
	}

	verifyURL := s.buildVerificationURL(secret)
	if err := s.mailer.SendVerificationEmail(user.Email, user.FirstName, verifyURL, secret); err != nil {
		logger.ErrorContext(ctx, "Failed to send verification email", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// Helpers

// newVerificationSecret returns 32 bytes of entropy as 64 hex chars
// plus its expiry instant.
func newVerificationSecret(ttl time.Duration) (string, time.Time) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return hex.EncodeToString(b), time.Now().Add(ttl)
}

func (s *authService) buildVerificationURL(secret string) string {
	return fmt.Sprintf("%s/verify-email?token=%s", s.config.App.FrontendURL, secret)
}

func (s *authService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
