package service

import (
	"context"
	"fmt"
	"time"

	"github.com/peasomy/identity/internal/domain"
	"github.com/peasomy/identity/pkg/events"
	"github.com/peasomy/identity/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// Don't reveal if an account exists.
		return nil
	}

	secret, expiresAt := newVerificationSecret(s.config.Auth.PasswordResetTTL)
	if err := s.userRepo.SetPasswordReset(ctx, user.ID, secret, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset secret: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.App.FrontendURL, secret)
	if err := s.mailer.SendPasswordResetEmail(user.Email, user.FirstName, resetURL); err != nil {
		logger.ErrorContext(ctx, "Failed to send password reset email", "error", err, "user_id", user.ID)
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, secret, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), passwordHashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.ConsumePasswordReset(ctx, secret, string(passwordHash))
	if err != nil {
		return fmt.Errorf("failed to consume reset secret: %w", err)
	}
	if user == nil {
		return domain.ErrInvalidOrExpiredToken
	}

	s.publish(ctx, events.UserPasswordReset, events.UserPasswordResetEvent{
		UserID:  user.ID,
		Email:   user.Email,
		ResetAt: time.Now(),
	})

	return nil
}
