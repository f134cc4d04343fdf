package domain

import "errors"

// Domain failure kinds. Distinct causes are deliberately collapsed:
// ErrInvalidCredentials covers both unknown email and wrong password,
// ErrInvalidOrExpiredToken covers both no-match and expired secrets.
var (
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateEmail        = errors.New("email already in use")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired verification token")
	ErrNotFound              = errors.New("not found")
)
