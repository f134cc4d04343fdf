package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/peasomy/identity/internal/domain"
)

// DB is the slice of pgxpool.Pool the repositories need. pgxmock
// satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository interface {
	Create(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id int64) error
	SetEmailVerification(ctx context.Context, id int64, secret string, expiresAt time.Time) error
	ConsumeEmailVerification(ctx context.Context, secret string) (*domain.User, error)
	SetPasswordReset(ctx context.Context, id int64, secret string, expiresAt time.Time) error
	ConsumePasswordReset(ctx context.Context, secret, passwordHash string) (*domain.User, error)
}

type userRepository struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

const userCols = `id, role, email, password_hash, first_name, last_name, phone, profile_picture, is_verified, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Role, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.ProfilePicture, &u.IsVerified, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persists a new account. Email uniqueness rides on the users
// table constraint; a concurrent duplicate surfaces here as
// domain.ErrDuplicateEmail rather than via a read-then-insert check.
func (r *userRepository) Create(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.User, error) {
	const q = `
		INSERT INTO users (role, email, password_hash, first_name, last_name, phone, profile_picture, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false)
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, q,
		req.Role, req.Email, passwordHash, req.FirstName, req.LastName, req.Phone, req.ProfilePicture,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}

	return u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, q, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	const q = `UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// SetEmailVerification records a fresh verification secret, replacing
// any outstanding one for the account.
func (r *userRepository) SetEmailVerification(ctx context.Context, id int64, secret string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET verification_token = $2, verification_token_expiry = $3, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.db.Exec(ctx, q, id, secret, expiresAt)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// ConsumeEmailVerification resolves and consumes a verification secret
// in one statement: the secret must match and still be live, and the
// row update clears it while flipping is_verified. Returns (nil, nil)
// for no match, already used, or expired alike.
func (r *userRepository) ConsumeEmailVerification(ctx context.Context, secret string) (*domain.User, error) {
	const q = `
		UPDATE users
		SET is_verified = true, verification_token = NULL, verification_token_expiry = NULL, updated_at = now()
		WHERE verification_token = $1
		  AND verification_token_expiry > now()
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, q, secret))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) SetPasswordReset(ctx context.Context, id int64, secret string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET reset_password_token = $2, reset_password_expiry = $3, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.db.Exec(ctx, q, id, secret, expiresAt)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// ConsumePasswordReset stores the new hash and clears the reset secret
// in the same statement, so the secret cannot be replayed.
func (r *userRepository) ConsumePasswordReset(ctx context.Context, secret, passwordHash string) (*domain.User, error) {
	const q = `
		UPDATE users
		SET password_hash = $2, reset_password_token = NULL, reset_password_expiry = NULL, updated_at = now()
		WHERE reset_password_token = $1
		  AND reset_password_expiry > now()
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, q, secret, passwordHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}
