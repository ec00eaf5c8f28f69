package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/google/uuid"
)

// PostgresAuthRepository implements authentication persistence using a PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// EnsureUser returns the user with phone, creating it first if it does not exist.
func (s *PostgresAuthRepository) EnsureUser(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO users (id, phone) VALUES ($1, $2)
		ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		RETURNING id, phone, password_hash
	`, uuid.NewString(), phone).Scan(&u.ID, &u.Phone, &u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("EnsureUser: %w", err)
	}
	return &u, nil
}

// GetUserByPhone returns the user with phone, or ErrNotFound.
func (s *PostgresAuthRepository) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, phone, password_hash FROM users WHERE phone = $1`,
		phone,
	).Scan(&u.ID, &u.Phone, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByPhone: %w", err)
	}
	return &u, nil
}

// SetPasswordHash stores a new password hash for the user.
func (s *PostgresAuthRepository) SetPasswordHash(ctx context.Context, userID string, hash []byte) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, userID)
	if err != nil {
		return fmt.Errorf("SetPasswordHash: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateSession stores a new session.
func (s *PostgresAuthRepository) CreateSession(ctx context.Context, sess models.Session) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		sess.Token, sess.UserID, sess.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("CreateSession: %w", err)
	}
	return nil
}

// GetSession returns the unexpired session for token, or ErrNotFound.
func (s *PostgresAuthRepository) GetSession(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	var sess models.Session
	err := s.DB.QueryRowContext(ctx, `
		SELECT s.token, s.user_id, u.phone, s.expires_at
		  FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token = $1 AND s.expires_at > $2
	`, token, now.UTC()).Scan(&sess.Token, &sess.UserID, &sess.Phone, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetSession: %w", err)
	}
	return &sess, nil
}

// DeleteSession removes the session for token. Deleting a missing session is not an error.
func (s *PostgresAuthRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("DeleteSession: %w", err)
	}
	return nil
}

// SaveOTP stores the pending code for a phone, replacing any earlier one.
func (s *PostgresAuthRepository) SaveOTP(ctx context.Context, otp models.OTP) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO otp_codes (phone, code_hash, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO UPDATE SET
			code_hash = EXCLUDED.code_hash,
			expires_at = EXCLUDED.expires_at
	`, otp.Phone, otp.CodeHash, otp.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("SaveOTP: %w", err)
	}
	return nil
}

// GetOTP returns the pending code for phone, or ErrNotFound.
func (s *PostgresAuthRepository) GetOTP(ctx context.Context, phone string) (*models.OTP, error) {
	var otp models.OTP
	err := s.DB.QueryRowContext(ctx,
		`SELECT phone, code_hash, expires_at FROM otp_codes WHERE phone = $1`,
		phone,
	).Scan(&otp.Phone, &otp.CodeHash, &otp.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetOTP: %w", err)
	}
	return &otp, nil
}

// DeleteOTP consumes the pending code for phone.
func (s *PostgresAuthRepository) DeleteOTP(ctx context.Context, phone string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM otp_codes WHERE phone = $1`, phone); err != nil {
		return fmt.Errorf("DeleteOTP: %w", err)
	}
	return nil
}
