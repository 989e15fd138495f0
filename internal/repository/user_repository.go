package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stocktrackhq/stocktrack-backend/internal/apperrors"
	"github.com/stocktrackhq/stocktrack-backend/internal/model"
)

// UserRepository provides data access methods for the user table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, username, email, password_hash, is_active, created_at, last_login_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var lastLogin sql.NullTime

	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &lastLogin)
	if err == sql.ErrNoRows {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to scan user row: %w", err)
	}
	if lastLogin.Valid {
		u.LastLoginAt = lastLogin.Time
	}
	return u, nil
}

// Insert stores a new user.
func (r *UserRepository) Insert(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO user (id, username, email, password_hash, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.IsActive, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM user WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM user WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// UsernameExists reports whether a username is already taken.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM user WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query username: %w", err)
	}
	return n > 0, nil
}

// EmailExists reports whether an email is already registered.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM user WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query email: %w", err)
	}
	return n > 0, nil
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE user SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin stamps the last successful login time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE user SET last_login_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
