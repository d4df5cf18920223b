package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dadsadvice/internal/database"
	"dadsadvice/internal/models"
)

const userColumns = `id, password_hash, role, name, COALESCE(father_id, ''), created_at, updated_at`

// UserRepository handles database operations for fathers and children
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user and returns the stored row. A taken id
// yields an error wrapping database.ErrDuplicateKey.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	query := `
		INSERT INTO users (id, password_hash, role, name, father_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.PasswordHash,
		string(user.Role),
		user.Name,
		nullString(user.FatherID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if database.IsUniqueViolation(err) {
		return nil, fmt.Errorf("user %s: %w", user.ID, database.ErrDuplicateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return r.GetUserByID(ctx, user.ID)
}

// GetUserByID retrieves a user by ID, returning nil when none exists
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetFatherByID retrieves a user by ID only if that user is a father
func (r *UserRepository) GetFatherByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND role = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id, string(models.RoleFather)))
}

// ListUsers returns every user, fathers first so imports satisfy the father_id reference
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY CASE WHEN role = 'father' THEN 0 ELSE 1 END, created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var role string
		if err := rows.Scan(&u.ID, &u.PasswordHash, &role, &u.Name, &u.FatherID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Role = models.Role(role)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// DeleteAllUsers removes every user. Advices go with them through the cascade,
// but they are deleted explicitly first for dialects that skip it.
func (r *UserRepository) DeleteAllUsers(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM advices`); err != nil {
		return fmt.Errorf("failed to delete advices: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE role = 'child'`); err != nil {
		return fmt.Errorf("failed to delete children: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var role string
	err := row.Scan(
		&user.ID,
		&user.PasswordHash,
		&role,
		&user.Name,
		&user.FatherID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Role = models.Role(role)
	return user, nil
}

// nullString stores empty optional text columns as NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
