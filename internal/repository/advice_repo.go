package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dadsadvice/internal/database"
	"dadsadvice/internal/models"
)

const adviceColumns = `id, author_id, category, target_age, content, COALESCE(media_url, ''), COALESCE(media_type, ''),
	unlock_type, COALESCE(password, ''), is_read, is_favorite, created_at, updated_at`

// AdviceRepository handles database operations for advices
type AdviceRepository struct {
	db database.DBTX
}

// NewAdviceRepository creates a new advice repository
func NewAdviceRepository(db database.DBTX) *AdviceRepository {
	return &AdviceRepository{db: db}
}

// CreateAdvice inserts an advice and returns the stored row
func (r *AdviceRepository) CreateAdvice(ctx context.Context, advice *models.Advice) (*models.Advice, error) {
	now := time.Now().UTC()
	if advice.CreatedAt.IsZero() {
		advice.CreatedAt = now
	}
	if advice.UpdatedAt.IsZero() {
		advice.UpdatedAt = advice.CreatedAt
	}

	query := `
		INSERT INTO advices (id, author_id, category, target_age, content, media_url, media_type,
			unlock_type, password, is_read, is_favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		advice.ID,
		advice.AuthorID,
		advice.Category,
		advice.TargetAge,
		advice.Content,
		nullString(advice.MediaURL),
		nullString(string(advice.MediaType)),
		string(advice.UnlockType),
		nullString(advice.PasswordHash),
		advice.IsRead,
		advice.IsFavorite,
		advice.CreatedAt,
		advice.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create advice: %w", err)
	}

	return r.GetAdviceByID(ctx, advice.ID)
}

// GetAdviceByID retrieves an advice by ID, returning nil when none exists
func (r *AdviceRepository) GetAdviceByID(ctx context.Context, id string) (*models.Advice, error) {
	query := `SELECT ` + adviceColumns + ` FROM advices WHERE id = ?`
	advice, err := scanAdvice(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get advice: %w", err)
	}
	return advice, nil
}

// ListAdvices returns the advices written by authorID, newest first
func (r *AdviceRepository) ListAdvices(ctx context.Context, authorID string, filter models.AdviceFilter) ([]models.Advice, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + adviceColumns + ` FROM advices WHERE author_id = ?`)
	args := []interface{}{authorID}

	if filter.Category != "" {
		sb.WriteString(` AND category = ?`)
		args = append(args, filter.Category)
	}
	if filter.TargetAge != nil {
		sb.WriteString(` AND target_age = ?`)
		args = append(args, *filter.TargetAge)
	}
	sb.WriteString(` ORDER BY created_at DESC, id`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list advices: %w", err)
	}
	defer rows.Close()

	advices := []models.Advice{}
	for rows.Next() {
		advice, err := scanAdvice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advice: %w", err)
		}
		advices = append(advices, *advice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list advices: %w", err)
	}
	return advices, nil
}

// UpdateAdvice replaces the author-editable fields of an advice.
// It returns nil when the row no longer exists.
func (r *AdviceRepository) UpdateAdvice(ctx context.Context, advice *models.Advice) (*models.Advice, error) {
	advice.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE advices
		SET category = ?, target_age = ?, content = ?, media_url = ?, media_type = ?,
			unlock_type = ?, password = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		advice.Category,
		advice.TargetAge,
		advice.Content,
		nullString(advice.MediaURL),
		nullString(string(advice.MediaType)),
		string(advice.UnlockType),
		nullString(advice.PasswordHash),
		advice.UpdatedAt,
		advice.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update advice: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}

	return r.GetAdviceByID(ctx, advice.ID)
}

// DeleteAdvice removes an advice. It reports whether a row was deleted.
func (r *AdviceRepository) DeleteAdvice(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM advices WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete advice: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete advice: %w", err)
	}
	return n > 0, nil
}

// MarkRead sets is_read on an advice. It reports whether the row exists.
func (r *AdviceRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	return r.setFlag(ctx, "is_read", id, true)
}

// SetFavorite stores the favorite flag. It reports whether the row exists.
func (r *AdviceRepository) SetFavorite(ctx context.Context, id string, favorite bool) (bool, error) {
	return r.setFlag(ctx, "is_favorite", id, favorite)
}

// setFlag only ever receives the literal column names above
func (r *AdviceRepository) setFlag(ctx context.Context, column, id string, value bool) (bool, error) {
	query := `UPDATE advices SET ` + column + ` = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, value, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update %s: %w", column, err)
	}
	return n > 0, nil
}

// FatherStats counts a father's advices and how many of them were read
func (r *AdviceRepository) FatherStats(ctx context.Context, authorID string) (*models.FatherStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_read THEN 1 ELSE 0 END), 0)
		FROM advices
		WHERE author_id = ?
	`
	stats := &models.FatherStats{}
	if err := r.db.QueryRowContext(ctx, query, authorID).Scan(&stats.Total, &stats.Read); err != nil {
		return nil, fmt.Errorf("failed to count advices: %w", err)
	}
	stats.Unread = stats.Total - stats.Read
	return stats, nil
}

// ChildStats counts the advices of a father relative to the reader's age
func (r *AdviceRepository) ChildStats(ctx context.Context, authorID string, age int) (*models.ChildStats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN target_age <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN target_age > ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_favorite THEN 1 ELSE 0 END), 0)
		FROM advices
		WHERE author_id = ?
	`
	stats := &models.ChildStats{CurrentAge: age}
	err := r.db.QueryRowContext(ctx, query, age, age, authorID).Scan(&stats.Available, &stats.Future, &stats.Favorite)
	if err != nil {
		return nil, fmt.Errorf("failed to count advices: %w", err)
	}
	return stats, nil
}

// ListAllAdvices returns every advice in creation order, for backups
func (r *AdviceRepository) ListAllAdvices(ctx context.Context) ([]models.Advice, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+adviceColumns+` FROM advices ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list advices: %w", err)
	}
	defer rows.Close()

	var advices []models.Advice
	for rows.Next() {
		advice, err := scanAdvice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advice: %w", err)
		}
		advices = append(advices, *advice)
	}
	return advices, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAdvice(row scanner) (*models.Advice, error) {
	advice := &models.Advice{}
	var mediaType, unlockType string
	err := row.Scan(
		&advice.ID,
		&advice.AuthorID,
		&advice.Category,
		&advice.TargetAge,
		&advice.Content,
		&advice.MediaURL,
		&mediaType,
		&unlockType,
		&advice.PasswordHash,
		&advice.IsRead,
		&advice.IsFavorite,
		&advice.CreatedAt,
		&advice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	advice.MediaType = models.MediaType(mediaType)
	advice.UnlockType = models.UnlockType(unlockType)
	return advice, nil
}
