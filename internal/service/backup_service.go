package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"dadsadvice/internal/database"
	"dadsadvice/internal/models"
	"dadsadvice/internal/repository"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string         `json:"version"`
	ExportedAt   time.Time      `json:"exported_at"`
	DatabaseType string         `json:"database_type"`
	Users        []UserBackup   `json:"users"`
	Advices      []AdviceBackup `json:"advices"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID           string    `json:"id"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	FatherID     string    `json:"father_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdviceBackup represents an advice record for backup
type AdviceBackup struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	Category     string    `json:"category"`
	TargetAge    int       `json:"target_age"`
	Content      string    `json:"content"`
	MediaURL     string    `json:"media_url,omitempty"`
	MediaType    string    `json:"media_type,omitempty"`
	UnlockType   string    `json:"unlock_type"`
	PasswordHash string    `json:"password_hash,omitempty"`
	IsRead       bool      `json:"is_read"`
	IsFavorite   bool      `json:"is_favorite"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ImportStats reports what an import did
type ImportStats struct {
	UsersImported   int
	UsersSkipped    int
	AdvicesImported int
	AdvicesSkipped  int
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *zap.Logger) *BackupService {
	return &BackupService{db: db, logger: logger}
}

// Export writes every user and advice as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	s.logger.Info("Starting database export")

	users, err := repository.NewUserRepository(s.db).ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	advices, err := repository.NewAdviceRepository(s.db).ListAllAdvices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export advices: %w", err)
	}

	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.MigrationsSubdir(),
		Users:        make([]UserBackup, 0, len(users)),
		Advices:      make([]AdviceBackup, 0, len(advices)),
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:           u.ID,
			PasswordHash: u.PasswordHash,
			Role:         string(u.Role),
			Name:         u.Name,
			FatherID:     u.FatherID,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		})
	}
	for _, a := range advices {
		backup.Advices = append(backup.Advices, AdviceBackup{
			ID:           a.ID,
			AuthorID:     a.AuthorID,
			Category:     a.Category,
			TargetAge:    a.TargetAge,
			Content:      a.Content,
			MediaURL:     a.MediaURL,
			MediaType:    string(a.MediaType),
			UnlockType:   string(a.UnlockType),
			PasswordHash: a.PasswordHash,
			IsRead:       a.IsRead,
			IsFavorite:   a.IsFavorite,
			CreatedAt:    a.CreatedAt,
			UpdatedAt:    a.UpdatedAt,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("Database exported",
		zap.Int("users", len(backup.Users)),
		zap.Int("advices", len(backup.Advices)),
	)
	return backup, nil
}

// Import restores a backup inside one transaction. With clear set, existing
// rows are deleted first; otherwise rows whose id already exists are skipped.
func (s *BackupService) Import(ctx context.Context, r io.Reader, clear bool) (*ImportStats, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.Info("Starting database import",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt),
		zap.Bool("clear", clear),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	users := repository.NewUserRepository(tx)
	advices := repository.NewAdviceRepository(tx)

	if clear {
		if err := users.DeleteAllUsers(ctx); err != nil {
			return nil, err
		}
	}

	stats := &ImportStats{}

	// Fathers precede children in exports, so father_id references resolve
	for _, ub := range backup.Users {
		existing, err := users.GetUserByID(ctx, ub.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			stats.UsersSkipped++
			continue
		}
		if _, err := users.CreateUser(ctx, &models.User{
			ID:           ub.ID,
			PasswordHash: ub.PasswordHash,
			Role:         models.Role(ub.Role),
			Name:         ub.Name,
			FatherID:     ub.FatherID,
			CreatedAt:    ub.CreatedAt,
			UpdatedAt:    ub.UpdatedAt,
		}); err != nil {
			return nil, fmt.Errorf("failed to import user %s: %w", ub.ID, err)
		}
		stats.UsersImported++
	}

	for _, ab := range backup.Advices {
		existing, err := advices.GetAdviceByID(ctx, ab.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			stats.AdvicesSkipped++
			continue
		}
		if _, err := advices.CreateAdvice(ctx, &models.Advice{
			ID:           ab.ID,
			AuthorID:     ab.AuthorID,
			Category:     ab.Category,
			TargetAge:    ab.TargetAge,
			Content:      ab.Content,
			MediaURL:     ab.MediaURL,
			MediaType:    models.MediaType(ab.MediaType),
			UnlockType:   models.UnlockType(ab.UnlockType),
			PasswordHash: ab.PasswordHash,
			IsRead:       ab.IsRead,
			IsFavorite:   ab.IsFavorite,
			CreatedAt:    ab.CreatedAt,
			UpdatedAt:    ab.UpdatedAt,
		}); err != nil {
			return nil, fmt.Errorf("failed to import advice %s: %w", ab.ID, err)
		}
		stats.AdvicesImported++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	s.logger.Info("Database import completed",
		zap.Int("users_imported", stats.UsersImported),
		zap.Int("users_skipped", stats.UsersSkipped),
		zap.Int("advices_imported", stats.AdvicesImported),
		zap.Int("advices_skipped", stats.AdvicesSkipped),
	)
	return stats, nil
}
