package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dadsadvice/internal/models"
	"dadsadvice/internal/security"
	"dadsadvice/internal/storage"
	"dadsadvice/internal/validation"
)

// PlaceholderCurrentAge stands in for a child's age in stats. Users have no
// birthdate, so it is not derived from stored data.
const PlaceholderCurrentAge = 25

// AdviceStore is the advice persistence used by AdviceService
type AdviceStore interface {
	CreateAdvice(ctx context.Context, advice *models.Advice) (*models.Advice, error)
	GetAdviceByID(ctx context.Context, id string) (*models.Advice, error)
	ListAdvices(ctx context.Context, authorID string, filter models.AdviceFilter) ([]models.Advice, error)
	UpdateAdvice(ctx context.Context, advice *models.Advice) (*models.Advice, error)
	DeleteAdvice(ctx context.Context, id string) (bool, error)
	MarkRead(ctx context.Context, id string) (bool, error)
	SetFavorite(ctx context.Context, id string, favorite bool) (bool, error)
	FatherStats(ctx context.Context, authorID string) (*models.FatherStats, error)
	ChildStats(ctx context.Context, authorID string, age int) (*models.ChildStats, error)
}

// AdviceInput holds the author-editable fields of an advice
type AdviceInput struct {
	Category   string
	TargetAge  int
	Content    string
	MediaURL   string
	MediaType  models.MediaType
	UnlockType models.UnlockType
	Password   string
}

// AdviceService applies the father/child access rules to advice operations
type AdviceService struct {
	advices AdviceStore
	logger  *zap.Logger
}

// NewAdviceService creates a new advice service
func NewAdviceService(advices AdviceStore, logger *zap.Logger) *AdviceService {
	return &AdviceService{advices: advices, logger: logger}
}

// Create stores a new advice written by caller
func (s *AdviceService) Create(ctx context.Context, caller *models.User, in AdviceInput) (*models.Advice, error) {
	if !caller.IsFather() {
		return nil, ErrFathersOnly
	}

	advice := &models.Advice{
		ID:       uuid.NewString(),
		AuthorID: caller.ID,
	}
	if err := s.apply(advice, in); err != nil {
		return nil, err
	}

	created, err := s.advices.CreateAdvice(ctx, advice)
	if err != nil {
		return nil, fmt.Errorf("failed to create advice: %w", err)
	}
	if created == nil {
		return nil, ErrStoreNoRow
	}

	s.logger.Info("Advice created",
		zap.String("advice_id", created.ID),
		zap.String("author_id", created.AuthorID),
		zap.Int("target_age", created.TargetAge),
	)
	return created, nil
}

// List returns the advices caller may see: a father's own, or a child's father's
func (s *AdviceService) List(ctx context.Context, caller *models.User, filter models.AdviceFilter) ([]models.Advice, error) {
	authorID := scopeAuthor(caller)
	if authorID == "" {
		return []models.Advice{}, nil
	}

	advices, err := s.advices.ListAdvices(ctx, authorID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list advices: %w", err)
	}
	if advices == nil {
		advices = []models.Advice{}
	}
	return advices, nil
}

// Get returns a single advice if caller may see it
func (s *AdviceService) Get(ctx context.Context, caller *models.User, id string) (*models.Advice, error) {
	advice, err := s.advices.GetAdviceByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get advice: %w", err)
	}
	if advice == nil {
		return nil, ErrAdviceNotFound
	}
	if !advice.VisibleTo(caller) {
		return nil, ErrNotAdviceOwner
	}
	return advice, nil
}

// Update replaces the editable fields of an advice written by caller
func (s *AdviceService) Update(ctx context.Context, caller *models.User, id string, in AdviceInput) (*models.Advice, error) {
	advice, err := s.authored(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(advice, in); err != nil {
		return nil, err
	}

	updated, err := s.advices.UpdateAdvice(ctx, advice)
	if err != nil {
		return nil, fmt.Errorf("failed to update advice: %w", err)
	}
	if updated == nil {
		return nil, ErrStoreNoRow
	}
	return updated, nil
}

// Delete removes an advice written by caller
func (s *AdviceService) Delete(ctx context.Context, caller *models.User, id string) error {
	if _, err := s.authored(ctx, caller, id); err != nil {
		return err
	}

	deleted, err := s.advices.DeleteAdvice(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete advice: %w", err)
	}
	if !deleted {
		return ErrStoreNoRow
	}

	s.logger.Info("Advice deleted", zap.String("advice_id", id), zap.String("author_id", caller.ID))
	return nil
}

// MarkRead flags an advice as read. The access check is the same as Get.
func (s *AdviceService) MarkRead(ctx context.Context, caller *models.User, id string) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}

	ok, err := s.advices.MarkRead(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to mark advice read: %w", err)
	}
	if !ok {
		return ErrStoreNoRow
	}
	return nil
}

// ToggleFavorite flips the favorite flag of an advice from caller's father
// and returns the new value. Concurrent toggles are last-write-wins.
func (s *AdviceService) ToggleFavorite(ctx context.Context, caller *models.User, id string) (bool, error) {
	advice, err := s.advices.GetAdviceByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to get advice: %w", err)
	}
	if advice == nil {
		return false, ErrAdviceNotFound
	}
	if !caller.IsChild() {
		return false, ErrChildrenOnly
	}
	if caller.FatherID == "" || advice.AuthorID != caller.FatherID {
		return false, ErrNotAdviceOwner
	}

	favorite := !advice.IsFavorite
	ok, err := s.advices.SetFavorite(ctx, id, favorite)
	if err != nil {
		return false, fmt.Errorf("failed to update favorite: %w", err)
	}
	if !ok {
		return false, ErrStoreNoRow
	}
	return favorite, nil
}

// Unlock opens a password gated advice and marks it read. Age gated advices
// are returned as they are.
func (s *AdviceService) Unlock(ctx context.Context, caller *models.User, id, password string) (*models.Advice, error) {
	advice, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if advice.UnlockType != models.UnlockByPassword {
		return advice, nil
	}

	if advice.PasswordHash == "" || !security.CheckPassword(password, advice.PasswordHash) {
		return nil, ErrWrongUnlockCode
	}

	ok, err := s.advices.MarkRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark advice read: %w", err)
	}
	if !ok {
		return nil, ErrStoreNoRow
	}
	advice.IsRead = true
	return advice, nil
}

// FatherStats counts caller's own advices
func (s *AdviceService) FatherStats(ctx context.Context, caller *models.User) (*models.FatherStats, error) {
	if !caller.IsFather() {
		return nil, ErrFatherStatsOnly
	}
	stats, err := s.advices.FatherStats(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

// ChildStats counts the advices of caller's father against PlaceholderCurrentAge
func (s *AdviceService) ChildStats(ctx context.Context, caller *models.User) (*models.ChildStats, error) {
	if !caller.IsChild() {
		return nil, ErrChildStatsOnly
	}
	if caller.FatherID == "" {
		return &models.ChildStats{CurrentAge: PlaceholderCurrentAge}, nil
	}
	stats, err := s.advices.ChildStats(ctx, caller.FatherID, PlaceholderCurrentAge)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

// authored loads an advice and requires caller to be its author
func (s *AdviceService) authored(ctx context.Context, caller *models.User, id string) (*models.Advice, error) {
	advice, err := s.advices.GetAdviceByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get advice: %w", err)
	}
	if advice == nil {
		return nil, ErrAdviceNotFound
	}
	if !caller.IsFather() || advice.AuthorID != caller.ID {
		return nil, ErrNotAdviceOwner
	}
	return advice, nil
}

// apply validates in and copies it onto advice. A password switch without a
// new password keeps the stored hash.
func (s *AdviceService) apply(advice *models.Advice, in AdviceInput) error {
	if in.UnlockType == "" {
		in.UnlockType = models.UnlockByAge
	}
	in.MediaURL = storage.NormalizeURL(strings.TrimSpace(in.MediaURL))

	if err := validation.ValidateAdvice(in.Category, in.TargetAge, in.Content, in.MediaURL, in.MediaType, in.UnlockType); err != nil {
		return err
	}

	passwordHash := ""
	if in.UnlockType == models.UnlockByPassword {
		switch {
		case in.Password != "":
			if err := validation.ValidatePassword(in.Password); err != nil {
				return err
			}
			hash, err := security.HashPassword(in.Password)
			if err != nil {
				return fmt.Errorf("failed to hash advice password: %w", err)
			}
			passwordHash = hash
		case advice.PasswordHash != "":
			passwordHash = advice.PasswordHash
		default:
			return ErrPasswordRequired
		}
	}

	advice.Category = strings.TrimSpace(in.Category)
	advice.TargetAge = in.TargetAge
	advice.Content = in.Content
	advice.MediaURL = in.MediaURL
	advice.MediaType = in.MediaType
	advice.UnlockType = in.UnlockType
	advice.PasswordHash = passwordHash
	return nil
}

// scopeAuthor is the author whose advices caller may see
func scopeAuthor(caller *models.User) string {
	switch caller.Role {
	case models.RoleFather:
		return caller.ID
	case models.RoleChild:
		return caller.FatherID
	}
	return ""
}
