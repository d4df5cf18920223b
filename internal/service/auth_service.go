package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"dadsadvice/internal/database"
	"dadsadvice/internal/models"
	"dadsadvice/internal/security"
	"dadsadvice/internal/validation"
)

// UserStore is the user persistence used by AuthService
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetFatherByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
}

// Notifier is told about new children joining a father
type Notifier interface {
	NotifyChildJoined(ctx context.Context, father, child *models.User) error
}

// RegisterInput holds the fields of a registration request
type RegisterInput struct {
	UserID   string
	Password string
	Role     models.Role
	Name     string
	FatherID string
}

// AuthService handles registration, login and bearer token resolution
type AuthService struct {
	users    UserStore
	tokens   *security.TokenIssuer
	tokenTTL time.Duration
	notifier Notifier
	logger   *zap.Logger
}

// NewAuthService creates a new auth service. notifier may be nil.
func NewAuthService(users UserStore, tokens *security.TokenIssuer, tokenTTL time.Duration, notifier Notifier, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		notifier: notifier,
		logger:   logger,
	}
}

// Register creates a new father or child account and returns an access token for it
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, *models.User, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Name = strings.TrimSpace(in.Name)
	in.FatherID = strings.TrimSpace(in.FatherID)

	// Validate inputs
	if err := validation.ValidateUserID(in.UserID); err != nil {
		return "", nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return "", nil, err
	}
	if err := validation.ValidateRole(in.Role); err != nil {
		return "", nil, err
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return "", nil, err
	}

	existing, err := s.users.GetUserByID(ctx, in.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return "", nil, ErrUserIDTaken
	}

	var father *models.User
	if in.FatherID != "" {
		if in.Role == models.RoleFather {
			return "", nil, ErrFatherHasFather
		}
		father, err = s.users.GetFatherByID(ctx, in.FatherID)
		if err != nil {
			return "", nil, fmt.Errorf("failed to look up father: %w", err)
		}
		if father == nil {
			return "", nil, ErrFatherNotFound
		}
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &models.User{
		ID:           in.UserID,
		PasswordHash: passwordHash,
		Role:         in.Role,
		Name:         in.Name,
		FatherID:     in.FatherID,
	})
	if errors.Is(err, database.ErrDuplicateKey) {
		// lost a race with a concurrent registration for the same id
		return "", nil, ErrUserIDTaken
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}
	if user == nil {
		return "", nil, ErrStoreNoRow
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	if father != nil && s.notifier != nil {
		if err := s.notifier.NotifyChildJoined(ctx, father, user); err != nil {
			s.logger.Warn("Failed to notify father", zap.String("father_id", father.ID), zap.Error(err))
		}
	}

	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

// Login checks credentials and returns an access token
func (s *AuthService) Login(ctx context.Context, userID, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}
