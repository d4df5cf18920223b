package handlers

import (
	"time"

	"dadsadvice/internal/models"
)

// RegisterRequest is the body of POST /auth/register. Either user_id or email names the account.
type RegisterRequest struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
	Name     string `json:"name"`
	FatherID string `json:"father_id"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func loginHandle(userID, email string) string {
	if userID != "" {
		return userID
	}
	return email
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserType  string    `json:"user_type"`
	Name      string    `json:"name"`
	FatherID  *string   `json:"father_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		UserID:    u.ID,
		UserType:  string(u.Role),
		Name:      u.Name,
		FatherID:  optional(u.FatherID),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AdviceRequest is the body of POST /advices and PUT /advices/{id}
type AdviceRequest struct {
	Category   string  `json:"category"`
	TargetAge  *int    `json:"target_age"`
	Content    string  `json:"content"`
	MediaURL   *string `json:"media_url"`
	MediaType  *string `json:"media_type"`
	UnlockType string  `json:"unlock_type"`
	Password   string  `json:"password"`
}

// AdviceResponse is the public view of an advice. The unlock password never leaves the server.
type AdviceResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	Category   string    `json:"category"`
	TargetAge  int       `json:"target_age"`
	Content    string    `json:"content"`
	MediaURL   *string   `json:"media_url"`
	MediaType  *string   `json:"media_type"`
	UnlockType string    `json:"unlock_type"`
	IsRead     bool      `json:"is_read"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newAdviceResponse(a *models.Advice) AdviceResponse {
	return AdviceResponse{
		ID:         a.ID,
		AuthorID:   a.AuthorID,
		Category:   a.Category,
		TargetAge:  a.TargetAge,
		Content:    a.Content,
		MediaURL:   optional(a.MediaURL),
		MediaType:  optional(string(a.MediaType)),
		UnlockType: string(a.UnlockType),
		IsRead:     a.IsRead,
		IsFavorite: a.IsFavorite,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// UnlockRequest is the body of POST /advices/{id}/unlock
type UnlockRequest struct {
	Password string `json:"password"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// FavoriteResponse reports the favorite flag after a toggle
type FavoriteResponse struct {
	Message    string `json:"message"`
	IsFavorite bool   `json:"is_favorite"`
}

// MediaUploadResponse describes a stored media file
type MediaUploadResponse struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// FatherStatsResponse is GET /stats for fathers
type FatherStatsResponse struct {
	TotalAdvices  int `json:"total_advices"`
	ReadAdvices   int `json:"read_advices"`
	UnreadAdvices int `json:"unread_advices"`
}

// ChildStatsResponse is GET /stats for children
type ChildStatsResponse struct {
	AvailableAdvices int `json:"available_advices"`
	FutureAdvices    int `json:"future_advices"`
	FavoriteAdvices  int `json:"favorite_advices"`
	CurrentAge       int `json:"current_age"`
}

// ErrorResponse is the body of every error
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
