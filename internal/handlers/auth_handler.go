package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"dadsadvice/internal/models"
	"dadsadvice/internal/service"
)

// AuthHandler handles registration, login and the current user
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, _, err := h.authService.Register(r.Context(), service.RegisterInput{
		UserID:   loginHandle(req.UserID, req.Email),
		Password: req.Password,
		Role:     models.Role(req.UserType),
		Name:     req.Name,
		FatherID: req.FatherID,
	})
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, _, err := h.authService.Login(r.Context(), loginHandle(req.UserID, req.Email), req.Password)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, newUserResponse(user))
}
