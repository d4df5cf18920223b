package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"dadsadvice/internal/models"
	"dadsadvice/internal/service"
	"dadsadvice/internal/validation"
)

// AdviceHandler handles advice CRUD, read/favorite flags and stats
type AdviceHandler struct {
	adviceService *service.AdviceService
	logger        *zap.Logger
}

// NewAdviceHandler creates a new advice handler
func NewAdviceHandler(adviceService *service.AdviceService, logger *zap.Logger) *AdviceHandler {
	return &AdviceHandler{
		adviceService: adviceService,
		logger:        logger,
	}
}

// Create handles POST /advices
func (h *AdviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	in, ok := h.decodeAdvice(w, r)
	if !ok {
		return
	}

	advice, err := h.adviceService.Create(r.Context(), user, in)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newAdviceResponse(advice))
}

// List handles GET /advices?category=&target_age=
func (h *AdviceHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	filter := models.AdviceFilter{Category: r.URL.Query().Get("category")}
	if raw := r.URL.Query().Get("target_age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, h.logger, validation.ValidationError{Field: "target_age", Message: "target_age must be an integer"})
			return
		}
		filter.TargetAge = &age
	}

	advices, err := h.adviceService.List(r.Context(), user, filter)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	resp := make([]AdviceResponse, 0, len(advices))
	for i := range advices {
		resp = append(resp, newAdviceResponse(&advices[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /advices/{id}
func (h *AdviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	advice, err := h.adviceService.Get(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newAdviceResponse(advice))
}

// Update handles PUT /advices/{id}
func (h *AdviceHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	in, ok := h.decodeAdvice(w, r)
	if !ok {
		return
	}

	advice, err := h.adviceService.Update(r.Context(), user, chi.URLParam(r, "id"), in)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newAdviceResponse(advice))
}

// Delete handles DELETE /advices/{id}
func (h *AdviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.adviceService.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "advice deleted"})
}

// MarkRead handles PUT /advices/{id}/read
func (h *AdviceHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.adviceService.MarkRead(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "advice marked as read"})
}

// ToggleFavorite handles PUT /advices/{id}/favorite
func (h *AdviceHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	favorite, err := h.adviceService.ToggleFavorite(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	message := "removed from favorites"
	if favorite {
		message = "added to favorites"
	}
	writeJSON(w, http.StatusOK, FavoriteResponse{Message: message, IsFavorite: favorite})
}

// Unlock handles POST /advices/{id}/unlock
func (h *AdviceHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req UnlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	advice, err := h.adviceService.Unlock(r.Context(), user, chi.URLParam(r, "id"), req.Password)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newAdviceResponse(advice))
}

// Stats handles GET /stats. The body depends on the caller's role.
func (h *AdviceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if user.IsFather() {
		stats, err := h.adviceService.FatherStats(r.Context(), user)
		if err != nil {
			respondWithError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, FatherStatsResponse{
			TotalAdvices:  stats.Total,
			ReadAdvices:   stats.Read,
			UnreadAdvices: stats.Unread,
		})
		return
	}

	stats, err := h.adviceService.ChildStats(r.Context(), user)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ChildStatsResponse{
		AvailableAdvices: stats.Available,
		FutureAdvices:    stats.Future,
		FavoriteAdvices:  stats.Favorite,
		CurrentAge:       stats.CurrentAge,
	})
}

func (h *AdviceHandler) decodeAdvice(w http.ResponseWriter, r *http.Request) (service.AdviceInput, bool) {
	var req AdviceRequest
	if !decodeJSON(w, r, &req) {
		return service.AdviceInput{}, false
	}
	if req.TargetAge == nil {
		respondWithError(w, h.logger, validation.ValidationError{Field: "target_age", Message: "target age is required"})
		return service.AdviceInput{}, false
	}

	return service.AdviceInput{
		Category:   req.Category,
		TargetAge:  *req.TargetAge,
		Content:    req.Content,
		MediaURL:   deref(req.MediaURL),
		MediaType:  models.MediaType(deref(req.MediaType)),
		UnlockType: models.UnlockType(req.UnlockType),
		Password:   req.Password,
	}, true
}
