package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"dadsadvice/internal/service"
	"dadsadvice/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("Failed to encode response", zap.Error(err))
	}
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// respondWithError maps service and validation errors to status codes.
// Anything unclassified is logged and answered with a bare 500.
func respondWithError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var vErr validation.ValidationError
	if errors.As(err, &vErr) {
		respondDetail(w, http.StatusBadRequest, vErr.Error())
		return
	}

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status := statusForKind(svcErr.Kind)
		if status == http.StatusInternalServerError {
			logger.Error("Request failed", zap.Error(err))
		}
		respondDetail(w, status, svcErr.Detail)
		return
	}

	logger.Error("Request failed", zap.Error(err))
	respondDetail(w, http.StatusInternalServerError, ErrInternalServerError)
}

func statusForKind(kind error) int {
	switch {
	case errors.Is(kind, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, service.ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON body into v. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondDetail(w, http.StatusBadRequest, ErrInvalidRequestBody)
		return false
	}
	return true
}
