package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"dadsadvice/internal/service"
)

// MediaHandler accepts media uploads for advices
type MediaHandler struct {
	mediaService *service.MediaService
	logger       *zap.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *service.MediaService, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		logger:       logger,
	}
}

// Upload handles POST /upload-media with a multipart "file" field
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.mediaService.MaxSize() + uploadOverheadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, h.logger, service.ErrFileTooLarge)
			return
		}
		respondDetail(w, http.StatusBadRequest, ErrInvalidRequestBody)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondDetail(w, http.StatusBadRequest, ErrFileRequired)
		return
	}
	defer file.Close()

	upload, err := h.mediaService.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MediaUploadResponse{URL: upload.URL, Type: string(upload.Type)})
}
