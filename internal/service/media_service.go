package service

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dadsadvice/internal/models"
	"dadsadvice/internal/storage"
)

// Extensions end up in the object key and the public URL, so they must be URL safe
var safeExtension = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// ObjectStore receives uploaded media bytes
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error
}

// MediaService validates uploads and forwards them to object storage
type MediaService struct {
	store         ObjectStore
	publicBaseURL string
	maxSize       int64
	logger        *zap.Logger
}

// NewMediaService creates a media service. A nil store skips the upload and
// only hands out the public URL.
func NewMediaService(store ObjectStore, publicBaseURL string, maxSize int64, logger *zap.Logger) *MediaService {
	return &MediaService{
		store:         store,
		publicBaseURL: publicBaseURL,
		maxSize:       maxSize,
		logger:        logger,
	}
}

// MaxSize is the largest accepted upload in bytes
func (s *MediaService) MaxSize() int64 {
	return s.maxSize
}

// Upload stores a media file and returns its public URL and kind. Storage
// failures are logged and the deterministic URL is returned anyway.
func (s *MediaService) Upload(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*models.MediaUpload, error) {
	mediaType, err := mediaTypeOf(contentType)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, ErrEmptyFile
	}
	if size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	key := uuid.NewString() + objectExtension(filename, contentType)
	url := storage.JoinURL(s.publicBaseURL, key)

	if s.store == nil {
		s.logger.Warn("Object storage not configured, returning public URL only", zap.String("key", key))
		return &models.MediaUpload{URL: url, Type: mediaType}, nil
	}

	if err := s.store.PutObject(ctx, key, contentType, body, size); err != nil {
		s.logger.Warn("Media upload failed, returning public URL",
			zap.String("key", key),
			zap.Error(err),
		)
	} else {
		s.logger.Info("Media uploaded",
			zap.String("key", key),
			zap.String("type", string(mediaType)),
			zap.Int64("size", size),
		)
	}

	return &models.MediaUpload{URL: url, Type: mediaType}, nil
}

func mediaTypeOf(contentType string) (models.MediaType, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", ErrUnsupportedMedia
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return models.MediaTypeImage, nil
	case strings.HasPrefix(mt, "video/"):
		return models.MediaTypeVideo, nil
	}
	return "", ErrUnsupportedMedia
}

// objectExtension keeps the client's extension when it is URL safe and
// otherwise falls back to one registered for the content type, or none.
func objectExtension(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); safeExtension.MatchString(ext) {
		return ext
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	exts, err := mime.ExtensionsByType(mt)
	if err != nil {
		return ""
	}
	for _, ext := range exts {
		if safeExtension.MatchString(ext) {
			return ext
		}
	}
	return ""
}
