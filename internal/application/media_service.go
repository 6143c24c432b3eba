package application

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vendora-app/vendora/internal/domain/errs"
)

var ErrStorageUnavailable = errors.New("image storage not configured")

// ImageStore writes an object and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type MediaService struct {
	Store    ImageStore
	MaxBytes int64
	Logger   *logrus.Logger
}

func NewMediaService(store ImageStore, maxBytes int64, logger *logrus.Logger) *MediaService {
	return &MediaService{Store: store, MaxBytes: maxBytes, Logger: logger}
}

// UploadImage stores a purchase photo under purchases/<userID>/ and returns the hosted URL.
func (s *MediaService) UploadImage(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error) {
	if userID == "" {
		return "", errs.ErrUnauthenticated
	}
	if s.Store == nil {
		return "", ErrStorageUnavailable
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageExt[ct]
	if !ok {
		return "", errs.Validation("file must be a jpeg, png, webp or gif image")
	}
	if size <= 0 {
		return "", errs.Validation("file is empty")
	}
	if s.MaxBytes > 0 && size > s.MaxBytes {
		return "", errs.Validation("file is too large")
	}

	objectPath := path.Join("purchases", userID, uuid.NewString()+ext)
	url, err := s.Store.Upload(ctx, objectPath, ct, r)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("object", objectPath).Error("image upload failed")
		}
		return "", err
	}
	return url, nil
}
