package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vendora-app/vendora/internal/interface/middleware"
	"github.com/vendora-app/vendora/pkg/response"
)

type ImageUploader interface {
	UploadImage(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error)
}

type UploadHandler struct {
	Svc      ImageUploader
	Logger   *logrus.Logger
	MaxBytes int64
}

func NewUploadHandler(svc ImageUploader, logger *logrus.Logger, maxBytes int64) *UploadHandler {
	return &UploadHandler{Svc: svc, Logger: logger, MaxBytes: maxBytes}
}

// Image accepts a multipart "file" field and returns the hosted URL.
func (h *UploadHandler) Image(c *gin.Context) {
	if h.MaxBytes > 0 {
		// multipart framing needs some headroom over the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+1<<20)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, "UPLOADS_IMAGES_POST", err)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadImage(c.Request.Context(), middleware.UserID(c), f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, h.Logger, "UPLOADS_IMAGES_POST", err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"url": url})
}
