package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vendora-app/vendora/internal/application"
	"github.com/vendora-app/vendora/internal/domain/errs"
	"github.com/vendora-app/vendora/internal/interface/middleware"
	"github.com/vendora-app/vendora/pkg/response"
	"github.com/vendora-app/vendora/pkg/validation"
)

// writeError maps domain errors to status codes. Anything unrecognised is logged under op and
// reported as a bare 500.
func writeError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	var verr *errs.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, errs.ErrValidation):
		response.Error(c, http.StatusBadRequest, "Bad Request")
	case errors.Is(err, errs.ErrUnauthenticated), errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, errs.ErrForbidden):
		response.Error(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, errs.ErrNotFound):
		response.Error(c, http.StatusNotFound, "Not Found")
	case errors.Is(err, errs.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "Invalid status transition")
	case errors.Is(err, errs.ErrConflict):
		response.Error(c, http.StatusConflict, "Purchase was modified concurrently")
	case errors.Is(err, errs.ErrAlreadyExists):
		response.Error(c, http.StatusBadRequest, "User already exists")
	case errors.Is(err, application.ErrStorageUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "Image storage unavailable")
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"op":         op,
				"request_id": c.GetString(middleware.CtxRequestIDKey),
			}).Error("request failed")
		}
		response.Error(c, http.StatusInternalServerError, "Internal Error")
	}
}

// bindError reports a request body that failed decoding or schema validation.
func bindError(c *gin.Context, err error) {
	msg := validation.Message(err)
	if msg == "" {
		msg = "invalid payload"
	}
	response.Error(c, http.StatusBadRequest, msg)
}
