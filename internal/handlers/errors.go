package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/service"
	"sellusgenie-backend/pkg/logger"
)

// respondError maps service errors onto HTTP statuses. Unexpected errors are
// logged with the request fields and reported as 500.
func respondError(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrPageNotFound), errors.Is(err, service.ErrStoreNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrSlugTaken),
		errors.Is(err, service.ErrSystemPageDelete),
		errors.Is(err, models.ErrInvalidStatusTransition):
		status = http.StatusConflict
	case errors.Is(err, service.ErrContextUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).WithError(err).Error(msg)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondRenderFailure turns a failed render into a fallback response. The
// storefront treats the body as "render the store's fallback", never as a crash.
func respondRenderFailure(c *gin.Context, err error) {
	var failure *service.RenderFailure
	if !errors.As(err, &failure) {
		respondError(c, err, "Render failed")
		return
	}

	status := http.StatusServiceUnavailable
	switch {
	case failure.NotFound():
		status = http.StatusNotFound
	case failure.Kind == service.FailureBadSelector:
		status = http.StatusBadRequest
	default:
		logger.FromContext(c.Request.Context()).WithError(err).Warn("Render fetch failed")
	}

	c.JSON(status, gin.H{
		"error":    err.Error(),
		"fallback": true,
		"reason":   failure.Kind,
	})
}
