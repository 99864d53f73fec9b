package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"sellusgenie-backend/internal/theme"
	"sellusgenie-backend/pkg/logger"
)

// RenderInvalidator drops cached public renders across all stores.
type RenderInvalidator interface {
	InvalidateAllRenders(ctx context.Context) error
}

type ThemeHandler struct {
	manager *theme.Manager
	renders RenderInvalidator
}

func NewThemeHandler(manager *theme.Manager, renders RenderInvalidator) *ThemeHandler {
	return &ThemeHandler{manager: manager, renders: renders}
}

func (h *ThemeHandler) List(c *gin.Context) {
	if h == nil || h.manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "theme manager unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"themes":  h.manager.List(),
		"default": h.manager.Default().Slug,
	})
}

// Reload re-reads preset files from disk and drops cached renders, which
// embed the resolved theme tokens.
func (h *ThemeHandler) Reload(c *gin.Context) {
	if h == nil || h.manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "theme manager unavailable"})
		return
	}

	if err := h.manager.Reload(); err != nil {
		logger.Error(err, "Failed to reload theme presets", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.renders != nil {
		if err := h.renders.InvalidateAllRenders(c.Request.Context()); err != nil {
			logger.Warn("Failed to invalidate cached renders after theme reload", map[string]interface{}{"error": err.Error()})
		}
	}

	c.JSON(http.StatusOK, gin.H{"themes": h.manager.List()})
}
