package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/widgets"
)

// WidgetHandler exposes the widget catalog to the builder.
type WidgetHandler struct {
	registry *widgets.Registry
}

func NewWidgetHandler(registry *widgets.Registry) *WidgetHandler {
	return &WidgetHandler{registry: registry}
}

func (h *WidgetHandler) List(c *gin.Context) {
	definitions := h.registry.List()
	configs := make([]models.WidgetTypeConfig, 0, len(definitions))
	for _, def := range definitions {
		configs = append(configs, def.Config())
	}

	c.JSON(http.StatusOK, gin.H{"widgets": configs})
}

func (h *WidgetHandler) Get(c *gin.Context) {
	def, err := h.registry.Resolve(c.Param("type"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, widgets.ErrWidgetNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"widget": def.Config()})
}
