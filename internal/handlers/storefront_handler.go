package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/service"
)

// StorefrontHandler serves resolved page trees to the public storefront.
type StorefrontHandler struct {
	storefront service.StorefrontUseCase
}

func NewStorefrontHandler(storefront service.StorefrontUseCase) *StorefrontHandler {
	return &StorefrontHandler{storefront: storefront}
}

func (h *StorefrontHandler) PageBySlug(c *gin.Context) {
	h.render(c, models.PageSelector{Slug: c.Param("slug")})
}

func (h *StorefrontHandler) SystemPage(c *gin.Context) {
	h.render(c, models.PageSelector{SystemPageType: models.SystemPageType(c.Param("role"))})
}

func (h *StorefrontHandler) render(c *gin.Context, selector models.PageSelector) {
	tree, err := h.storefront.RenderPage(c.Request.Context(), c.Param("storeID"), selector)
	if err != nil {
		respondRenderFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": tree})
}
