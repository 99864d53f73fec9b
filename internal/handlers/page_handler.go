package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/service"
)

type PageHandler struct {
	pageService service.PageUseCase
	storefront  service.StorefrontUseCase
}

func NewPageHandler(pageService service.PageUseCase, storefront service.StorefrontUseCase) *PageHandler {
	return &PageHandler{pageService: pageService, storefront: storefront}
}

func (h *PageHandler) Create(c *gin.Context) {
	var req models.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.pageService.Create(c.Request.Context(), c.Param("storeID"), req)
	if err != nil {
		respondError(c, err, "Failed to create page")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"page": page})
}

func (h *PageHandler) Update(c *gin.Context) {
	var req models.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.pageService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

func (h *PageHandler) Delete(c *gin.Context) {
	if err := h.pageService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "page deleted successfully"})
}

func (h *PageHandler) GetByID(c *gin.Context) {
	page, err := h.pageService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

func (h *PageHandler) ListByStore(c *gin.Context) {
	pages, err := h.pageService.ListByStore(c.Request.Context(), c.Param("storeID"))
	if err != nil {
		respondError(c, err, "Failed to list pages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

func (h *PageHandler) Publish(c *gin.Context) {
	page, err := h.pageService.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to publish page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

func (h *PageHandler) Unpublish(c *gin.Context) {
	page, err := h.pageService.Unpublish(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to unpublish page")
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": page})
}

func (h *PageHandler) Duplicate(c *gin.Context) {
	page, err := h.pageService.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to duplicate page")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"page": page})
}

// Preview renders the page for the builder canvas, drafts included.
func (h *PageHandler) Preview(c *gin.Context) {
	tree, err := h.storefront.PreviewPage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRenderFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": tree})
}
