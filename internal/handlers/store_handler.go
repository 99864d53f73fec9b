package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/service"
)

type StoreHandler struct {
	storeService service.StoreUseCase
}

func NewStoreHandler(storeService service.StoreUseCase) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

func (h *StoreHandler) Create(c *gin.Context) {
	var req models.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store, err := h.storeService.Provision(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to provision store")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"store": store})
}

func (h *StoreHandler) Get(c *gin.Context) {
	store, err := h.storeService.Get(c.Request.Context(), c.Param("storeID"))
	if err != nil {
		respondError(c, err, "Failed to load store")
		return
	}

	c.JSON(http.StatusOK, gin.H{"store": store})
}

func (h *StoreHandler) Update(c *gin.Context) {
	var req models.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store, err := h.storeService.UpdateProfile(c.Request.Context(), c.Param("storeID"), req)
	if err != nil {
		respondError(c, err, "Failed to update store")
		return
	}

	c.JSON(http.StatusOK, gin.H{"store": store})
}
