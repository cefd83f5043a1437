package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"nicole-studio/internal/models"
	"nicole-studio/internal/registry"
)

type CatalogHandler struct {
	models *registry.Registry
	costs  CostTracker
}

func NewCatalogHandler(models *registry.Registry, costs CostTracker) *CatalogHandler {
	return &CatalogHandler{models: models, costs: costs}
}

// ListModels godoc
// @Summary     List chat models
// @Description Returns the model catalog in display order with per-1K-token prices and the default model id.
// @Tags        catalog
// @Produce     json
// @Success     200 {object} models.ModelsResponse
// @Router      /models [get]
func (h *CatalogHandler) ListModels(c *gin.Context) {
	list := h.models.List()
	resp := models.ModelsResponse{
		Default: h.models.Default().ID,
		Models:  make([]models.ModelResponse, 0, len(list)),
	}
	for _, m := range list {
		resp.Models = append(resp.Models, models.ModelResponse{
			ID:              m.ID,
			Name:            m.Name,
			Provider:        string(m.Provider),
			Description:     m.Description,
			CostPer1KInput:  m.CostPer1KInput,
			CostPer1KOutput: m.CostPer1KOutput,
			SupportsVision:  m.SupportsVision,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetCost godoc
// @Summary     Running cost total
// @Description Returns the accumulated USD spend across chat and image generation.
// @Tags        catalog
// @Produce     json
// @Success     200 {object} models.CostResponse
// @Router      /cost [get]
func (h *CatalogHandler) GetCost(c *gin.Context) {
	total := h.costs.Total()
	c.JSON(http.StatusOK, models.CostResponse{TotalUSD: total, Display: FormatUSD(total)})
}

// FormatUSD renders a total the way the cost badge shows it.
func FormatUSD(total float64) string {
	return fmt.Sprintf("$%.4f", total)
}
