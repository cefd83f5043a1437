package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nicole-studio/internal/handlers"
	"nicole-studio/internal/models"
	"nicole-studio/internal/registry"
)

func TestListModels(t *testing.T) {
	router := gin.New()
	router.GET("/api/models", handlers.NewCatalogHandler(registry.New(""), newCosts()).ListModels)

	w := doJSON(t, router, http.MethodGet, "/api/models", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.ModelsResponse](t, w)
	assert.Equal(t, registry.DefaultModelID, resp.Default)
	require.NotEmpty(t, resp.Models)
	assert.Equal(t, registry.DefaultModelID, resp.Models[0].ID)
	assert.Equal(t, "openrouter", resp.Models[0].Provider)
}

func TestGetCost(t *testing.T) {
	acc := newCosts()
	acc.Add(context.Background(), 0.04)
	acc.Add(context.Background(), 0.0005)

	router := gin.New()
	router.GET("/api/cost", handlers.NewCatalogHandler(registry.New(""), acc).GetCost)

	w := doJSON(t, router, http.MethodGet, "/api/cost", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.CostResponse](t, w)
	assert.InDelta(t, 0.0405, resp.TotalUSD, 1e-12)
	assert.Equal(t, "$0.0405", resp.Display)
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$0.0000", handlers.FormatUSD(0))
	assert.Equal(t, "$1.2346", handlers.FormatUSD(1.23456))
}
