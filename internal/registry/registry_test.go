package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"nicole-studio/internal/registry"
)

func TestResolve_KnownModel(t *testing.T) {
	reg := registry.New("")
	m := reg.Resolve("gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", m.ID)
	assert.Equal(t, registry.ProviderOpenAI, m.Provider)
}

func TestResolve_UnknownFallsBackToDefault(t *testing.T) {
	reg := registry.New("")
	for _, id := range []string{"", "   ", "anthropic/claude-unknown"} {
		m := reg.Resolve(id)
		assert.Equal(t, registry.DefaultModelID, m.ID, "id %q", id)
	}
}

func TestNew_ConfiguredDefault(t *testing.T) {
	assert.Equal(t, "openai/gpt-4o-mini", registry.New("openai/gpt-4o-mini").Default().ID)
	assert.Equal(t, registry.DefaultModelID, registry.New("no-such-model").Default().ID)
}

func TestList_CatalogOrder(t *testing.T) {
	models := registry.New("").List()
	assert.Len(t, models, 4)
	assert.Equal(t, registry.DefaultModelID, models[0].ID)
	for _, m := range models {
		assert.True(t, m.SupportsVision)
	}

	models[0].ID = "mutated"
	assert.Equal(t, registry.DefaultModelID, registry.New("").List()[0].ID)
}

func TestModelCost(t *testing.T) {
	m := registry.New("").Resolve("gpt-4o-mini")
	assert.InDelta(t, (1000*0.00015+500*0.0006)/1000, m.Cost(1000, 500), 1e-12)
	assert.Zero(t, m.Cost(0, 0))
}
