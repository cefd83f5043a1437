package registry

type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderOpenAI     Provider = "openai"
	ProviderGemini     Provider = "gemini"
)

type Model struct {
	ID              string
	Name            string
	Provider        Provider
	Description     string
	CostPer1KInput  float64
	CostPer1KOutput float64
	SupportsVision  bool
}

// Cost returns the USD cost of an exchange at this model's per-1k rates.
func (m Model) Cost(tokensInput, tokensOutput int) float64 {
	return (float64(tokensInput)*m.CostPer1KInput + float64(tokensOutput)*m.CostPer1KOutput) / 1000
}

const DefaultModelID = "google/gemini-2.0-flash-001"

var catalog = []Model{
	{
		ID:              "google/gemini-2.0-flash-001",
		Name:            "Gemini 2.0 Flash",
		Provider:        ProviderOpenRouter,
		Description:     "Rápido y económico",
		CostPer1KInput:  0.0001,
		CostPer1KOutput: 0.0004,
		SupportsVision:  true,
	},
	{
		ID:              "openai/gpt-4o-mini",
		Name:            "GPT-4o Mini (OpenRouter)",
		Provider:        ProviderOpenRouter,
		Description:     "Equilibrado, buena calidad",
		CostPer1KInput:  0.00015,
		CostPer1KOutput: 0.0006,
		SupportsVision:  true,
	},
	{
		ID:              "gpt-4o-mini",
		Name:            "GPT-4o Mini (OpenAI)",
		Provider:        ProviderOpenAI,
		Description:     "OpenAI directo",
		CostPer1KInput:  0.00015,
		CostPer1KOutput: 0.0006,
		SupportsVision:  true,
	},
	{
		ID:              "gemini-2.0-flash",
		Name:            "Gemini 2.0 Flash (Google)",
		Provider:        ProviderGemini,
		Description:     "Gemini directo",
		CostPer1KInput:  0.0001,
		CostPer1KOutput: 0.0004,
		SupportsVision:  true,
	},
}

// Registry is a read-only model catalog with a default entry.
type Registry struct {
	models    []Model
	byID      map[string]int
	defaultID string
}

// New returns the built-in catalog. defaultID falls back to DefaultModelID
// when empty or not in the catalog.
func New(defaultID string) *Registry {
	return NewWithModels(catalog, defaultID)
}

func NewWithModels(models []Model, defaultID string) *Registry {
	r := &Registry{
		models: append([]Model(nil), models...),
		byID:   make(map[string]int, len(models)),
	}
	for i, m := range r.models {
		r.byID[m.ID] = i
	}
	switch {
	case r.has(defaultID):
		r.defaultID = defaultID
	case r.has(DefaultModelID):
		r.defaultID = DefaultModelID
	case len(r.models) > 0:
		r.defaultID = r.models[0].ID
	}
	return r
}

func (r *Registry) has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Registry) Get(id string) (Model, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Model{}, false
	}
	return r.models[i], true
}

func (r *Registry) Default() Model {
	m, _ := r.Get(r.defaultID)
	return m
}

// Resolve never fails: unknown or blank ids map to the default model.
func (r *Registry) Resolve(id string) Model {
	if m, ok := r.Get(id); ok {
		return m
	}
	return r.Default()
}

func (r *Registry) List() []Model {
	return append([]Model(nil), r.models...)
}
