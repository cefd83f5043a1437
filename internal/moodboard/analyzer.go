package moodboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"nicole-studio/internal/metrics"
	"nicole-studio/internal/models"
	"nicole-studio/internal/providers"
)

const MaxImages = 3

var (
	ErrNoImages      = fmt.Errorf("%w: at least one image required", models.ErrInvalidRequest)
	ErrTooManyImages = fmt.Errorf("%w: at most three images", models.ErrInvalidRequest)
)

const analysisInstruction = `Eres Nicole, asistente de diseño de joyería para Majorica (perlas y joyería elegante).

Analiza las imágenes del moodboard que te envío y responde ÚNICAMENTE con un JSON válido, sin texto antes ni después, con esta estructura exacta:

{
  "adn": {
    "lineas": "1 frase: tipo de líneas y formas dominantes (ej: orgánicas, curvas, geométricas).",
    "texturas": "1 frase: texturas y materiales que se perciben.",
    "energia": "1 frase: sensación general (ej: minimal, escultórico, romántico)."
  },
  "piezas": [
    "Pieza 1: nombre corto. 2 frases máximo: descripción técnica concreta (forma, material, detalle).",
    "Pieza 2: ...",
    "Pieza 3: ..."
  ]
}

Reglas:
- Máximo 3 piezas. Cada una en 2 frases.
- Lenguaje de diseñadora: concreto, técnico, sin marketing.
- Si las imágenes no dan suficiente señal para proponer piezas sólidas, devuelve este JSON en su lugar:
{
  "needMoreInfo": true,
  "whatISee": "2-3 frases describiendo qué sí se ve en el moodboard (formas, colores, estilo).",
  "questions": ["Pregunta 1 concreta?", "Pregunta 2?", "Pregunta 3?"]
}
- Responde solo con el JSON, nada más.`

// BuildPrompt prepends the designer's context, when given, to the fixed
// analysis instruction.
func BuildPrompt(designerContext string) string {
	designerContext = strings.TrimSpace(designerContext)
	if designerContext == "" {
		return analysisInstruction
	}
	return `CONTEXTO ADICIONAL proporcionado por la diseñadora (usa esta información para afinar el ADN y las piezas):

"""
` + designerContext + `
"""

---

` + analysisInstruction
}

// Analyzer keeps no state between calls.
type Analyzer struct {
	vision providers.VisionBackend
	reg    *metrics.Registry
}

func NewAnalyzer(vision providers.VisionBackend, reg *metrics.Registry) *Analyzer {
	return &Analyzer{vision: vision, reg: reg}
}

// Ready reports missing provider credentials before any request is read.
func (a *Analyzer) Ready() error {
	if cc, ok := a.vision.(providers.CredentialChecker); ok {
		return cc.CheckCredentials()
	}
	return nil
}

// Analyze returns a Result for 1 to 3 images. Provider failures are
// returned as errors; an output that breaks the JSON contract is not.
// Missing credentials are reported ahead of a bad image count.
func (a *Analyzer) Analyze(ctx context.Context, images []Image, designerContext string) (Result, error) {
	if err := a.Ready(); err != nil {
		return nil, err
	}
	switch {
	case len(images) == 0:
		return nil, ErrNoImages
	case len(images) > MaxImages:
		return nil, ErrTooManyImages
	}

	refs := make([]string, len(images))
	for i, img := range images {
		refs[i] = img.Ref()
	}

	out, err := a.vision.Vision(ctx, BuildPrompt(designerContext), refs)
	if err != nil {
		a.reg.Inc(ctx, "upstream_calls_total", map[string]string{"kind": "vision", "outcome": "error"}, 1)
		return nil, err
	}
	a.reg.Inc(ctx, "upstream_calls_total", map[string]string{"kind": "vision", "outcome": "ok"}, 1)

	result, parsed := ClassifyResponse(out.Content)
	if !parsed {
		a.reg.Inc(ctx, "analysis_fallbacks_total", nil, 1)
		log.Ctx(ctx).Warn().Str("raw", out.Content).Msg("vision output was not a JSON object, using fallback")
	}
	return result, nil
}
