package moodboard

import (
	"context"
	"fmt"
	"strings"

	"nicole-studio/internal/metrics"
	"nicole-studio/internal/models"
	"nicole-studio/internal/providers"
)

// CostPerImage is the fixed USD price of one generated piece image.
const CostPerImage = 0.04

// ErrMissingPayload means the provider answered without an image.
var ErrMissingPayload = providers.ErrNoImagePayload

type PieceImage struct {
	ImageURI string
	CostUSD  float64
}

// BuildImagePrompt wraps a piece description in the catalog photo template.
func BuildImagePrompt(description string) string {
	return "Professional product photography of an elegant jewelry piece for Majorica. " +
		strings.TrimSpace(description) +
		". Clean white background, minimalist lighting, high-end jewelry catalog style. No text, no watermarks."
}

type Generator struct {
	images providers.ImageBackend
	reg    *metrics.Registry
}

func NewGenerator(images providers.ImageBackend, reg *metrics.Registry) *Generator {
	return &Generator{images: images, reg: reg}
}

func (g *Generator) Generate(ctx context.Context, description string) (*PieceImage, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: piece description must not be empty", models.ErrInvalidRequest)
	}

	b64, err := g.images.GenerateImage(ctx, BuildImagePrompt(description))
	if err != nil {
		g.reg.Inc(ctx, "upstream_calls_total", map[string]string{"kind": "image", "outcome": "error"}, 1)
		return nil, err
	}
	if strings.TrimSpace(b64) == "" {
		g.reg.Inc(ctx, "upstream_calls_total", map[string]string{"kind": "image", "outcome": "error"}, 1)
		return nil, ErrMissingPayload
	}

	g.reg.Inc(ctx, "upstream_calls_total", map[string]string{"kind": "image", "outcome": "ok"}, 1)
	g.reg.Inc(ctx, "images_generated_total", nil, 1)

	return &PieceImage{
		ImageURI: "data:image/png;base64," + b64,
		CostUSD:  CostPerImage,
	}, nil
}
