package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"nicole-studio/internal/metrics"
	"nicole-studio/internal/models"
	"nicole-studio/internal/providers"
	"nicole-studio/internal/registry"
)

// FallbackMessage replaces any provider failure in the chat surface.
const FallbackMessage = "Lo siento, hubo un error al procesar tu mensaje. Por favor, intenta de nuevo."

const SystemPrompt = `Eres Nicole, asistente de diseño de joyería para Majorica (perlas y joyería elegante).
Ayudas al equipo de diseño con ideas de piezas, materiales, acabados y colecciones.

Reglas:
- Responde siempre en español.
- Respuestas cortas: 2-4 frases o una lista breve.
- Lenguaje de diseñadora: concreto, técnico, sin marketing.
- No uses markdown ni formato enriquecido (sin negritas, títulos ni tablas).`

// Reply is a normalized chat answer. Fallback replies carry zero tokens.
type Reply struct {
	Content      string
	TokensInput  int
	TokensOutput int
	Model        registry.Model
	Fallback     bool
}

// CostUSD prices the reply at its model's rates.
func (r *Reply) CostUSD() float64 {
	return r.Model.Cost(r.TokensInput, r.TokensOutput)
}

type Service struct {
	models   *registry.Registry
	backends map[registry.Provider]providers.ChatBackend
	reg      *metrics.Registry
}

func NewService(models *registry.Registry, backends map[registry.Provider]providers.ChatBackend, reg *metrics.Registry) *Service {
	return &Service{models: models, backends: backends, reg: reg}
}

// Send runs one exchange. Only an empty message is an error; every provider
// failure becomes the fallback reply.
func (s *Service) Send(ctx context.Context, message, modelID string) (*Reply, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, fmt.Errorf("%w: message must not be empty", models.ErrInvalidRequest)
	}

	model := s.models.Resolve(strings.TrimSpace(modelID))
	logger := log.Ctx(ctx).With().Str("model", model.ID).Str("provider", string(model.Provider)).Logger()
	if model.ID != strings.TrimSpace(modelID) {
		logger.Debug().Str("requested_model", modelID).Msg("unknown model id, using default")
	}

	backend := s.backends[model.Provider]
	if backend == nil {
		return s.fallback(ctx, model, fmt.Errorf("%w: no backend for provider %s", models.ErrUpstream, model.Provider)), nil
	}

	out, err := backend.Complete(ctx, model.ID, SystemPrompt, text)
	if err == nil && strings.TrimSpace(out.Content) == "" {
		err = fmt.Errorf("%w: empty completion", models.ErrUpstream)
	}
	if err != nil {
		return s.fallback(ctx, model, err), nil
	}

	s.reg.Inc(ctx, "upstream_calls_total", map[string]string{"kind": "chat", "outcome": "ok"}, 1)
	logger.Info().Int("tokens_input", out.InputTokens).Int("tokens_output", out.OutputTokens).Msg("chat exchange completed")

	return &Reply{
		Content:      out.Content,
		TokensInput:  out.InputTokens,
		TokensOutput: out.OutputTokens,
		Model:        model,
	}, nil
}

// fallback logs the real cause for operators. Credential problems are
// logged at error level with auth_failure set so they stand out.
func (s *Service) fallback(ctx context.Context, model registry.Model, cause error) *Reply {
	reason := "upstream"
	event := log.Ctx(ctx).Warn()
	if providers.IsAuthFailure(cause) {
		reason = "auth"
		event = log.Ctx(ctx).Error().Bool("auth_failure", true)
	}
	event.Err(cause).Str("model", model.ID).Str("provider", string(model.Provider)).Msg("chat provider failed, replying with fallback")

	s.reg.Inc(ctx, "upstream_calls_total", map[string]string{"kind": "chat", "outcome": "error"}, 1)
	s.reg.Inc(ctx, "chat_fallbacks_total", map[string]string{"reason": reason}, 1)

	return &Reply{Content: FallbackMessage, Model: model, Fallback: true}
}
