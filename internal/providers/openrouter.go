package providers

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1/"

// OpenRouter talks to the OpenAI-compatible chat completions endpoint
// through the OpenAI SDK pointed at the OpenRouter base URL.
type OpenRouter struct {
	client openai.Client
	apiKey string
}

func NewOpenRouter(baseURL, apiKey string) *OpenRouter {
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouter{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
			option.WithHeader("X-Title", "Nicole Studio"),
		),
		apiKey: apiKey,
	}
}

func (c *OpenRouter) Complete(ctx context.Context, model, system, user string) (*Completion, error) {
	if c.apiKey == "" {
		return nil, missingKey("OPENROUTER_API_KEY")
	}
	return complete(ctx, c.client, "openrouter", "chat", chatParams(model, system, user))
}
