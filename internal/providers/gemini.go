package providers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Gemini serves chat through the Google generative language API.
type Gemini struct {
	client *genai.Client
}

// NewGemini returns a backend that reports missing credentials per call
// when apiKey is empty.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return &Gemini{}, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Complete(ctx context.Context, model, system, user string) (*Completion, error) {
	if g.client == nil {
		return nil, missingKey("GEMINI_API_KEY")
	}

	gm := g.client.GenerativeModel(model)
	gm.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Provider: "gemini chat", StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return nil, upstream("gemini", "chat", err)
	}
	return completionFromGemini(resp)
}

func completionFromGemini(resp *genai.GenerateContentResponse) (*Completion, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, upstream("gemini", "chat", errors.New("no candidates in response"))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	out := &Completion{Content: strings.TrimSpace(sb.String())}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
