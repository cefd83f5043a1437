package providers

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type OpenAIOptions struct {
	APIKey          string
	BaseURL         string
	VisionModel     string
	VisionMaxTokens int
	ImageModel      string
}

// OpenAI serves chat, vision analysis and image generation. SDK retries are
// disabled; a failed call is reported once.
type OpenAI struct {
	client          openai.Client
	apiKey          string
	visionModel     string
	visionMaxTokens int
	imageModel      string
}

func NewOpenAI(opts OpenAIOptions) *OpenAI {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.VisionModel == "" {
		opts.VisionModel = "gpt-4o-mini"
	}
	if opts.VisionMaxTokens <= 0 {
		opts.VisionMaxTokens = 800
	}
	if opts.ImageModel == "" {
		opts.ImageModel = "dall-e-3"
	}
	return &OpenAI{
		client:          openai.NewClient(reqOpts...),
		apiKey:          opts.APIKey,
		visionModel:     opts.VisionModel,
		visionMaxTokens: opts.VisionMaxTokens,
		imageModel:      opts.ImageModel,
	}
}

func (c *OpenAI) CheckCredentials() error {
	if c.apiKey == "" {
		return missingKey("OPENAI_API_KEY")
	}
	return nil
}

func (c *OpenAI) Complete(ctx context.Context, model, system, user string) (*Completion, error) {
	if c.apiKey == "" {
		return nil, missingKey("OPENAI_API_KEY")
	}
	return complete(ctx, c.client, "openai", "chat", chatParams(model, system, user))
}

// Vision sends the prompt followed by the image references in one user
// message.
func (c *OpenAI) Vision(ctx context.Context, prompt string, imageRefs []string) (*Completion, error) {
	if c.apiKey == "" {
		return nil, missingKey("OPENAI_API_KEY")
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		{OfText: &openai.ChatCompletionContentPartTextParam{Text: prompt}},
	}
	for _, ref := range imageRefs {
		parts = append(parts, openai.ChatCompletionContentPartUnionParam{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
					URL:    ref,
					Detail: "auto",
				},
			},
		})
	}

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.visionModel),
		MaxTokens: openai.Int(int64(c.visionMaxTokens)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			},
		},
	}
	return complete(ctx, c.client, "openai", "vision", params)
}

// GenerateImage requests one 1024x1024 standard image as base64.
func (c *OpenAI) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", missingKey("OPENAI_API_KEY")
	}

	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(c.imageModel),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize("1024x1024"),
		Quality:        openai.ImageGenerateParamsQuality("standard"),
		ResponseFormat: openai.ImageGenerateParamsResponseFormat("b64_json"),
	})
	if err != nil {
		return "", wrap("openai", "image", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", ErrNoImagePayload
	}
	return resp.Data[0].B64JSON, nil
}

func chatParams(model, system, user string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(system),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(user),
					},
				},
			},
		},
	}
}

// complete runs one chat completion against any OpenAI-compatible client.
func complete(ctx context.Context, client openai.Client, provider, op string, params openai.ChatCompletionNewParams) (*Completion, error) {
	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrap(provider, op, err)
	}
	if len(resp.Choices) == 0 {
		return nil, upstream(provider, op, errors.New("no choices in response"))
	}
	return &Completion{
		Content:      strings.TrimSpace(resp.Choices[0].Message.Content),
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}, nil
}

// wrap turns SDK API errors into StatusError so auth failures stay visible.
func wrap(provider, op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &StatusError{Provider: provider + " " + op, StatusCode: apiErr.StatusCode, Body: apiErr.Error()}
	}
	return upstream(provider, op, err)
}
