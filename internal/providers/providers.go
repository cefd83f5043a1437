package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"nicole-studio/internal/models"
)

// Completion is a normalized text completion.
type Completion struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// ChatBackend is a text completion provider.
type ChatBackend interface {
	Complete(ctx context.Context, model, system, user string) (*Completion, error)
}

// VisionBackend answers a prompt about one or more images.
type VisionBackend interface {
	Vision(ctx context.Context, prompt string, imageRefs []string) (*Completion, error)
}

// ImageBackend returns a single generated image as base64.
type ImageBackend interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// CredentialChecker reports whether a backend has what it needs to make a
// call, without making one.
type CredentialChecker interface {
	CheckCredentials() error
}

// ErrNoImagePayload is a successful image response without image data.
var ErrNoImagePayload = fmt.Errorf("%w: no image payload in response", models.ErrUpstream)

// StatusError is a non-success HTTP answer from a provider. Body is for
// server logs only.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return models.ErrUpstream
}

// IsAuthFailure reports missing or rejected provider credentials.
func IsAuthFailure(err error) bool {
	if errors.Is(err, models.ErrMissingCredentials) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
	}
	return false
}

func missingKey(envVar string) error {
	return fmt.Errorf("%w: %s not set", models.ErrMissingCredentials, envVar)
}

func upstream(provider, op string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", models.ErrUpstream, provider, op, err)
}
