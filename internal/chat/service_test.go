package chat_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nicole-studio/internal/chat"
	"nicole-studio/internal/metrics"
	"nicole-studio/internal/models"
	"nicole-studio/internal/providers"
	"nicole-studio/internal/registry"
)

type fakeBackend struct {
	out   *providers.Completion
	err   error
	calls []string
}

func (f *fakeBackend) Complete(ctx context.Context, model, system, user string) (*providers.Completion, error) {
	f.calls = append(f.calls, model+"|"+user)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func newService(router, openai *fakeBackend, reg *metrics.Registry) *chat.Service {
	backends := map[registry.Provider]providers.ChatBackend{}
	if router != nil {
		backends[registry.ProviderOpenRouter] = router
	}
	if openai != nil {
		backends[registry.ProviderOpenAI] = openai
	}
	return chat.NewService(registry.New(""), backends, reg)
}

func TestSend_EmptyMessageIsInvalid(t *testing.T) {
	backend := &fakeBackend{}
	svc := newService(backend, nil, nil)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := svc.Send(context.Background(), msg, "")
		assert.ErrorIs(t, err, models.ErrInvalidRequest)
	}
	assert.Empty(t, backend.calls)
}

func TestSend_DispatchesByProvider(t *testing.T) {
	router := &fakeBackend{out: &providers.Completion{Content: "desde openrouter", InputTokens: 10, OutputTokens: 20}}
	direct := &fakeBackend{out: &providers.Completion{Content: "desde openai", InputTokens: 1, OutputTokens: 2}}
	svc := newService(router, direct, nil)

	reply, err := svc.Send(context.Background(), "  hola  ", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "desde openai", reply.Content)
	assert.Equal(t, []string{"gpt-4o-mini|hola"}, direct.calls)
	assert.Empty(t, router.calls)

	reply, err = svc.Send(context.Background(), "hola", "openai/gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "desde openrouter", reply.Content)
	assert.Equal(t, 10, reply.TokensInput)
	assert.Equal(t, 20, reply.TokensOutput)
	assert.False(t, reply.Fallback)
	assert.InDelta(t, (10*0.00015+20*0.0006)/1000, reply.CostUSD(), 1e-12)
}

func TestSend_UnknownModelUsesDefault(t *testing.T) {
	router := &fakeBackend{out: &providers.Completion{Content: "ok"}}
	svc := newService(router, nil, nil)

	reply, err := svc.Send(context.Background(), "hola", "made-up/model")
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultModelID, reply.Model.ID)
	assert.Equal(t, []string{registry.DefaultModelID + "|hola"}, router.calls)
}

func TestSend_FailuresBecomeFallback(t *testing.T) {
	tests := []struct {
		name       string
		backend    *fakeBackend
		wantReason string
	}{
		{
			name:       "transport failure",
			backend:    &fakeBackend{err: fmt.Errorf("%w: connection refused", models.ErrUpstream)},
			wantReason: "upstream",
		},
		{
			name:       "rejected key",
			backend:    &fakeBackend{err: &providers.StatusError{Provider: "openrouter chat", StatusCode: http.StatusUnauthorized}},
			wantReason: "auth",
		},
		{
			name:       "missing key",
			backend:    &fakeBackend{err: fmt.Errorf("%w: OPENROUTER_API_KEY not set", models.ErrMissingCredentials)},
			wantReason: "auth",
		},
		{
			name:       "empty completion",
			backend:    &fakeBackend{out: &providers.Completion{Content: "  ", InputTokens: 5}},
			wantReason: "upstream",
		},
		{
			name:       "unexpected error",
			backend:    &fakeBackend{err: errors.New("boom")},
			wantReason: "upstream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := metrics.NewRegistry()
			svc := newService(tt.backend, nil, reg)

			reply, err := svc.Send(context.Background(), "hola", "")
			require.NoError(t, err)
			assert.True(t, reply.Fallback)
			assert.Equal(t, chat.FallbackMessage, reply.Content)
			assert.Zero(t, reply.TokensInput)
			assert.Zero(t, reply.TokensOutput)
			assert.Zero(t, reply.CostUSD())
			assert.Equal(t, int64(1), reg.Value("chat_fallbacks_total", map[string]string{"reason": tt.wantReason}))
		})
	}
}

func TestSend_NoBackendForProvider(t *testing.T) {
	svc := newService(nil, nil, nil)
	reply, err := svc.Send(context.Background(), "hola", "")
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
}
