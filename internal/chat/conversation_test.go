package chat_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nicole-studio/internal/chat"
	"nicole-studio/internal/models"
	"nicole-studio/internal/providers"
)

type recordingCosts struct {
	mu     sync.Mutex
	deltas []float64
}

func (r *recordingCosts) Add(ctx context.Context, delta float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deltas = append(r.deltas, delta)
	return 0
}

func TestConversations_Exchange(t *testing.T) {
	backend := &fakeBackend{out: &providers.Completion{Content: "**Hola**, soy Nicole.\n\n\n\nTe ayudo.", InputTokens: 1000, OutputTokens: 1000}}
	costs := &recordingCosts{}
	convs := chat.NewConversations(newService(backend, nil, nil), costs)

	conv := convs.Create()
	user, assistant, err := convs.Exchange(context.Background(), conv.ID(), "Ideas para un collar de perlas", "", nil)
	require.NoError(t, err)
	require.NotNil(t, assistant)

	assert.Equal(t, "user", user.Role)
	assert.Equal(t, "assistant", assistant.Role)
	assert.Equal(t, "Hola, soy Nicole.\n\nTe ayudo.", assistant.Content)
	assert.Equal(t, "openrouter", assistant.Provider)
	assert.InDelta(t, 0.0005, assistant.CostUSD, 1e-12)
	assert.Equal(t, []float64{assistant.CostUSD}, costs.deltas)

	snap := conv.Snapshot()
	assert.Equal(t, "Ideas para un collar de perlas", snap.Title)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, user.ID, snap.Messages[0].ID)
	assert.Equal(t, assistant.ID, snap.Messages[1].ID)
}

func TestConversations_FallbackAddsNoCost(t *testing.T) {
	backend := &fakeBackend{err: fmt.Errorf("%w: down", models.ErrUpstream)}
	costs := &recordingCosts{}
	convs := chat.NewConversations(newService(backend, nil, nil), costs)
	conv := convs.Create()

	_, assistant, err := convs.Exchange(context.Background(), conv.ID(), "hola", "", nil)
	require.NoError(t, err)
	assert.Equal(t, chat.FallbackMessage, assistant.Content)
	assert.Zero(t, assistant.CostUSD)
	assert.Empty(t, costs.deltas)
}

func TestConversations_AttachmentOnlyMessage(t *testing.T) {
	backend := &fakeBackend{out: &providers.Completion{Content: "x"}}
	convs := chat.NewConversations(newService(backend, nil, nil), nil)
	conv := convs.Create()

	files := []models.AttachmentResponse{{ID: "f1", Name: "moodboard.pdf", Type: "pdf"}}
	user, assistant, err := convs.Exchange(context.Background(), conv.ID(), "", "", files)
	require.NoError(t, err)
	assert.Nil(t, assistant)
	assert.Equal(t, files, user.Files)
	assert.Empty(t, backend.calls)
	assert.Empty(t, conv.Snapshot().Title)
}

func TestConversations_Errors(t *testing.T) {
	convs := chat.NewConversations(newService(&fakeBackend{}, nil, nil), nil)

	_, _, err := convs.Exchange(context.Background(), "missing", "hola", "", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	conv := convs.Create()
	_, _, err = convs.Exchange(context.Background(), conv.ID(), "  ", "", nil)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
	assert.Empty(t, conv.Snapshot().Messages)
}
