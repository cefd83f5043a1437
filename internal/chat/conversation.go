package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"nicole-studio/internal/models"
)

// CostRecorder receives the cost of each priced exchange.
type CostRecorder interface {
	Add(ctx context.Context, delta float64) float64
}

const titleRunes = 40

// Conversation is an append-only transcript held in memory.
type Conversation struct {
	mu        sync.RWMutex
	id        string
	title     string
	messages  []models.ChatMessage
	createdAt time.Time
	updatedAt time.Time
}

func (c *Conversation) ID() string { return c.id }

func (c *Conversation) append(msg models.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.title == "" && msg.Role == "user" && strings.TrimSpace(msg.Content) != "" {
		c.title = truncateTitle(msg.Content)
	}
	c.messages = append(c.messages, msg)
	c.updatedAt = msg.CreatedAt
}

func (c *Conversation) Snapshot() models.ConversationResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.ConversationResponse{
		ID:        c.id,
		Title:     c.title,
		Messages:  append([]models.ChatMessage{}, c.messages...),
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
	}
}

func truncateTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > titleRunes {
		return string(r[:titleRunes]) + "…"
	}
	return s
}

// Conversations keeps transcripts for the lifetime of the process.
type Conversations struct {
	mu      sync.RWMutex
	items   map[string]*Conversation
	service *Service
	costs   CostRecorder
	now     func() time.Time
}

func NewConversations(service *Service, costs CostRecorder) *Conversations {
	return &Conversations{
		items:   make(map[string]*Conversation),
		service: service,
		costs:   costs,
		now:     time.Now,
	}
}

func (m *Conversations) Create() *Conversation {
	now := m.now()
	c := &Conversation{id: uuid.NewString(), createdAt: now, updatedAt: now}
	m.mu.Lock()
	m.items[c.id] = c
	m.mu.Unlock()
	return c
}

func (m *Conversations) Get(id string) (*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: conversation %s", models.ErrNotFound, id)
	}
	return c, nil
}

// Exchange appends the user message and, when it has text, the assistant
// reply. A message carrying only attachments gets no reply.
func (m *Conversations) Exchange(ctx context.Context, id, content, modelID string, files []models.AttachmentResponse) (*models.ChatMessage, *models.ChatMessage, error) {
	conv, err := m.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(content) == "" && len(files) == 0 {
		return nil, nil, fmt.Errorf("%w: message must have text or files", models.ErrInvalidRequest)
	}

	userMsg := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   content,
		Files:     files,
		CreatedAt: m.now(),
	}
	conv.append(userMsg)

	if strings.TrimSpace(content) == "" {
		return &userMsg, nil, nil
	}

	reply, err := m.service.Send(ctx, content, modelID)
	if err != nil {
		return &userMsg, nil, err
	}

	cost := reply.CostUSD()
	if cost > 0 && m.costs != nil {
		m.costs.Add(ctx, cost)
	}

	assistant := models.ChatMessage{
		ID:           uuid.NewString(),
		Role:         "assistant",
		Content:      Sanitize(reply.Content),
		Provider:     string(reply.Model.Provider),
		Model:        reply.Model.ID,
		TokensInput:  reply.TokensInput,
		TokensOutput: reply.TokensOutput,
		CostUSD:      cost,
		CreatedAt:    m.now(),
	}
	conv.append(assistant)
	return &userMsg, &assistant, nil
}
