package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"nicole-studio/internal/blobs"
	"nicole-studio/internal/metrics"
	"nicole-studio/internal/models"
)

// DefaultImageTTL bounds how long staged moodboard bytes are kept.
const DefaultImageTTL = 24 * time.Hour

// Manager keeps workspaces in memory keyed by id.
type Manager struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace

	analyzer  Analyzer
	generator Generator
	costs     Costs
	blobs     blobs.Repository
	imageTTL  time.Duration
	reg       *metrics.Registry
}

func NewManager(analyzer Analyzer, generator Generator, costs Costs, repo blobs.Repository, imageTTL time.Duration, reg *metrics.Registry) *Manager {
	if imageTTL <= 0 {
		imageTTL = DefaultImageTTL
	}
	return &Manager{
		workspaces: make(map[string]*Workspace),
		analyzer:   analyzer,
		generator:  generator,
		costs:      costs,
		blobs:      repo,
		imageTTL:   imageTTL,
		reg:        reg,
	}
}

func (m *Manager) Create(ctx context.Context) *Workspace {
	w := &Workspace{
		id:        uuid.NewString(),
		analyzer:  m.analyzer,
		generator: m.generator,
		costs:     m.costs,
		blobs:     m.blobs,
		imageTTL:  m.imageTTL,
	}

	m.mu.Lock()
	m.workspaces[w.id] = w
	m.mu.Unlock()

	log.Ctx(ctx).Info().Str("workspace_id", w.id).Msg("workspace created")
	m.reg.Inc(ctx, "workspaces_created_total", nil, 1)
	return w
}

func (m *Manager) Get(id string) (*Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: workspace %s", models.ErrNotFound, id)
	}
	return w, nil
}

// Delete drops the workspace and its staged images. In-flight calls finish
// against the detached workspace and their results are discarded.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	w, ok := m.workspaces[id]
	delete(m.workspaces, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: workspace %s", models.ErrNotFound, id)
	}
	w.Close(ctx)
	log.Ctx(ctx).Info().Str("workspace_id", id).Msg("workspace deleted")
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}
