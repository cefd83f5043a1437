package costs

import (
	"context"
	"math"
	"sync"

	"github.com/rs/zerolog/log"
	"nicole-studio/internal/metrics"
)

// Accumulator is the process-wide running USD total. It only grows through
// Add; resets happen outside the process by rewriting the store.
type Accumulator struct {
	mu    sync.Mutex
	store Store
	total float64
	reg   *metrics.Registry
}

// NewAccumulator loads the persisted total once. A missing or unreadable
// value starts the total at zero.
func NewAccumulator(ctx context.Context, store Store, reg *metrics.Registry) *Accumulator {
	total, err := store.Load()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("stored cost total unreadable, starting from zero")
		total = 0
	}
	return &Accumulator{store: store, total: total, reg: reg}
}

// Add applies a positive delta and persists the new total. Zero, negative
// and non-finite deltas are ignored. A failed save is logged; the in-memory
// total still advances.
func (a *Accumulator) Add(ctx context.Context, delta float64) float64 {
	if delta <= 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return a.Total()
	}

	a.mu.Lock()
	a.total += delta
	total := a.total
	err := a.store.Save(total)
	a.mu.Unlock()

	if err != nil {
		log.Ctx(ctx).Error().Err(err).Float64("total_usd", total).Msg("failed to persist cost total")
	}
	a.reg.Inc(ctx, "cost_microusd_total", nil, int64(math.Round(delta*1e6)))
	return total
}

func (a *Accumulator) Total() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}
