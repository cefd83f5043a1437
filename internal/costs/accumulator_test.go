package costs_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nicole-studio/internal/costs"
	"nicole-studio/internal/metrics"
)

type failingStore struct{ loadErr, saveErr error }

func (s failingStore) Load() (float64, error) { return 0, s.loadErr }
func (s failingStore) Save(float64) error     { return s.saveErr }

func TestAccumulator_LoadsPersistedTotal(t *testing.T) {
	store := costs.NewMemoryStore("1.250000")
	acc := costs.NewAccumulator(context.Background(), store, nil)
	assert.InDelta(t, 1.25, acc.Total(), 1e-9)
}

func TestAccumulator_UnparseableStartsAtZero(t *testing.T) {
	for _, raw := range []string{"abc", "-3", "NaN", ""} {
		acc := costs.NewAccumulator(context.Background(), costs.NewMemoryStore(raw), nil)
		assert.Zero(t, acc.Total(), "raw %q", raw)
	}

	acc := costs.NewAccumulator(context.Background(), failingStore{loadErr: errors.New("disk")}, nil)
	assert.Zero(t, acc.Total())
}

func TestAccumulator_IgnoresNonPositiveDeltas(t *testing.T) {
	store := costs.NewMemoryStore("")
	acc := costs.NewAccumulator(context.Background(), store, nil)

	for _, d := range []float64{0, -0.04, math.NaN(), math.Inf(1)} {
		acc.Add(context.Background(), d)
	}

	assert.Zero(t, acc.Total())
	assert.Equal(t, 0, store.Saves())
}

func TestAccumulator_PersistsEveryPositiveDelta(t *testing.T) {
	store := costs.NewMemoryStore("")
	reg := metrics.NewRegistry()
	acc := costs.NewAccumulator(context.Background(), store, reg)

	acc.Add(context.Background(), 0.04)
	total := acc.Add(context.Background(), 0.000123)

	assert.InDelta(t, 0.040123, total, 1e-12)
	assert.Equal(t, "0.040123", store.Raw())
	assert.Equal(t, 2, store.Saves())
	assert.Equal(t, int64(40123), reg.Value("cost_microusd_total", nil))
}

func TestAccumulator_SaveFailureStillAdvances(t *testing.T) {
	acc := costs.NewAccumulator(context.Background(), failingStore{saveErr: errors.New("read-only")}, nil)
	acc.Add(context.Background(), 0.04)
	assert.InDelta(t, 0.04, acc.Total(), 1e-12)
}

func TestAccumulator_ConcurrentAddsAreMonotonic(t *testing.T) {
	acc := costs.NewAccumulator(context.Background(), costs.NewMemoryStore("0.5"), nil)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Add(context.Background(), 0.04)
		}()
	}
	wg.Wait()

	assert.InDelta(t, 0.5+n*0.04, acc.Total(), 1e-9)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", costs.StorageKey)
	store := costs.NewFileStore(path)

	v, err := store.Load()
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, store.Save(0.08))
	acc := costs.NewAccumulator(context.Background(), costs.NewFileStore(path), nil)
	assert.InDelta(t, 0.08, acc.Total(), 1e-12)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store, err := costs.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "costs.db"))
	require.NoError(t, err)
	defer store.Close()

	v, err := store.Load()
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, store.Save(0.04))
	require.NoError(t, store.Save(0.12))

	v, err = store.Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.12, v, 1e-12)
}
