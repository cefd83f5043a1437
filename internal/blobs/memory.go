package blobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"nicole-studio/internal/metrics"
)

type entry struct {
	blob  Blob
	timer *time.Timer
}

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]*entry
	reg  *metrics.Registry
}

func NewMemoryRepository(reg *metrics.Registry) *MemoryRepository {
	return &MemoryRepository{data: make(map[string]*entry), reg: reg}
}

func (r *MemoryRepository) Save(ctx context.Context, blob Blob, ttl time.Duration) (string, error) {
	if len(blob.Data) == 0 {
		return "", errors.New("empty blob data")
	}

	id := uuid.NewString()
	e := &entry{blob: cloneBlob(blob)}

	r.mu.Lock()
	r.data[id] = e
	if ttl > 0 {
		e.timer = time.AfterFunc(ttl, func() {
			_ = r.Delete(context.Background(), id)
		})
	}
	r.mu.Unlock()

	log.Ctx(ctx).Debug().Str("blob_id", id).Int("bytes", len(blob.Data)).Dur("ttl", ttl).Msg("blob stored")
	r.reg.Inc(ctx, "blobs_saved_total", nil, 1)
	r.reg.Inc(ctx, "blobs_bytes_stored_total", nil, int64(len(blob.Data)))

	return id, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Blob, bool) {
	r.mu.RLock()
	e, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return Blob{}, false
	}
	return cloneBlob(e.blob), true
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.data[id]
	if ok {
		delete(r.data, id)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}

	log.Ctx(ctx).Debug().Str("blob_id", id).Int("bytes", len(e.blob.Data)).Msg("blob released")
	r.reg.Inc(ctx, "blobs_deleted_total", nil, 1)
	return nil
}

// Len reports how many blobs are held.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

func cloneBlob(b Blob) Blob {
	out := b
	out.Data = append([]byte(nil), b.Data...)
	return out
}
