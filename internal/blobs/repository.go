package blobs

import (
	"context"
	"time"
)

// Blob is a transient binary payload with its content type.
type Blob struct {
	Data        []byte
	ContentType string
	Name        string
}

// Repository keeps blobs for a limited time.
type Repository interface {
	// Save stores a copy and returns a UUID. ttl <= 0 keeps it until Delete.
	Save(ctx context.Context, blob Blob, ttl time.Duration) (string, error)
	// Get returns a copy of the blob. The boolean indicates presence.
	Get(ctx context.Context, id string) (Blob, bool)
	// Delete removes a blob before its TTL expires. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error
}
