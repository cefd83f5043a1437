package attachments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"nicole-studio/internal/blobs"
	"nicole-studio/internal/models"
	"nicole-studio/internal/supabase"
)

// MemoryBackend keeps bytes in a blob repository and serves them back
// through the files endpoint.
type MemoryBackend struct {
	repo    blobs.Repository
	baseURL string
}

func NewMemoryBackend(repo blobs.Repository, baseURL string) *MemoryBackend {
	return &MemoryBackend{repo: repo, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (b *MemoryBackend) Store(ctx context.Context, id, name, contentType string, data []byte, ttl time.Duration) (string, string, error) {
	key, err := b.repo.Save(ctx, blobs.Blob{Data: data, ContentType: contentType, Name: name}, ttl)
	if err != nil {
		return "", "", err
	}
	return key, b.baseURL + "/api/files/" + id + "/content", nil
}

func (b *MemoryBackend) Fetch(ctx context.Context, key string) (blobs.Blob, error) {
	blob, ok := b.repo.Get(ctx, key)
	if !ok {
		return blobs.Blob{}, fmt.Errorf("%w: blob %s", models.ErrNotFound, key)
	}
	return blob, nil
}

func (b *MemoryBackend) Remove(ctx context.Context, key string) error {
	return b.repo.Delete(ctx, key)
}

// objectStorage is the part of supabase.StorageClient the backend uses.
type objectStorage interface {
	UploadFile(storagePath, contentType string, data []byte) (string, error)
	DownloadFile(storagePath string) ([]byte, error)
	DeleteFile(storagePath string) error
}

// SupabaseBackend stores bytes in a Supabase Storage bucket and hands out
// public URLs. Expiry is enforced by Sweep, not by the bucket.
type SupabaseBackend struct {
	storage objectStorage
}

func NewSupabaseBackend(storage *supabase.StorageClient) *SupabaseBackend {
	return &SupabaseBackend{storage: storage}
}

func (b *SupabaseBackend) Store(ctx context.Context, id, name, contentType string, data []byte, ttl time.Duration) (string, string, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return "", "", err
	}
	path := supabase.AttachmentPath(uid, name)
	url, err := b.storage.UploadFile(path, contentType, data)
	if err != nil {
		return "", "", err
	}
	return path, url, nil
}

func (b *SupabaseBackend) Fetch(ctx context.Context, key string) (blobs.Blob, error) {
	data, err := b.storage.DownloadFile(key)
	if err != nil {
		return blobs.Blob{}, err
	}
	return blobs.Blob{Data: data}, nil
}

func (b *SupabaseBackend) Remove(ctx context.Context, key string) error {
	return b.storage.DeleteFile(key)
}
