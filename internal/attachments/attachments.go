package attachments

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"nicole-studio/internal/blobs"
	"nicole-studio/internal/models"
)

// DefaultTTL is how long uploaded files are kept.
const DefaultTTL = 30 * 24 * time.Hour

type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

type Attachment struct {
	ID          string
	Name        string
	URL         string
	Kind        Kind
	ContentType string
	SizeBytes   int64
	ExpiresAt   time.Time
	key         string
}

// Response renders the attachment with its expiry badge as of now.
func (a Attachment) Response(now time.Time) models.AttachmentResponse {
	return models.AttachmentResponse{
		ID:        a.ID,
		Name:      a.Name,
		URL:       a.URL,
		Type:      string(a.Kind),
		SizeBytes: a.SizeBytes,
		ExpiresAt: a.ExpiresAt,
		Expiry:    ExpiryBadge(a.ExpiresAt, now),
	}
}

// KindFor accepts images and PDFs only.
func KindFor(contentType string) (Kind, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return KindImage, nil
	case ct == "application/pdf":
		return KindPDF, nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", models.ErrInvalidRequest, contentType)
	}
}

// ExpiryBadge counts whole days left, rounding up. Three days or fewer is
// critical, seven or fewer a warning.
func ExpiryBadge(expiresAt, now time.Time) models.ExpiryBadge {
	days := int(math.Ceil(expiresAt.Sub(now).Hours() / 24))

	level := "normal"
	switch {
	case days <= 3:
		level = "critical"
	case days <= 7:
		level = "warning"
	}

	label := "Hoy"
	if days > 0 {
		label = fmt.Sprintf("%dd", days)
	}
	return models.ExpiryBadge{Label: label, Level: level}
}

// Backend holds attachment bytes.
type Backend interface {
	Store(ctx context.Context, id, name, contentType string, data []byte, ttl time.Duration) (key, url string, err error)
	Fetch(ctx context.Context, key string) (blobs.Blob, error)
	Remove(ctx context.Context, key string) error
}

// Service tracks attachment metadata in memory and the bytes in a Backend.
type Service struct {
	mu      sync.RWMutex
	items   map[string]Attachment
	backend Backend
	ttl     time.Duration
	now     func() time.Time
}

func NewService(backend Backend, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		items:   make(map[string]Attachment),
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Upload validates the type from the declared content type, falling back to
// sniffing when it is missing or generic.
func (s *Service) Upload(ctx context.Context, name, contentType string, data []byte) (Attachment, error) {
	if len(data) == 0 {
		return Attachment{}, fmt.Errorf("%w: empty file %q", models.ErrInvalidRequest, name)
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	kind, err := KindFor(contentType)
	if err != nil {
		return Attachment{}, err
	}

	id := uuid.NewString()
	key, url, err := s.backend.Store(ctx, id, name, contentType, data, s.ttl)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to store attachment: %w", err)
	}

	a := Attachment{
		ID:          id,
		Name:        name,
		URL:         url,
		Kind:        kind,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		ExpiresAt:   s.now().Add(s.ttl),
		key:         key,
	}
	s.mu.Lock()
	s.items[id] = a
	s.mu.Unlock()

	log.Ctx(ctx).Info().Str("attachment_id", id).Str("kind", string(kind)).Int("bytes", len(data)).Msg("attachment stored")
	return a, nil
}

func (s *Service) Get(id string) (Attachment, error) {
	s.mu.RLock()
	a, ok := s.items[id]
	s.mu.RUnlock()
	if !ok || !s.now().Before(a.ExpiresAt) {
		return Attachment{}, fmt.Errorf("%w: file %s", models.ErrNotFound, id)
	}
	return a, nil
}

// Resolve looks up every id, failing on the first unknown one.
func (s *Service) Resolve(ids []string) ([]Attachment, error) {
	out := make([]Attachment, 0, len(ids))
	for _, id := range ids {
		a, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Open returns the stored bytes.
func (s *Service) Open(ctx context.Context, id string) (Attachment, blobs.Blob, error) {
	a, err := s.Get(id)
	if err != nil {
		return Attachment{}, blobs.Blob{}, err
	}
	blob, err := s.backend.Fetch(ctx, a.key)
	if err != nil {
		return Attachment{}, blobs.Blob{}, err
	}
	if blob.ContentType == "" {
		blob.ContentType = a.ContentType
	}
	return a, blob, nil
}

// Sweep drops expired attachments and returns their ids.
func (s *Service) Sweep(ctx context.Context) []string {
	now := s.now()
	var expired []Attachment

	s.mu.Lock()
	for id, a := range s.items {
		if !now.Before(a.ExpiresAt) {
			expired = append(expired, a)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(expired))
	for _, a := range expired {
		if err := s.backend.Remove(ctx, a.key); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("attachment_id", a.ID).Msg("failed to remove expired attachment")
		}
		ids = append(ids, a.ID)
	}
	sort.Strings(ids)
	return ids
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ids := s.Sweep(ctx); len(ids) > 0 {
				log.Ctx(ctx).Info().Int("count", len(ids)).Msg("expired attachments removed")
			}
		}
	}
}
