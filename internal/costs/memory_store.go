package costs

import "sync"

// MemoryStore holds the raw stored string, like the other stores do.
type MemoryStore struct {
	mu    sync.Mutex
	raw   string
	saves int
}

func NewMemoryStore(raw string) *MemoryStore {
	return &MemoryStore{raw: raw}
}

func (s *MemoryStore) Load() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return parseTotal(s.raw)
}

func (s *MemoryStore) Save(total float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = formatTotal(total)
	s.saves++
	return nil
}

// Raw returns the stored string.
func (s *MemoryStore) Raw() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}

// Saves counts Save calls.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
