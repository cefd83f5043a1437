package costs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the total as a decimal string in a single file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (float64, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cost file: %w", err)
	}
	return parseTotal(string(data))
}

// Save writes through a temp file so a crash never leaves a torn value.
func (s *FileStore) Save(total float64) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cost directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(formatTotal(total)), 0o644); err != nil {
		return fmt.Errorf("failed to write cost file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cost file: %w", err)
	}
	return nil
}
