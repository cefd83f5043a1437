package costs

import (
	"context"

	"nicole-studio/internal/config"
)

// OpenStore picks the backend: DATABASE_URL, then COST_SQLITE_PATH, then
// the plain file. The returned close func is never nil.
func OpenStore(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	switch {
	case cfg.DatabaseURL != "":
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case cfg.CostSQLitePath != "":
		s, err := NewSQLiteStore(ctx, cfg.CostSQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return NewFileStore(cfg.CostFilePath), func() error { return nil }, nil
	}
}
