package costs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nicole-studio/internal/database"
)

type dialect struct {
	driver string
	get    string
	put    string
}

var (
	postgresDialect = dialect{
		driver: database.DriverPostgres,
		get:    `SELECT value FROM kv_store WHERE key = $1`,
		put: `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
	}
	sqliteDialect = dialect{
		driver: database.DriverSQLite,
		get:    `SELECT value FROM kv_store WHERE key = ?`,
		put: `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
	}
)

// SQLStore keeps the total in a kv_store row keyed by StorageKey.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgresStore connects and applies pending migrations.
func NewPostgresStore(ctx context.Context, dbURL string) (*SQLStore, error) {
	return openSQLStore(ctx, postgresDialect, dbURL)
}

// NewSQLiteStore opens, creating if needed, a local database file.
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return openSQLStore(ctx, sqliteDialect, path)
}

func openSQLStore(ctx context.Context, d dialect, dsn string) (*SQLStore, error) {
	db, err := database.Open(d.driver, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := database.NewMigrator(db, d.driver).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) Load() (float64, error) {
	var raw string
	err := s.db.QueryRow(s.dialect.get, StorageKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load total: %w", err)
	}
	return parseTotal(raw)
}

func (s *SQLStore) Save(total float64) error {
	if _, err := s.db.Exec(s.dialect.put, StorageKey, formatTotal(total)); err != nil {
		return fmt.Errorf("failed to save total: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
