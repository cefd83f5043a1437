package costs_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nicole-studio/internal/config"
	"nicole-studio/internal/costs"
)

func TestOpenStore_SelectsBackend(t *testing.T) {
	dir := t.TempDir()

	store, closeFn, err := costs.OpenStore(context.Background(), &config.Config{CostFilePath: filepath.Join(dir, "total")})
	require.NoError(t, err)
	assert.IsType(t, &costs.FileStore{}, store)
	assert.NoError(t, closeFn())

	store, closeFn, err = costs.OpenStore(context.Background(), &config.Config{
		CostSQLitePath: filepath.Join(dir, "costs.db"),
		CostFilePath:   filepath.Join(dir, "total"),
	})
	require.NoError(t, err)
	assert.IsType(t, &costs.SQLStore{}, store)
	assert.NoError(t, closeFn())
}
