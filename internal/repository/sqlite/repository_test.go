package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "agribalance.db")

	repo, err := NewRepository(ctx, path)
	require.NoError(t, err)

	_, found, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set(ctx, "k", "one"))
	require.NoError(t, repo.Set(ctx, "k", "two"))

	v, found, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "two", v)
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	v, _, err = reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", v, "values survive a reopen")
}
