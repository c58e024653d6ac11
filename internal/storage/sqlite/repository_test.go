package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/safar/maison-store/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(ctx, filepath.Join(t.TempDir(), "nested", "maison.db"), "")
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.Load(ctx, storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repo.Save(ctx, storage.KeyCart, []byte(`[{"id":1,"quantity":1}]`)))
	require.NoError(t, repo.Save(ctx, storage.KeyCart, []byte(`[]`)))

	got, err := repo.Load(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "maison.db")

	first, err := Open(ctx, path, "profile")
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, storage.KeyOrders, []byte(`[{"id":"ord_1"}]`)))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path, "profile")
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Load(ctx, storage.KeyOrders)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"ord_1"}]`, string(got))

	other, err := Open(ctx, path, "someone-else")
	require.NoError(t, err)
	defer other.Close()

	_, err = other.Load(ctx, storage.KeyOrders)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRepository_InMemory(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(ctx, ":memory:", "test")
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Save(ctx, storage.KeyWishlist, []byte(`[]`)))
	_, err = repo.Load(ctx, storage.KeyWishlist)
	assert.NoError(t, err)

	assert.Error(t, repo.Save(ctx, "bogus", []byte(`[]`)))
}
