package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLiteProvider {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteSeedAndPage(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	assets := GenerateCatalog(30)

	n, err := db.Seed(ctx, assets)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	// Seeding twice inserts nothing new
	n, err = db.Seed(ctx, assets)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	count, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, count)

	page, err := db.FetchPage(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, page, 10)
	for i, a := range page {
		want := assets[10+i]
		assert.Equal(t, want.ID, a.ID)
		assert.Equal(t, want.Kind, a.Kind)
		assert.Equal(t, want.Name, a.Name)
		assert.Equal(t, want.Seats, a.Seats)
		assert.Equal(t, want.Cost, a.Cost)
		assert.Equal(t, want.Notes, a.Notes)
		if want.Expiry == nil {
			assert.Nil(t, a.Expiry)
		} else {
			require.NotNil(t, a.Expiry)
			assert.True(t, want.Expiry.Equal(*a.Expiry))
		}
	}

	page, err = db.FetchPage(ctx, 30, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	_, err = db.FetchPage(ctx, 0, -1)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestSQLiteWithPager(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Seed(context.Background(), GenerateCatalog(15))
	require.NoError(t, err)

	pager := NewPager(db, 10)
	first, err := pager.Next(context.Background())
	require.NoError(t, err)
	second, err := pager.Next(context.Background())
	require.NoError(t, err)
	third, err := pager.Next(context.Background())
	require.NoError(t, err)

	assert.Len(t, first, 10)
	assert.Len(t, second, 5)
	assert.Empty(t, third)
}
