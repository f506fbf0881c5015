package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/venuebot/internal/core"
)

func newTestRepo(t *testing.T) *MemoriesRepo {
	t.Helper()

	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewMemoriesRepo(db)
}

func TestMemoriesRepo_AddAndRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, summary := range []string{"first session", "second session", "third session"} {
		_, err := repo.Add(ctx, core.MemoryRecord{
			SessionID: "s1",
			Summary:   summary,
			Location:  "Shoreditch",
			Tags:      []string{"ramen", "dinner"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "third session", records[0].Summary)
	assert.Equal(t, "second session", records[1].Summary)
	assert.Equal(t, []string{"ramen", "dinner"}, records[0].Tags)
	assert.Equal(t, "Shoreditch", records[0].Location)
}

func TestMemoriesRepo_EmptyTable(t *testing.T) {
	repo := newTestRepo(t)

	records, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoriesRepo_EmptyTagsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, core.MemoryRecord{SessionID: "s1", Summary: "no tags"})
	require.NoError(t, err)

	records, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Tags)
}
