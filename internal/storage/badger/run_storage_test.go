package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/common"
	"github.com/ternarybob/census/internal/models"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunStorageRoundTrip(t *testing.T) {
	db := newTestDB(t)
	storage := NewRunStorage(db, arbor.NewLogger())
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run_a", "run_b", "run_c"} {
		summary := &models.RunSummary{
			ID:           id,
			StartedAt:    base.Add(time.Duration(i) * time.Hour),
			FinishedAt:   base.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			LeafCount:    100,
			RecordCount:  100,
			ModularCount: 40 + i,
		}
		require.NoError(t, storage.SaveRunSummary(ctx, summary))
	}

	summaries, err := storage.ListRunSummaries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "run_c", summaries[0].ID, "newest first")
	assert.Equal(t, "run_b", summaries[1].ID)
	assert.Equal(t, 42, summaries[0].ModularCount)
}

func TestRunStorageUpsert(t *testing.T) {
	db := newTestDB(t)
	storage := NewRunStorage(db, arbor.NewLogger())
	ctx := context.Background()

	summary := &models.RunSummary{ID: "run_a", StartedAt: time.Now().UTC(), RecordCount: 10}
	require.NoError(t, storage.SaveRunSummary(ctx, summary))

	summary.RecordCount = 20
	require.NoError(t, storage.SaveRunSummary(ctx, summary))

	summaries, err := storage.ListRunSummaries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 20, summaries[0].RecordCount)
}

func TestSourceCache(t *testing.T) {
	db := newTestDB(t)
	cache := NewSourceCache(db, time.Hour, arbor.NewLogger())
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "src|gitlab.example.com|grp/proj|main|Jenkinsfile")
	require.NoError(t, err)
	assert.False(t, ok, "cold cache misses")

	require.NoError(t, cache.Set(ctx, "src|gitlab.example.com|grp/proj|main|Jenkinsfile", "@Library('lib')"))

	content, ok, err := cache.Get(ctx, "src|gitlab.example.com|grp/proj|main|Jenkinsfile")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "@Library('lib')", content)
}
