package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/market-pulse/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "denver-co", "Denver, CO")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := s.GetRun(ctx, "denver-co")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "Denver, CO", got.Query)
	assert.Nil(t, got.CompletedAt)

	snapshot := []byte(`{"final_score":72}`)
	require.NoError(t, s.CompleteRun(ctx, run.ID, 72, "Strong Buy", 85, snapshot))

	got, err = s.GetRun(ctx, "denver-co")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 72, got.FinalScore)
	assert.Equal(t, "Strong Buy", got.Band)
	assert.Equal(t, 85, got.Quality)
	assert.Equal(t, snapshot, got.Snapshot)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "nowhere-xx", "Nowhere, XX")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, "location could not be resolved"))

	got, err := s.GetRun(ctx, "nowhere-xx")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "location could not be resolved", got.Error)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLiteGetRunReturnsLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, "austin-tx", "Austin, TX")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, first.ID, 55, "Moderate Opportunity", 60, nil))

	// Force a later created_at for the second run.
	second, err := s.CreateRun(ctx, "austin-tx", "Austin, TX")
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET created_at = ? WHERE id = ?`, time.Now().UTC().Add(time.Hour), second.ID)
	require.NoError(t, err)

	got, err := s.GetRun(ctx, "austin-tx")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteUpdateMissingRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.CompleteRun(ctx, "no-such-id", 50, "Market Rate", 50, nil), ErrRunNotFound)
	assert.ErrorIs(t, s.FailRun(ctx, "no-such-id", "boom"), ErrRunNotFound)
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, "denver-co", "Denver, CO")
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, a.ID, 72, "Strong Buy", 85, []byte(`{"big":"snapshot"}`)))

	b, err := s.CreateRun(ctx, "austin-tx", "Austin, TX")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, b.ID, "boom"))

	_, err = s.CreateRun(ctx, "boise-id", "Boise, ID")
	require.NoError(t, err)

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, run := range all {
		assert.Empty(t, run.Snapshot, "listings omit snapshots")
	}

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, "denver-co", complete[0].Slug)

	bySlug, err := s.ListRuns(ctx, RunFilter{Slug: "austin-tx"})
	require.NoError(t, err)
	require.Len(t, bySlug, 1)
	assert.Equal(t, "boom", bySlug[0].Error)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
