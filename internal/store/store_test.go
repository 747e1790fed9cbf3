package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCursorsAndActions(t *testing.T) {
	db := openMem(t)
	ctx := context.Background()

	v, err := db.LoadCursor(ctx, "home:since_id")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, db.SaveCursor(ctx, "home:since_id", "123"))
	require.NoError(t, db.SaveCursor(ctx, "home:since_id", "456"))
	v, err = db.LoadCursor(ctx, "home:since_id")
	require.NoError(t, err)
	assert.Equal(t, "456", v)

	now := time.Now().UTC()
	require.NoError(t, db.PutAction(ctx, now, "favourite", "100001"))
	require.NoError(t, db.PutAction(ctx, now, "follow", "1"))
	n, err := db.CountActionsWithin(ctx, now.Add(-time.Hour), now.Add(time.Hour), "favourite")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = db.CountActionsWithin(ctx, now.Add(-time.Hour), now.Add(time.Hour), "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = db.CountActionsWithin(ctx, now.Add(time.Hour), now.Add(2*time.Hour), "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecentAndRangeActions(t *testing.T) {
	db := openMem(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []string{"post", "favourite", "reblog"} {
		require.NoError(t, db.PutAction(ctx, base.Add(time.Duration(i)*time.Minute), kind, ""))
	}

	recent, err := db.RecentActions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "reblog", recent[0].Kind)
	assert.Equal(t, "favourite", recent[1].Kind)

	all, err := db.ActionsRange(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "post", all[0].Kind)
	assert.Equal(t, base, all[0].TS)
}

func TestPutEventIsIdempotent(t *testing.T) {
	db := openMem(t)
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	added, err := db.PutEvent(ctx, ts, "status", "100001", map[string]any{"author": "Gargron"})
	require.NoError(t, err)
	assert.True(t, added)
	added, err = db.PutEvent(ctx, ts, "status", "100001", map[string]any{"author": "Gargron"})
	require.NoError(t, err)
	assert.False(t, added)
	added, err = db.PutEvent(ctx, ts, "reblog", "100001", nil)
	require.NoError(t, err)
	assert.True(t, added)

	events, err := db.LoadEventsRange(ctx, ts, ts.Add(time.Second), "status")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "100001", events[0].Ref)
	assert.JSONEq(t, `{"author":"Gargron"}`, events[0].Payload)

	events, err = db.LoadEventsRange(ctx, ts, ts.Add(time.Second), "")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestOpenFileReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveCursor(context.Background(), "k", "v"))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.LoadCursor(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
