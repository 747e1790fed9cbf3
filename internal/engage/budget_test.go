package engage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuuji3/tweepy-mastodon/internal/config"
	"github.com/shuuji3/tweepy-mastodon/internal/store"
)

func openJournal(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestShouldAllowEngageRespectsBudgets(t *testing.T) {
	db := openJournal(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.EngagementConfig{MaxPerHour: 2, MaxPerDay: 3}

	ok, err := ShouldAllowEngage(ctx, db, cfg, now)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, RecordEngage(ctx, db, "favourite", "1", now))
	require.NoError(t, RecordEngage(ctx, db, "follow", "2", now.Add(5*time.Minute)))
	ok, _ = ShouldAllowEngage(ctx, db, cfg, now.Add(10*time.Minute))
	assert.False(t, ok, "hourly budget")

	require.NoError(t, RecordEngage(ctx, db, "post", "", now.Add(65*time.Minute)))
	ok, _ = ShouldAllowEngage(ctx, db, cfg, now.Add(70*time.Minute))
	assert.False(t, ok, "daily budget")

	ok, _ = ShouldAllowEngage(ctx, db, cfg, now.Add(24*time.Hour))
	assert.True(t, ok, "next day")
}

func TestAllowQuietHours(t *testing.T) {
	db := openJournal(t)
	cfg := config.EngagementConfig{QuietHours: []int{3}}
	err := Allow(context.Background(), db, cfg, time.Date(2025, 1, 1, 3, 10, 0, 0, time.UTC))
	assert.True(t, errors.Is(err, ErrQuietHours))
	assert.Contains(t, err.Error(), "2025-01-01T04:00:00Z")
	assert.NoError(t, Allow(context.Background(), db, cfg, time.Date(2025, 1, 1, 4, 0, 0, 0, time.UTC)))
}

func TestDoRecordsOnlySuccess(t *testing.T) {
	db := openJournal(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.EngagementConfig{MaxPerHour: 1}

	boom := errors.New("boom")
	assert.ErrorIs(t, Do(ctx, db, cfg, "follow", "1", now, func() error { return boom }), boom)
	n, err := db.CountActionsWithin(ctx, now, now.Add(time.Hour), "")
	require.NoError(t, err)
	assert.Zero(t, n)

	calls := 0
	require.NoError(t, Do(ctx, db, cfg, "follow", "1", now, func() error { calls++; return nil }))
	err = Do(ctx, db, cfg, "follow", "2", now.Add(time.Minute), func() error { calls++; return nil })
	assert.ErrorIs(t, err, ErrBudgetExhausted)
	assert.Equal(t, 1, calls)
}
