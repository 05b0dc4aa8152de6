package reconcile

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTracker(t *testing.T) *Tracker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTracker(client)
}

func TestTrackerMarkAndPending(t *testing.T) {
	tracker := setupTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.Mark(ctx, "order-001", "TIMEOUT"))
	require.NoError(t, tracker.Mark(ctx, "order-002", "UNAVAILABLE"))

	pending, err := tracker.Pending(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"order-001", "order-002"}, pending)

	ok, err := tracker.IsPending(ctx, "order-001")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTrackerMarkIdempotent(t *testing.T) {
	tracker := setupTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.Mark(ctx, "order-001", "TIMEOUT"))
	require.NoError(t, tracker.Mark(ctx, "order-001", "UNAVAILABLE"))

	pending, err := tracker.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"order-001"}, pending)
}

func TestTrackerClear(t *testing.T) {
	tracker := setupTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.Mark(ctx, "order-001", "TIMEOUT"))
	require.NoError(t, tracker.Clear(ctx, "order-001"))

	pending, err := tracker.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	ok, err := tracker.IsPending(ctx, "order-001")
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing an untracked order is a no-op.
	assert.NoError(t, tracker.Clear(ctx, "order-unknown"))
}
