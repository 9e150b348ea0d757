package api

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresher_SnapshotsWatchlist(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	// GIVEN: two watched tokens
	_, err := ts.store.AddWatch(ctx, mustWatch(t, hexOf(tokenMega)))
	require.NoError(t, err)
	_, err = ts.store.AddWatch(ctx, mustWatch(t, hexOf(tokenDog)))
	require.NoError(t, err)

	// WHEN: a refresh runs
	rf := NewRefresher(ts.handler)
	rf.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	res := rf.RunNow(ctx)

	// THEN: each gets a snapshot
	assert.Equal(t, 2, res.Tokens)
	assert.Equal(t, 2, res.Saved)
	assert.Zero(t, res.Failed)

	mega, err := ts.store.LatestSnapshot(ctx, tokenMega)
	require.NoError(t, err)
	require.NotNil(t, mega)
	assert.Equal(t, 2, mega.LockCount)
	assert.Equal(t, "1400", mega.TotalLocked.String())
	assert.True(t, mega.TakenAt.Equal(time.Unix(1_700_000_000, 0)))

	dog, err := ts.store.LatestSnapshot(ctx, tokenDog)
	require.NoError(t, err)
	require.NotNil(t, dog)
	assert.Equal(t, []uint64{2}, dog.LockIDs)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.handler.Metrics.refreshRuns))
	assert.Equal(t, 2.0, testutil.ToFloat64(ts.handler.Metrics.refreshedLast))
}

func TestRefresher_EmptyWatchlist(t *testing.T) {
	ts := newTestServer(t)

	res := NewRefresher(ts.handler).RunNow(context.Background())

	assert.Zero(t, res.Tokens)
	snap, err := ts.store.LatestSnapshot(context.Background(), common.Address{})
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRefresher_StartStop(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.store.AddWatch(context.Background(), mustWatch(t, hexOf(tokenMega)))
	require.NoError(t, err)

	rf := NewRefresher(ts.handler)
	rf.Interval = time.Hour
	rf.Start()
	rf.Start() // second start is ignored

	// The first run happens immediately on start.
	require.Eventually(t, func() bool {
		snap, err := ts.store.LatestSnapshot(context.Background(), tokenMega)
		return err == nil && snap != nil
	}, 2*time.Second, 10*time.Millisecond)

	rf.Stop()
	rf.Stop()
}

func TestRefresher_Disabled(t *testing.T) {
	ts := newTestServer(t)
	rf := NewRefresher(ts.handler)
	rf.Enabled = false

	rf.Start()
	rf.Stop()

	assert.Nil(t, rf.ticker)
}
