package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megascan/lock-engine/locks"
	"github.com/megascan/lock-engine/prefs"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// clock returns a now func that advances one second per call.
func clock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

// =============================================================================
// MIGRATION TESTS
// =============================================================================

func TestMigrate_UpDownUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "megascan.db")

	res, err := Migrate(path, -1)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, uint(1), res.To)

	res, err = Migrate(path, -1)
	require.NoError(t, err)
	assert.False(t, res.Changed, "already at latest")

	res, err = Migrate(path, 0)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, uint(0), res.To)

	// New() brings it back up
	s, err := New(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.ListWatchlist(context.Background())
	assert.NoError(t, err)
}

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestProfiles_UpsertAndCaseInsensitiveLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetProfile(ctx, "0xabc")
	assert.True(t, prefs.IsNotFound(err))

	require.NoError(t, s.SaveProfile(ctx, prefs.Profile{Address: "0xABC", Username: "first"}))
	require.NoError(t, s.SaveProfile(ctx, prefs.Profile{Address: "0xabc", Username: "second", XHandle: "megachad"}))

	p, err := s.GetProfile(ctx, "0xAbC")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", p.Address)
	assert.Equal(t, "second", p.Username)
	assert.Equal(t, "megachad", p.XHandle)
	assert.False(t, p.UpdatedAt.IsZero())
}

// =============================================================================
// WATCHLIST TESTS
// =============================================================================

func TestWatchlist_OrderAndDedupe(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.now = clock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	// GIVEN: two tokens, the first re-added in upper case
	added, err := s.AddWatch(ctx, prefs.WatchItem{Address: "0xaa", Name: "A", Symbol: "A"})
	require.NoError(t, err)
	assert.True(t, added)
	_, err = s.AddWatch(ctx, prefs.WatchItem{Address: "0xbb", Name: "B", Symbol: "B"})
	require.NoError(t, err)
	added, err = s.AddWatch(ctx, prefs.WatchItem{Address: "0xAA", Name: "dup", Symbol: "dup"})
	require.NoError(t, err)

	// THEN: the duplicate is ignored and insertion order is kept
	assert.False(t, added)
	list, err := s.ListWatchlist(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Symbol)
	assert.Equal(t, "B", list[1].Symbol)

	watched, err := s.IsWatched(ctx, "0xAa")
	require.NoError(t, err)
	assert.True(t, watched)
}

func TestWatchlist_Remove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, _ = s.AddWatch(ctx, prefs.WatchItem{Address: "0xaa"})

	require.NoError(t, s.RemoveWatch(ctx, "0xAA"))
	assert.True(t, prefs.IsNotFound(s.RemoveWatch(ctx, "0xaa")))

	watched, err := s.IsWatched(ctx, "0xaa")
	require.NoError(t, err)
	assert.False(t, watched)
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestSnapshots_LatestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	token := common.HexToAddress("0x0bEe5fF06bB5CF531f7bc3bbBBD76089838095F7")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	latest, err := s.LatestSnapshot(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, latest)

	big, _ := decimal.NewFromString("123456789012345678901234567890")
	require.NoError(t, s.SaveSnapshot(ctx, locks.Snapshot{Token: token, LockCount: 1, TotalLocked: decimal.NewFromInt(5), LockIDs: []uint64{3}, Scanned: 10, TakenAt: base}))
	require.NoError(t, s.SaveSnapshot(ctx, locks.Snapshot{Token: token, LockCount: 2, TotalLocked: big, LockIDs: []uint64{3, 8}, Scanned: 12, Skipped: 1, TakenAt: base.Add(500 * time.Millisecond)}))
	require.NoError(t, s.SaveSnapshot(ctx, locks.Snapshot{Token: common.HexToAddress("0x01"), LockCount: 9, TakenAt: base.Add(time.Hour)}))

	latest, err = s.LatestSnapshot(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.LockCount)
	assert.True(t, latest.TotalLocked.Equal(big), "precision survives storage")
	assert.Equal(t, []uint64{3, 8}, latest.LockIDs)
	assert.Equal(t, uint64(12), latest.Scanned)
	assert.Equal(t, 1, latest.Skipped)
	assert.True(t, latest.TakenAt.Equal(base.Add(500*time.Millisecond)))
	assert.Equal(t, token, latest.Token)

	all, err := s.ListSnapshots(ctx, token, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, _ = s.AddWatch(ctx, prefs.WatchItem{Address: "0xaa"})

	require.NoError(t, s.Reset(ctx))

	list, err := s.ListWatchlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
