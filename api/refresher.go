/*
refresher.go - Background lock snapshot refresher

PURPOSE:
  Periodically scans every watchlisted token for active locks and stores a
  snapshot, so /api/tokens/{address}/snapshot answers without a live scan.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Runs once immediately on Start
  - A token whose scan fails is logged and skipped; the others proceed
  - Stop cancels an in-flight run and waits for it to return

CONFIGURATION:
  - Interval: How often to refresh (default: 10 minutes)
  - Enabled:  Whether the refresher is active (default: true)

USAGE:
  refresher := NewRefresher(handler)
  refresher.Start()
  // ... later
  refresher.Stop()

SEE ALSO:
  - handlers.go: GetTokenSnapshot, GetTokenLocks
  - locks/scan.go: ScanToken
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/megascan/lock-engine/locks"
	"github.com/megascan/lock-engine/prefs"
)

// DefaultRefreshInterval is used when Interval is not set.
const DefaultRefreshInterval = 10 * time.Minute

// RefreshResult summarizes one refresh run.
type RefreshResult struct {
	Tokens  int
	Saved   int
	Failed  int
	Elapsed time.Duration
}

// Refresher keeps lock snapshots of watchlisted tokens fresh.
type Refresher struct {
	Chain     locks.Reader
	Prefs     prefs.Store
	Snapshots locks.SnapshotStore
	Metrics   *Metrics
	ScanLimit uint64
	Interval  time.Duration
	Enabled   bool

	ticker *time.Ticker
	stop   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	now    func() time.Time
}

// NewRefresher creates a refresher sharing the handler's dependencies.
func NewRefresher(h *Handler) *Refresher {
	return &Refresher{
		Chain:     h.Chain,
		Prefs:     h.Prefs,
		Snapshots: h.Snapshots,
		Metrics:   h.Metrics,
		ScanLimit: h.ScanLimit,
		Interval:  DefaultRefreshInterval,
		Enabled:   true,
		now:       time.Now,
	}
}

// Start begins the refresher.
func (rf *Refresher) Start() {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if !rf.Enabled {
		log.Println("[Refresher] Disabled, not starting")
		return
	}
	if rf.ticker != nil {
		return
	}
	if rf.Interval <= 0 {
		rf.Interval = DefaultRefreshInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	rf.cancel = cancel
	rf.stop = make(chan struct{})
	rf.ticker = time.NewTicker(rf.Interval)
	rf.wg.Add(1)

	go rf.run(ctx)

	log.Printf("[Refresher] Started with interval: %v", rf.Interval)
}

// Stop stops the refresher. It is safe to call more than once.
func (rf *Refresher) Stop() {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.ticker == nil {
		return
	}
	rf.ticker.Stop()
	rf.cancel()
	close(rf.stop)
	rf.wg.Wait()
	rf.ticker = nil
	log.Println("[Refresher] Stopped")
}

func (rf *Refresher) run(ctx context.Context) {
	defer rf.wg.Done()

	// Run immediately on start
	rf.refresh(ctx)

	for {
		select {
		case <-rf.ticker.C:
			rf.refresh(ctx)
		case <-rf.stop:
			return
		}
	}
}

// RunNow triggers an immediate refresh (for the CLI and tests).
func (rf *Refresher) RunNow(ctx context.Context) RefreshResult {
	return rf.refresh(ctx)
}

// NextRunTime returns when the next scheduled refresh will occur.
func (rf *Refresher) NextRunTime() time.Time {
	return rf.clock().Add(rf.Interval)
}

func (rf *Refresher) refresh(ctx context.Context) RefreshResult {
	started := rf.clock()
	var res RefreshResult

	items, err := rf.Prefs.ListWatchlist(ctx)
	if err != nil {
		log.Printf("[Refresher] Error listing watchlist: %v", err)
		return res
	}
	res.Tokens = len(items)

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		token := common.HexToAddress(item.Address)

		scan, err := locks.ScanToken(ctx, rf.Chain, token, rf.ScanLimit)
		if err != nil {
			log.Printf("[Refresher] Error scanning %s: %v", item.Address, err)
			res.Failed++
			continue
		}
		if err := rf.Snapshots.SaveSnapshot(ctx, locks.NewSnapshot(scan, rf.clock())); err != nil {
			log.Printf("[Refresher] Error saving snapshot of %s: %v", item.Address, err)
			res.Failed++
			continue
		}
		res.Saved++
	}

	res.Elapsed = rf.clock().Sub(started)
	rf.Metrics.RefreshDone(res.Saved)
	if res.Tokens > 0 {
		log.Printf("[Refresher] Completed: %d saved, %d failed in %v", res.Saved, res.Failed, res.Elapsed)
	}
	return res
}

func (rf *Refresher) clock() time.Time {
	if rf.now == nil {
		return time.Now()
	}
	return rf.now()
}
