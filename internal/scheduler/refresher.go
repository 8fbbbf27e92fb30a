package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aryodp/edgegate/internal/cache"
	"github.com/aryodp/edgegate/internal/domain"
	"github.com/aryodp/edgegate/internal/logger"
	"github.com/aryodp/edgegate/internal/snapshot"
)

// Fetcher is the upstream dataset source.
type Fetcher interface {
	Fetch(ctx context.Context) (*domain.Dataset, error)
}

// Refresher re-fetches the dataset once per hour (at a fixed wall-clock
// minute) and swaps it into the cache. All refreshes run on one
// goroutine, so two refreshes can never overlap and the cache has
// exactly one writer.
type Refresher struct {
	fetcher       Fetcher
	cache         *cache.DatasetCache
	store         snapshot.Store
	logger        logger.Logger
	minute        int
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewRefresher creates a refresher firing at the given minute of every
// hour. manualTrigger allows an immediate out-of-schedule refresh
// (buffered size 1: triggers while a refresh runs are coalesced).
func NewRefresher(
	fetcher Fetcher,
	c *cache.DatasetCache,
	store snapshot.Store,
	log logger.Logger,
	minute int,
	manualTrigger chan struct{},
) *Refresher {
	return &Refresher{
		fetcher:       fetcher,
		cache:         c,
		store:         store,
		logger:        log,
		minute:        minute,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start refreshes immediately when the cache is still empty (cold
// start without a snapshot), then begins the hourly schedule. A failed
// initial refresh is logged, not returned: the schedule is the retry
// mechanism and an empty cache only degrades the query endpoint.
func (r *Refresher) Start(ctx context.Context) error {
	if r.cache.Current() == nil {
		if err := r.RefreshOnce(ctx); err != nil {
			r.logger.Error("initial dataset refresh failed, serving empty until next tick",
				logger.Error(err))
		}
	}

	go func() {
		for {
			timer := time.NewTimer(time.Until(NextTick(time.Now(), r.minute)))
			select {
			case <-timer.C:
				if err := r.RefreshOnce(ctx); err != nil {
					r.logger.Error("scheduled dataset refresh failed",
						logger.Error(err))
				}
			case <-r.manualTrigger:
				timer.Stop()
				r.logger.Info("manual refresh triggered")
				if err := r.RefreshOnce(ctx); err != nil {
					r.logger.Error("manual dataset refresh failed",
						logger.Error(err))
				}
			case <-r.stopCh:
				timer.Stop()
				return
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresh loop.
func (r *Refresher) Stop() {
	close(r.stopCh)
}

// RefreshOnce fetches the full dataset and, on success, swaps the
// cache and persists the snapshot. On failure the cache keeps its
// previous dataset untouched. Snapshot persistence is best-effort:
// the in-memory cache is authoritative for serving, the stored copy
// only buys restart continuity.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	r.logger.Info("refreshing dataset from upstream")

	ds, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("dataset fetch failed: %w", err)
	}

	r.cache.Replace(ds)
	r.logger.Info("dataset refreshed",
		logger.Int("rows", len(ds.Rows)),
		logger.Time("fetched_at", ds.FetchedAt))

	if r.store != nil {
		if err := r.store.Save(ctx, ds); err != nil {
			r.logger.Warn("failed to persist dataset snapshot",
				logger.Error(err))
		}
	}

	return nil
}

// NextTick returns the next wall-clock instant whose minute equals
// minute, strictly after now.
func NextTick(now time.Time, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(time.Hour)
	}
	return next
}
