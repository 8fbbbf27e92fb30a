package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aryodp/edgegate/internal/cache"
	"github.com/aryodp/edgegate/internal/domain"
	"github.com/aryodp/edgegate/internal/logger"
	"github.com/aryodp/edgegate/internal/snapshot"
)

type fakeFetcher struct {
	ds    *domain.Dataset
	err   error
	calls atomic.Int32
}

func (f *fakeFetcher) Fetch(_ context.Context) (*domain.Dataset, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.ds, nil
}

type failingStore struct{}

func (failingStore) Load(context.Context) (*domain.Dataset, error) {
	return nil, domain.ErrNoSnapshot
}

func (failingStore) Save(context.Context, *domain.Dataset) error {
	return errors.New("disk full")
}

func TestRefreshOnceReplacesCacheAndPersists(t *testing.T) {
	log := logger.New("error", false)
	c := cache.New()

	dir := t.TempDir()
	store := snapshot.NewFileStore(dir + "/data-cache.json")

	ds := &domain.Dataset{
		FetchedAt: time.Now().UTC(),
		Rows:      []domain.Row{{ServerName: "A", DomainName: "a.com"}},
	}
	r := NewRefresher(&fakeFetcher{ds: ds}, c, store, log, 59, nil)

	if err := r.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce() error = %v", err)
	}

	if c.Current() != ds {
		t.Error("RefreshOnce() should swap the fetched dataset into the cache")
	}

	persisted, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("snapshot Load() after refresh error = %v", err)
	}
	if len(persisted.Rows) != 1 {
		t.Errorf("persisted snapshot has %v rows, want 1", len(persisted.Rows))
	}
}

func TestRefreshOnceFailureLeavesCacheUntouched(t *testing.T) {
	log := logger.New("error", false)
	c := cache.New()

	previous := &domain.Dataset{
		FetchedAt: time.Now().UTC(),
		Rows:      make([]domain.Row, 5),
	}
	c.Replace(previous)

	r := NewRefresher(&fakeFetcher{err: errors.New("upstream down")}, c, nil, log, 59, nil)

	if err := r.RefreshOnce(context.Background()); err == nil {
		t.Fatal("RefreshOnce() should return the fetch error")
	}

	if c.Current() != previous {
		t.Error("failed refresh must leave the previous dataset in place")
	}
	if len(c.Current().Rows) != 5 {
		t.Errorf("rows after failed refresh = %v, want 5", len(c.Current().Rows))
	}
}

func TestRefreshOncePersistFailureIsNotFatal(t *testing.T) {
	log := logger.New("error", false)
	c := cache.New()

	ds := &domain.Dataset{FetchedAt: time.Now().UTC(), Rows: []domain.Row{{DomainName: "a.com"}}}
	r := NewRefresher(&fakeFetcher{ds: ds}, c, failingStore{}, log, 59, nil)

	if err := r.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce() error = %v, snapshot failure must not propagate", err)
	}
	if c.Current() != ds {
		t.Error("cache must hold the new dataset even when persistence fails")
	}
}

func TestStartRefreshesColdCacheImmediately(t *testing.T) {
	log := logger.New("error", false)
	c := cache.New()

	f := &fakeFetcher{ds: &domain.Dataset{FetchedAt: time.Now(), Rows: []domain.Row{{DomainName: "a.com"}}}}
	r := NewRefresher(f, c, nil, log, 59, nil)
	defer r.Stop()

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if got := f.calls.Load(); got != 1 {
		t.Errorf("Start() with empty cache fetch calls = %v, want 1", got)
	}
	if c.Current() == nil {
		t.Error("Start() should populate the cold cache")
	}
}

func TestStartSkipsImmediateRefreshWhenHydrated(t *testing.T) {
	log := logger.New("error", false)
	c := cache.New()
	c.Replace(&domain.Dataset{FetchedAt: time.Now(), Rows: []domain.Row{{DomainName: "old.com"}}})

	f := &fakeFetcher{ds: &domain.Dataset{FetchedAt: time.Now(), Rows: []domain.Row{{DomainName: "new.com"}}}}
	r := NewRefresher(f, c, nil, log, 59, nil)
	defer r.Stop()

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if got := f.calls.Load(); got != 0 {
		t.Errorf("Start() with hydrated cache fetch calls = %v, want 0", got)
	}
}

func TestManualTrigger(t *testing.T) {
	log := logger.New("error", false)
	c := cache.New()
	c.Replace(&domain.Dataset{FetchedAt: time.Now(), Rows: []domain.Row{{DomainName: "old.com"}}})

	trigger := make(chan struct{}, 1)
	f := &fakeFetcher{ds: &domain.Dataset{FetchedAt: time.Now(), Rows: []domain.Row{{DomainName: "new.com"}}}}
	r := NewRefresher(f, c, nil, log, 59, trigger)
	defer r.Stop()

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	trigger <- struct{}{}

	deadline := time.After(2 * time.Second)
	for c.Current().Rows[0].DomainName != "new.com" {
		select {
		case <-deadline:
			t.Fatal("manual trigger did not cause a refresh")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := f.calls.Load(); got != 1 {
		t.Errorf("fetch calls after manual trigger = %v, want 1", got)
	}
}

func TestNextTick(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		minute int
		want   time.Time
	}{
		{
			name:   "before the minute, same hour",
			now:    time.Date(2026, 8, 30, 14, 10, 0, 0, time.UTC),
			minute: 59,
			want:   time.Date(2026, 8, 30, 14, 59, 0, 0, time.UTC),
		},
		{
			name:   "exactly on the minute rolls to next hour",
			now:    time.Date(2026, 8, 30, 14, 59, 0, 0, time.UTC),
			minute: 59,
			want:   time.Date(2026, 8, 30, 15, 59, 0, 0, time.UTC),
		},
		{
			name:   "past the minute rolls to next hour",
			now:    time.Date(2026, 8, 30, 14, 59, 30, 0, time.UTC),
			minute: 59,
			want:   time.Date(2026, 8, 30, 15, 59, 0, 0, time.UTC),
		},
		{
			name:   "crosses midnight",
			now:    time.Date(2026, 8, 30, 23, 59, 1, 0, time.UTC),
			minute: 59,
			want:   time.Date(2026, 8, 31, 0, 59, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextTick(tt.now, tt.minute); !got.Equal(tt.want) {
				t.Errorf("NextTick(%v, %v) = %v, want %v", tt.now, tt.minute, got, tt.want)
			}
		})
	}
}
