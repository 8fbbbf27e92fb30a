package snapshot

import (
	"context"
	"time"

	"github.com/aryodp/edgegate/internal/domain"
)

// Store persists exactly one dataset so the service can answer
// immediately after a restart. Writes happen after each successful
// refresh, the single read happens before the listener starts.
//
// A Store is best-effort: the in-memory cache stays authoritative and
// save failures are logged by the caller, never propagated.
type Store interface {
	// Load returns the persisted dataset, or domain.ErrNoSnapshot
	// when nothing usable is stored.
	Load(ctx context.Context) (*domain.Dataset, error)

	// Save replaces the persisted dataset.
	Save(ctx context.Context, ds *domain.Dataset) error
}

// envelope is the serialized snapshot shape: one dataset plus its
// fetch time. UpdatedAt round-trips into Dataset.FetchedAt so a
// restarted process reports the true dataset age, not the restart
// time.
type envelope struct {
	UpdatedAt time.Time    `json:"updated_at"`
	Data      []domain.Row `json:"data"`
}

func wrap(ds *domain.Dataset) envelope {
	return envelope{UpdatedAt: ds.FetchedAt, Data: ds.Rows}
}

func (e envelope) dataset() *domain.Dataset {
	return &domain.Dataset{FetchedAt: e.UpdatedAt, Rows: e.Data}
}
