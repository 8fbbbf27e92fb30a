package domain

import "errors"

var (
	// ErrNoData means neither a snapshot nor any refresh has ever
	// populated the cache. Surfaced to callers as a server error.
	ErrNoData = errors.New("no cached data available")

	// ErrNoSnapshot means the durable snapshot store holds nothing.
	// Treated identically to a corrupt snapshot at startup: log and
	// carry on empty.
	ErrNoSnapshot = errors.New("no snapshot present")
)
