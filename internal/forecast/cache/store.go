// Package cache provides a caching forecast.Provider decorator with
// stale-if-error semantics and pluggable stores.
package cache

import (
	"context"
	"time"

	"github.com/areaforecast/areaforecast/internal/forecast"
)

// Entry is a cached forecast.
type Entry struct {
	Forecast  *forecast.PointForecast `json:"forecast"`
	FetchedAt time.Time               `json:"fetchedAt"`
}

// Store persists cache entries. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the entry for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (entry *Entry, ok bool, err error)

	// Set stores entry for key, retained for at least retention.
	Set(ctx context.Context, key string, entry *Entry, retention time.Duration) error

	// Name identifies the backend in logs and status reports.
	Name() string
}
