// Package archive stores resolved historical weather days so repeated
// history queries do not hit the upstream provider.
package archive

import (
	"context"
	"strings"
	"time"

	"github.com/areaforecast/areaforecast/internal/forecast"
)

// Repository persists historical days per location.
type Repository interface {
	// GetRange returns the archived days for location within [start, end],
	// ordered by date. Missing days are simply absent.
	GetRange(ctx context.Context, location string, start, end time.Time) (*forecast.HistoricalRange, error)

	// Save upserts the days of hr under location.
	Save(ctx context.Context, location string, hr *forecast.HistoricalRange) error
}

// LocationKey normalizes a location query for storage.
func LocationKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}
