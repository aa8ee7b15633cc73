package archive

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/geo"
)

type archivedLocation struct {
	location string
	country  string
	days     map[time.Time]forecast.HistoricalDay
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	locations map[string]*archivedLocation
}

// NewInMemoryRepository creates a new in-memory archive.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		locations: make(map[string]*archivedLocation),
	}
}

// GetRange retrieves archived days.
func (r *InMemoryRepository) GetRange(_ context.Context, location string, start, end time.Time) (*forecast.HistoricalRange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := &forecast.HistoricalRange{Location: location, Days: []forecast.HistoricalDay{}}

	loc, ok := r.locations[LocationKey(location)]
	if !ok {
		return result, nil
	}

	result.Location = loc.location
	result.Country = loc.country
	for date, d := range loc.days {
		if date.Before(geo.Day(start)) || date.After(geo.Day(end)) {
			continue
		}
		result.Days = append(result.Days, d)
	}
	sort.Slice(result.Days, func(i, j int) bool {
		return result.Days[i].Date.Before(result.Days[j].Date)
	})

	return result, nil
}

// Save upserts days.
func (r *InMemoryRepository) Save(_ context.Context, location string, hr *forecast.HistoricalRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := LocationKey(location)
	loc, ok := r.locations[key]
	if !ok {
		loc = &archivedLocation{days: make(map[time.Time]forecast.HistoricalDay)}
		r.locations[key] = loc
	}
	loc.location = hr.Location
	loc.country = hr.Country

	for _, d := range hr.Days {
		loc.days[geo.Day(d.Date)] = d
	}
	return nil
}
