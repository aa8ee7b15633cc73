package forecast

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// MinSearchQueryLength is the shortest query sent to a LocationSearcher.
const MinSearchQueryLength = 3

// ServiceConfig holds configuration for the single-point forecast service.
type ServiceConfig struct {
	// Provider answers forecast requests.
	Provider Provider

	// Current answers current-conditions requests.
	Current CurrentProvider

	// Searcher resolves location queries.
	Searcher LocationSearcher

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service exposes single-location weather operations.
type Service struct {
	provider Provider
	current  CurrentProvider
	searcher LocationSearcher
	logger   zerolog.Logger
}

// NewService creates a new forecast service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		current:  cfg.Current,
		searcher: cfg.Searcher,
		logger:   cfg.Logger.With().Str("component", "forecast").Logger(),
	}
}

// GetCurrent returns observed conditions at location.
func (s *Service) GetCurrent(ctx context.Context, location string) (*CurrentConditions, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, NewValidationError("location", "is required")
	}
	return s.current.FetchCurrent(ctx, location)
}

// GetForecast returns the forecast for q.Location. Days outside [1,10]
// fall back to 3.
func (s *Service) GetForecast(ctx context.Context, q Query) (*PointForecast, error) {
	q.Location = strings.TrimSpace(q.Location)
	if q.Location == "" {
		return nil, NewValidationError("location", "is required")
	}
	q.Days = NormalizeDays(q.Days)
	return s.provider.FetchForecast(ctx, q)
}

// SearchLocations returns matching location labels. Short queries and
// upstream failures yield an empty list.
func (s *Service) SearchLocations(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if len(query) < MinSearchQueryLength || s.searcher == nil {
		return []string{}
	}

	results, err := s.searcher.SearchLocations(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("location search failed")
		return []string{}
	}
	if results == nil {
		return []string{}
	}
	return results
}
