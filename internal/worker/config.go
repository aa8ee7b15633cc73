// Package worker keeps area forecasts for frequently requested regions warm
// in the forecast cache.
package worker

import (
	"fmt"
	"time"

	"github.com/areaforecast/areaforecast/internal/area"
	"github.com/areaforecast/areaforecast/internal/geo"
)

// WarmTarget is a named rectangle to pre-fetch.
type WarmTarget struct {
	// Name is the human-readable name of the target.
	Name string

	// Area is the rectangle requested from the area service.
	Area geo.Rectangle
}

// WarmConfig holds configuration for the warm-up job.
type WarmConfig struct {
	// Targets are the areas to warm.
	// If empty, uses DefaultWarmTargets.
	Targets []WarmTarget

	// Days is the forecast horizon requested per area.
	// Default: 3
	Days int

	// SamplingPoints is the sample budget per area.
	// Default: 5
	SamplingPoints int

	// Concurrency is the number of areas warmed in parallel.
	// Default: 3
	Concurrency int

	// Timeout bounds each area request.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultWarmConfig returns the default warm-up configuration.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		Targets:        DefaultWarmTargets(),
		Days:           area.DefaultDays,
		SamplingPoints: area.DefaultSamplingPoints,
		Concurrency:    3,
		Timeout:        30 * time.Second,
	}
}

// DefaultWarmTargets returns a few central Italian areas.
func DefaultWarmTargets() []WarmTarget {
	return []WarmTarget{
		{
			Name: "Roma",
			Area: geo.Rectangle{LatTopRight: 41.99, LonTopRight: 12.60, LatBottomLeft: 41.80, LonBottomLeft: 12.37},
		},
		{
			Name: "Veio",
			Area: geo.Rectangle{LatTopRight: 42.10, LonTopRight: 12.47, LatBottomLeft: 42.00, LonBottomLeft: 12.35},
		},
		{
			Name: "Castelli Romani",
			Area: geo.Rectangle{LatTopRight: 41.80, LonTopRight: 12.75, LatBottomLeft: 41.68, LonBottomLeft: 12.60},
		},
		{
			Name: "Viterbo",
			Area: geo.Rectangle{LatTopRight: 42.45, LonTopRight: 12.15, LatBottomLeft: 42.38, LonBottomLeft: 12.05},
		},
	}
}

// TargetsFromRectangles names each rectangle by its position.
func TargetsFromRectangles(rects []geo.Rectangle) []WarmTarget {
	targets := make([]WarmTarget, 0, len(rects))
	for i, r := range rects {
		targets = append(targets, WarmTarget{Name: fmt.Sprintf("area-%d", i+1), Area: r})
	}
	return targets
}

// withDefaults fills unset fields.
func (c WarmConfig) withDefaults() WarmConfig {
	def := DefaultWarmConfig()
	if len(c.Targets) == 0 {
		c.Targets = def.Targets
	}
	if c.Days <= 0 {
		c.Days = def.Days
	}
	if c.SamplingPoints <= 0 {
		c.SamplingPoints = def.SamplingPoints
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}
