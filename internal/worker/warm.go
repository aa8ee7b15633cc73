package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/area"
)

// AreaForecaster is the area service being warmed.
type AreaForecaster interface {
	GetAreaForecast(ctx context.Context, req area.Request) (*area.Forecast, error)
}

// WarmJob pre-fetches area forecasts so the cache in front of the upstream
// provider holds them when clients ask.
type WarmJob struct {
	config  WarmConfig
	logger  zerolog.Logger
	service AreaForecaster

	metrics *WarmMetrics
}

// WarmMetrics tracks warm-up job statistics.
type WarmMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns       int64
	SuccessfulWarms int64
	FailedWarms     int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// WarmJobConfig holds configuration for creating a WarmJob.
type WarmJobConfig struct {
	Config  WarmConfig
	Logger  zerolog.Logger
	Service AreaForecaster
}

// NewWarmJob creates a new warm-up job.
func NewWarmJob(cfg WarmJobConfig) *WarmJob {
	return &WarmJob{
		config:  cfg.Config.withDefaults(),
		logger:  cfg.Logger.With().Str("job", "forecast_warm").Logger(),
		service: cfg.Service,
		metrics: &WarmMetrics{},
	}
}

// WarmResult contains the result of a warm-up run.
type WarmResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Total      int
	Successful int
	Failed     int
	Errors     []WarmError
}

// WarmError records a failed target.
type WarmError struct {
	Target string
	Error  string
}

// Run warms every configured target.
func (j *WarmJob) Run(ctx context.Context) *WarmResult {
	return j.RunTargets(ctx, j.config.Targets)
}

// RunTargets warms the given targets with the job's settings.
func (j *WarmJob) RunTargets(ctx context.Context, targets []WarmTarget) *WarmResult {
	startTime := time.Now()
	result := &WarmResult{
		StartTime: startTime,
		Total:     len(targets),
	}

	j.logger.Info().
		Int("total", result.Total).
		Int("concurrency", j.config.Concurrency).
		Msg("starting forecast warm job")

	// Create work channels
	targetsChan := make(chan WarmTarget, len(targets))
	resultsChan := make(chan targetResult, len(targets))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.warmWorker(ctx, targetsChan, resultsChan)
		}()
	}

	for _, t := range targets {
		targetsChan <- t
	}
	close(targetsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for tr := range resultsChan {
		if tr.err == nil {
			result.Successful++
			continue
		}
		result.Failed++
		result.Errors = append(result.Errors, WarmError{Target: tr.target.Name, Error: tr.err.Error()})
	}

	// Targets skipped after cancellation count as failures.
	if skipped := result.Total - result.Successful - result.Failed; skipped > 0 {
		result.Failed += skipped
		result.Errors = append(result.Errors, WarmError{Target: "*", Error: context.Cause(ctx).Error()})
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Int("total", result.Total).
		Int("succeeded", result.Successful).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("forecast warm job completed")

	return result
}

type targetResult struct {
	target WarmTarget
	err    error
}

func (j *WarmJob) warmWorker(ctx context.Context, targets <-chan WarmTarget, results chan<- targetResult) {
	for target := range targets {
		select {
		case <-ctx.Done():
			return
		default:
			results <- targetResult{target: target, err: j.warmTarget(ctx, target)}
		}
	}
}

func (j *WarmJob) warmTarget(ctx context.Context, target WarmTarget) error {
	targetCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	_, err := j.service.GetAreaForecast(targetCtx, area.Request{
		Rectangle:      target.Area,
		Days:           j.config.Days,
		SamplingPoints: j.config.SamplingPoints,
	})
	if err != nil {
		j.logger.Warn().Err(err).Str("target", target.Name).Msg("warming area failed")
	}
	return err
}

func (j *WarmJob) updateMetrics(result *WarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SuccessfulWarms += int64(result.Successful)
	j.metrics.FailedWarms += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *WarmJob) GetMetrics() WarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return WarmMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		SuccessfulWarms: j.metrics.SuccessfulWarms,
		FailedWarms:     j.metrics.FailedWarms,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *WarmJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"successful_warms":  m.SuccessfulWarms,
		"failed_warms":      m.FailedWarms,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
