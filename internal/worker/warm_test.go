package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areaforecast/areaforecast/internal/area"
	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/forecast/cache"
	"github.com/areaforecast/areaforecast/internal/forecast/forecasttest"
	"github.com/areaforecast/areaforecast/internal/geo"
	"github.com/areaforecast/areaforecast/internal/worker"
)

var (
	rectA = geo.Rectangle{LatTopRight: 42, LonTopRight: 13, LatBottomLeft: 41, LonBottomLeft: 12}
	rectB = geo.Rectangle{LatTopRight: 46, LonTopRight: 10, LatBottomLeft: 45, LonBottomLeft: 9}
)

// fakeAreas records requests and fails for rectangles in failing.
type fakeAreas struct {
	mu       sync.Mutex
	requests []area.Request
	failing  map[geo.Rectangle]bool
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (f *fakeAreas) GetAreaForecast(ctx context.Context, req area.Request) (*area.Forecast, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	fail := f.failing[req.Rectangle]
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fail {
		return nil, forecast.ErrUpstreamUnavailable
	}
	return &area.Forecast{}, nil
}

func (f *fakeAreas) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestDefaultWarmConfig(t *testing.T) {
	cfg := worker.DefaultWarmConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, area.DefaultDays, cfg.Days)
	assert.Equal(t, area.DefaultSamplingPoints, cfg.SamplingPoints)
	assert.NotEmpty(t, cfg.Targets)

	for _, target := range cfg.Targets {
		assert.True(t, geo.ValidateRectangle(target.Area), target.Name)
	}
}

func TestTargetsFromRectangles(t *testing.T) {
	targets := worker.TargetsFromRectangles([]geo.Rectangle{rectA, rectB})

	require.Len(t, targets, 2)
	assert.Equal(t, "area-1", targets[0].Name)
	assert.Equal(t, rectB, targets[1].Area)
}

func TestWarmJob_Run(t *testing.T) {
	service := &fakeAreas{}
	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config: worker.WarmConfig{
			Targets: worker.TargetsFromRectangles([]geo.Rectangle{rectA, rectB}),
			Days:    2,
		},
		Logger:  zerolog.Nop(),
		Service: service,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	assert.True(t, result.EndTime.After(result.StartTime) || result.EndTime.Equal(result.StartTime))

	require.Equal(t, 2, service.count())
	for _, req := range service.requests {
		assert.Equal(t, 2, req.Days)
		assert.Equal(t, area.DefaultSamplingPoints, req.SamplingPoints)
	}
}

func TestWarmJob_ErrorCollection(t *testing.T) {
	service := &fakeAreas{failing: map[geo.Rectangle]bool{rectB: true}}
	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config: worker.WarmConfig{
			Targets: []worker.WarmTarget{{Name: "a", Area: rectA}, {Name: "b", Area: rectB}},
		},
		Logger:  zerolog.Nop(),
		Service: service,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "b", result.Errors[0].Target)
	assert.Contains(t, result.Errors[0].Error, "upstream unavailable")
}

func TestWarmJob_RespectsConcurrency(t *testing.T) {
	service := &fakeAreas{delay: 20 * time.Millisecond}
	targets := make([]worker.WarmTarget, 6)
	for i := range targets {
		targets[i] = worker.WarmTarget{Name: "t", Area: rectA}
	}

	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config:  worker.WarmConfig{Targets: targets, Concurrency: 2},
		Logger:  zerolog.Nop(),
		Service: service,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 6, result.Successful)
	assert.LessOrEqual(t, service.maxSeen.Load(), int32(2))
}

func TestWarmJob_PerTargetTimeout(t *testing.T) {
	service := &fakeAreas{delay: time.Second}
	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config: worker.WarmConfig{
			Targets: []worker.WarmTarget{{Name: "slow", Area: rectA}},
			Timeout: 10 * time.Millisecond,
		},
		Logger:  zerolog.Nop(),
		Service: service,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error, context.DeadlineExceeded.Error())
}

func TestWarmJob_ContextCancellation(t *testing.T) {
	service := &fakeAreas{}
	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config: worker.WarmConfig{
			Targets: worker.TargetsFromRectangles([]geo.Rectangle{rectA, rectB}),
		},
		Logger:  zerolog.Nop(),
		Service: service,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := job.Run(ctx)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 0, service.count())
}

func TestWarmJob_Metrics(t *testing.T) {
	service := &fakeAreas{failing: map[geo.Rectangle]bool{rectB: true}}
	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config: worker.WarmConfig{
			Targets: worker.TargetsFromRectangles([]geo.Rectangle{rectA, rectB}),
		},
		Logger:  zerolog.Nop(),
		Service: service,
	})

	job.Run(context.Background())
	job.Run(context.Background())

	m := job.GetMetrics()
	assert.Equal(t, int64(2), m.TotalRuns)
	assert.Equal(t, int64(2), m.SuccessfulWarms)
	assert.Equal(t, int64(2), m.FailedWarms)
	assert.False(t, m.LastRunAt.IsZero())

	snapshot := job.MetricsSnapshot()
	assert.Equal(t, int64(2), snapshot["total_runs"])
	assert.Contains(t, snapshot, "last_run_duration")
}

func TestNewWarmJob_DefaultTargets(t *testing.T) {
	service := &fakeAreas{}
	job := worker.NewWarmJob(worker.WarmJobConfig{
		Logger:  zerolog.Nop(),
		Service: service,
	})

	result := job.Run(context.Background())

	assert.Equal(t, len(worker.DefaultWarmTargets()), result.Total)
	assert.Equal(t, result.Total, service.count())
}

func TestWarmJob_PopulatesForecastCache(t *testing.T) {
	upstream := &forecasttest.Provider{}
	cached := cache.NewProvider(cache.ProviderConfig{Provider: upstream, Logger: zerolog.Nop()})
	service := area.NewService(area.ServiceConfig{Provider: cached, Logger: zerolog.Nop()})

	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config: worker.WarmConfig{
			Targets:        []worker.WarmTarget{{Name: "a", Area: rectA}},
			SamplingPoints: 5,
		},
		Logger:  zerolog.Nop(),
		Service: service,
	})

	result := job.Run(context.Background())
	require.Equal(t, 1, result.Successful)
	require.Len(t, upstream.ForecastCalls(), 5)

	// A client request for the same area is now answered from cache.
	_, err := service.GetAreaForecast(context.Background(), area.Request{
		Rectangle:      rectA,
		Days:           area.DefaultDays,
		SamplingPoints: 5,
	})
	require.NoError(t, err)
	assert.Len(t, upstream.ForecastCalls(), 5)
}

func TestDispatcher_Handle(t *testing.T) {
	service := &fakeAreas{}
	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config:  worker.WarmConfig{Targets: []worker.WarmTarget{{Name: "a", Area: rectA}}},
		Logger:  zerolog.Nop(),
		Service: service,
	})
	d := worker.NewDispatcher(job, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, d.Handle(ctx, []byte(`{"job_type":"forecast_warm"}`)))
	assert.Equal(t, 1, service.count())

	require.NoError(t, d.Handle(ctx, []byte(`{"job_type":"forecast_warm","areas":[{"latTopRight":46,"lonTopRight":10,"latBottomLeft":45,"lonBottomLeft":9}]}`)))
	require.Equal(t, 2, service.count())
	assert.Equal(t, rectB, service.requests[1].Rectangle)

	require.NoError(t, d.Handle(ctx, []byte(`{"job_type":"health_check"}`)))
	assert.Equal(t, 1, service.requests[2].Days)
	assert.Equal(t, 1, service.requests[2].SamplingPoints)

	err := d.Handle(ctx, []byte(`{"job_type":"reindex"}`))
	assert.True(t, errors.Is(err, worker.ErrUnknownJobType))

	assert.Error(t, d.Handle(ctx, []byte(`not json`)))
	assert.Error(t, d.Handle(ctx, []byte(`{"job_type":"forecast_warm","areas":[{"latTopRight":1,"lonTopRight":1,"latBottomLeft":2,"lonBottomLeft":2}]}`)))
}

func TestDispatcher_WarmFailsWhenMostTargetsFail(t *testing.T) {
	service := &fakeAreas{failing: map[geo.Rectangle]bool{rectA: true, rectB: true}}
	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config: worker.WarmConfig{
			Targets: worker.TargetsFromRectangles([]geo.Rectangle{rectA, rectB}),
		},
		Logger:  zerolog.Nop(),
		Service: service,
	})
	d := worker.NewDispatcher(job, zerolog.Nop())

	err := d.Handle(context.Background(), []byte(`{"job_type":"forecast_warm"}`))
	assert.ErrorContains(t, err, "too many warm failures")
}
