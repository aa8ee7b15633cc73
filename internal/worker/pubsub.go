package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/geo"
)

// Job types carried in WarmMessage.JobType.
const (
	JobForecastWarm = "forecast_warm"
	JobHealthCheck  = "health_check"
)

// ErrUnknownJobType marks messages the worker does not handle.
// They are acknowledged so they are not redelivered.
var ErrUnknownJobType = errors.New("unknown job type")

// WarmMessage is the Pub/Sub payload that triggers a warm-up.
type WarmMessage struct {
	JobType string `json:"job_type"`

	// Areas overrides the configured targets when non-empty.
	Areas []geo.Rectangle `json:"areas,omitempty"`
}

// Dispatcher runs jobs described by raw message payloads.
type Dispatcher struct {
	job    *WarmJob
	logger zerolog.Logger
}

// NewDispatcher creates a Dispatcher for job.
func NewDispatcher(job *WarmJob, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{job: job, logger: logger}
}

// Handle decodes data and runs the job it names.
func (d *Dispatcher) Handle(ctx context.Context, data []byte) error {
	var msg WarmMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("parsing message: %w", err)
	}

	switch msg.JobType {
	case JobForecastWarm:
		return d.handleWarm(ctx, msg)
	case JobHealthCheck:
		return d.handleHealthCheck(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJobType, msg.JobType)
	}
}

func (d *Dispatcher) handleWarm(ctx context.Context, msg WarmMessage) error {
	targets := d.job.config.Targets
	if len(msg.Areas) > 0 {
		for i, r := range msg.Areas {
			if !geo.ValidateRectangle(r) {
				return fmt.Errorf("area %d: invalid rectangle", i+1)
			}
		}
		targets = TargetsFromRectangles(msg.Areas)
	}

	result := d.job.RunTargets(ctx, targets)

	// Consider it successful if at least half succeeded.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many warm failures: %d/%d", result.Failed, result.Total)
	}

	return nil
}

func (d *Dispatcher) handleHealthCheck(ctx context.Context) error {
	d.logger.Debug().Msg("running health check")

	// A single one-day, one-point request proves provider connectivity.
	healthCheckJob := NewWarmJob(WarmJobConfig{
		Config: WarmConfig{
			Targets:        d.job.config.Targets[:1],
			Days:           1,
			SamplingPoints: 1,
			Concurrency:    1,
			Timeout:        10 * time.Second,
		},
		Logger:  d.logger,
		Service: d.job.service,
	})

	result := healthCheckJob.Run(ctx)
	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", result.Failed)
	}

	d.logger.Debug().Msg("health check passed")
	return nil
}

// PubSubHandler feeds Pub/Sub messages to a Dispatcher.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Dispatcher       *Dispatcher
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Warm runs are long; keep few in flight.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 2
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       cfg.Dispatcher,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages. It blocks until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	err := h.dispatcher.Handle(ctx, msg.Data)
	switch {
	case errors.Is(err, ErrUnknownJobType):
		logger.Warn().Err(err).Msg("ignoring message")
		msg.Ack()
	case err != nil:
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
	default:
		logger.Info().
			Dur("duration", time.Since(startTime)).
			Msg("job completed successfully")
		msg.Ack()
	}
}
