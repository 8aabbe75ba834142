// Package worker ships widget analytics events to the backend in the
// background. Delivery is best effort with bounded retry; the widget keeps
// working when the events endpoint is down.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"bookwidget/internal/api"
	"bookwidget/internal/events"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// EventSink delivers a batch of events; *api.Client satisfies it.
type EventSink interface {
	PostEvents(ctx context.Context, batch []api.AnalyticsEvent) error
}

// AnalyticsWorker buffers events in a channel, spilling to a Redis list when
// the channel is full, and flushes batches on an interval.
type AnalyticsWorker struct {
	sink        EventSink
	redis       *redis.Client
	retryPolicy RetryPolicy
	queue       chan api.AnalyticsEvent

	redisQueueKey string
	deadLetterKey string
	flushInterval time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

func NewAnalyticsWorker(sink EventSink, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *AnalyticsWorker {
	return &AnalyticsWorker{
		sink:          sink,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		queue:         make(chan api.AnalyticsEvent, 128),
		redisQueueKey: "widget_events:queue",
		deadLetterKey: "widget_events:deadletter",
		flushInterval: 10 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// Attach subscribes the worker to every widget event type on the bus.
func (w *AnalyticsWorker) Attach(bus *events.EventBus) {
	for _, eventType := range []string{
		events.EventWidgetOpened,
		events.EventWidgetClosed,
		events.EventStepChanged,
		events.EventBookingSubmitted,
		events.EventSubmissionFailed,
		events.EventCatalogLoadFailed,
	} {
		bus.Subscribe(eventType, func(event *events.Event) error {
			w.Enqueue(api.AnalyticsEvent{
				Type:       event.Type,
				Payload:    json.RawMessage(event.Payload),
				OccurredAt: event.CreatedAt,
			})
			return nil
		})
	}
}

// Enqueue accepts an event without blocking the caller. When the channel is
// full the event spills to Redis; without Redis it is dropped and counted
// in the log.
func (w *AnalyticsWorker) Enqueue(ev api.AnalyticsEvent) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	select {
	case w.queue <- ev:
		return
	default:
	}

	if w.redis == nil {
		w.logger.Warn().Str("event", ev.Type).Msg("analytics queue full, event dropped")
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := w.redis.RPush(context.Background(), w.redisQueueKey, data).Err(); err != nil {
		w.logger.Warn().Err(err).Msg("failed to spill event to redis")
	}
}

// Start runs the flush loop until the context is cancelled. A final flush
// drains whatever is buffered before returning.
func (w *AnalyticsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush(context.Background())
			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *AnalyticsWorker) flush(ctx context.Context) {
	batch := w.collect(ctx)
	if len(batch) == 0 {
		return
	}

	if err := w.deliver(ctx, batch); err != nil {
		w.logger.Error().Err(err).Int("batch_size", len(batch)).Msg("analytics batch delivery failed")
		w.deadLetter(ctx, batch)
	}
}

func (w *AnalyticsWorker) collect(ctx context.Context) []api.AnalyticsEvent {
	batch := make([]api.AnalyticsEvent, 0, w.batchSize)

	for len(batch) < w.batchSize {
		select {
		case ev := <-w.queue:
			batch = append(batch, ev)
		default:
			// channel drained; pull any spilled events
			if w.redis == nil {
				return batch
			}
			data, err := w.redis.LPop(ctx, w.redisQueueKey).Bytes()
			if err != nil {
				return batch
			}
			var ev api.AnalyticsEvent
			if json.Unmarshal(data, &ev) == nil {
				batch = append(batch, ev)
			}
		}
	}
	return batch
}

func (w *AnalyticsWorker) deliver(ctx context.Context, batch []api.AnalyticsEvent) error {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		lastErr = w.sink.PostEvents(ctx, batch)
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}
	return lastErr
}

func (w *AnalyticsWorker) deadLetter(ctx context.Context, batch []api.AnalyticsEvent) {
	if w.redis == nil {
		return
	}
	for _, ev := range batch {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		_ = w.redis.RPush(ctx, w.deadLetterKey, data).Err()
	}
}
