package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bookwidget/internal/api"
	"bookwidget/internal/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	failures int
	attempts int
	batches  [][]api.AnalyticsEvent
}

func (s *fakeSink) PostEvents(_ context.Context, batch []api.AnalyticsEvent) error {
	s.attempts++
	if s.attempts <= s.failures {
		return errors.New("backend unavailable")
	}
	s.batches = append(s.batches, batch)
	return nil
}

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestFlushDeliversBatch(t *testing.T) {
	logger := zerolog.Nop()
	sink := &fakeSink{}
	w := NewAnalyticsWorker(sink, nil, fastRetry(), &logger)

	w.Enqueue(api.AnalyticsEvent{Type: events.EventWidgetOpened})
	w.Enqueue(api.AnalyticsEvent{Type: events.EventStepChanged})

	w.flush(context.Background())

	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 2)
	assert.Equal(t, events.EventWidgetOpened, sink.batches[0][0].Type)
	assert.False(t, sink.batches[0][0].OccurredAt.IsZero(), "enqueue stamps the event")
}

func TestFlushEmptyQueueNoCall(t *testing.T) {
	logger := zerolog.Nop()
	sink := &fakeSink{}
	w := NewAnalyticsWorker(sink, nil, fastRetry(), &logger)

	w.flush(context.Background())
	assert.Zero(t, sink.attempts)
}

func TestDeliveryRetries(t *testing.T) {
	logger := zerolog.Nop()
	sink := &fakeSink{failures: 2}
	w := NewAnalyticsWorker(sink, nil, fastRetry(), &logger)

	w.Enqueue(api.AnalyticsEvent{Type: events.EventBookingSubmitted})
	w.flush(context.Background())

	assert.Equal(t, 3, sink.attempts, "two failures then success")
	require.Len(t, sink.batches, 1)
}

func TestFailedBatchGoesToDeadLetter(t *testing.T) {
	logger := zerolog.Nop()
	client := testRedis(t)
	sink := &fakeSink{failures: 99}
	w := NewAnalyticsWorker(sink, client, fastRetry(), &logger)

	w.Enqueue(api.AnalyticsEvent{Type: events.EventSubmissionFailed})
	w.flush(context.Background())

	n, err := client.LLen(context.Background(), w.deadLetterKey).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOverflowSpillsToRedis(t *testing.T) {
	logger := zerolog.Nop()
	client := testRedis(t)
	sink := &fakeSink{}
	w := NewAnalyticsWorker(sink, client, fastRetry(), &logger)

	for i := 0; i < cap(w.queue)+5; i++ {
		w.Enqueue(api.AnalyticsEvent{Type: fmt.Sprintf("ev-%d", i)})
	}

	n, err := client.LLen(context.Background(), w.redisQueueKey).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 5, n, "overflow lands in redis")

	// batches are capped, spilled events drain over successive flushes
	total := 0
	for i := 0; i < 20 && total < cap(w.queue)+5; i++ {
		w.flush(context.Background())
		total = 0
		for _, b := range sink.batches {
			total += len(b)
		}
	}
	assert.Equal(t, cap(w.queue)+5, total)

	n, err = client.LLen(context.Background(), w.redisQueueKey).Result()
	require.NoError(t, err)
	assert.Zero(t, n, "spill queue drained")
}

func TestAttachForwardsBusEvents(t *testing.T) {
	logger := zerolog.Nop()
	sink := &fakeSink{}
	w := NewAnalyticsWorker(sink, nil, fastRetry(), &logger)

	bus := events.NewEventBus()
	w.Attach(bus)

	require.NoError(t, bus.PublishJSON(events.EventWidgetOpened, map[string]string{"session_id": "s1"}))
	w.flush(context.Background())

	require.Len(t, sink.batches, 1)
	assert.Equal(t, events.EventWidgetOpened, sink.batches[0][0].Type)
	assert.JSONEq(t, `{"session_id":"s1"}`, string(sink.batches[0][0].Payload))
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	assert.Equal(t, 5*time.Second, policy.NextDelay(4), "clamped at max")
	assert.Equal(t, time.Second, policy.NextDelay(0), "attempt floor")
}
