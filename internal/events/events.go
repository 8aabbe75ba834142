package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventWidgetOpened      = "widget_opened"
	EventWidgetClosed      = "widget_closed"
	EventStepChanged       = "step_changed"
	EventBookingSubmitted  = "booking_submitted"
	EventSubmissionFailed  = "submission_failed"
	EventCatalogLoadFailed = "catalog_load_failed"
)

// StepEventPayload describes a navigation transition for event consumers.
type StepEventPayload struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// SubmissionEventPayload snapshots the outcome of a booking POST.
type SubmissionEventPayload struct {
	SessionID     string `json:"session_id"`
	Mode          string `json:"mode"`
	BookingNumber string `json:"booking_number,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Event represents a lightweight widget event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
