package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AnalyticsEvent is one widget lifecycle event reported to the backend.
type AnalyticsEvent struct {
	SessionID  string          `json:"session_id,omitempty"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// PostEvents ships a batch of widget events to the backend. The backend
// treats analytics as best effort; callers decide the retry policy.
func (c *Client) PostEvents(ctx context.Context, batch []AnalyticsEvent) error {
	if len(batch) == 0 {
		return nil
	}

	payload := struct {
		ClientID string           `json:"client_id"`
		Events   []AnalyticsEvent `json:"events"`
	}{ClientID: c.clientID, Events: batch}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/public/widget/events", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("events endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
