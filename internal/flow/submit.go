package flow

import (
	"context"
	"errors"

	"bookwidget/internal/api"
	"bookwidget/internal/events"
	"bookwidget/internal/metrics"
	"bookwidget/internal/models"
)

// Submit posts the completed booking exactly once. The in-flight flag is
// checked atomically before the request goes out, so a double invocation
// racing the rendered disabled state cannot produce two POSTs. A failure
// re-opens the summary step for retry with all entered data intact.
func (c *Controller) Submit(ctx context.Context) error {
	if c.sel.Step != models.StepServiceSummary && c.sel.Step != models.StepRentalSummary {
		return ErrInvalidAction
	}
	if c.sel.Result != nil {
		return ErrAlreadySubmitted
	}
	if !c.submitting.CompareAndSwap(false, true) {
		return ErrSubmitInFlight
	}
	defer c.submitting.Store(false)

	var (
		result models.BookingResult
		err    error
	)
	if c.sel.Mode == models.ModeRental {
		result, err = c.gateway.SubmitRentalBooking(ctx, api.BuildRentalBooking(c.clientID, c.sel))
	} else {
		result, err = c.gateway.SubmitServiceBooking(ctx, api.BuildServiceBooking(c.clientID, c.sel))
	}

	if err != nil {
		c.submitErr = submissionMessage(err)
		c.logger.Error().Err(err).Str("session_id", c.sel.SessionID).Msg("booking submission failed")
		metrics.IncSubmission("failure")
		_ = c.bus.PublishJSON(events.EventSubmissionFailed, events.SubmissionEventPayload{
			SessionID: c.sel.SessionID,
			Mode:      string(c.sel.Mode),
			Error:     c.submitErr,
		})
		return err
	}

	c.submitErr = ""
	c.sel.Result = &result
	c.enterStep(ctx, models.StepSuccess)
	metrics.IncSubmission("success")
	_ = c.bus.PublishJSON(events.EventBookingSubmitted, events.SubmissionEventPayload{
		SessionID:     c.sel.SessionID,
		Mode:          string(c.sel.Mode),
		BookingNumber: result.BookingNumber,
	})
	return nil
}

func submissionMessage(err error) string {
	var subErr *api.SubmissionError
	if errors.As(err, &subErr) && subErr.Message != "" {
		return subErr.Message
	}
	return "Something went wrong, please try again."
}
