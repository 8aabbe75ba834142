package flow

import (
	"context"

	"bookwidget/internal/events"
	"bookwidget/internal/metrics"
	"bookwidget/internal/models"
)

// fetchTag records the navigation state a fetch was issued under. Results
// carrying a stale tag are dropped instead of populating whatever step the
// user navigated to in the meantime.
type fetchTag struct {
	step  models.Step
	epoch uint64
}

func (c *Controller) tag() fetchTag {
	return fetchTag{step: c.sel.Step, epoch: c.navEpoch}
}

func (c *Controller) stillCurrent(t fetchTag) bool {
	return c.sel.Step == t.step && c.navEpoch == t.epoch
}

func (c *Controller) loadFailed(resource string, err error) {
	c.logger.Error().Err(err).Str("resource", resource).Msg("background load failed")
	metrics.IncFetchFailure(resource)
	_ = c.bus.PublishJSON(events.EventCatalogLoadFailed, map[string]string{
		"session_id": c.sel.SessionID,
		"resource":   resource,
		"error":      err.Error(),
	})
}

func (c *Controller) loadLocations(ctx context.Context) {
	t := c.tag()
	locations, err := c.gateway.GetLocations(ctx)
	if !c.stillCurrent(t) {
		return
	}
	if err != nil {
		c.loadFailed("locations", err)
		c.locations = nil
		return
	}
	c.locations = locations
}

func (c *Controller) loadServices(ctx context.Context) {
	t := c.tag()
	services, err := c.gateway.GetServices(ctx)
	if !c.stillCurrent(t) {
		return
	}
	if err != nil {
		c.loadFailed("services", err)
		c.services = nil
		return
	}
	c.services = services
}

func (c *Controller) loadItems(ctx context.Context) {
	t := c.tag()
	items, err := c.gateway.GetRentalItems(ctx)
	if !c.stillCurrent(t) {
		return
	}
	if err != nil {
		c.loadFailed("bikes", err)
		c.items = nil
		return
	}
	c.items = items
}

// loadDays fetches the day-availability overlay for the service flow's
// cursor month. The rental calendar never calls this.
func (c *Controller) loadDays(ctx context.Context) {
	if c.sel.Location == nil {
		c.days = nil
		return
	}
	t := c.tag()
	cursor := c.sel.ServiceCursor
	days, err := c.gateway.GetDayAvailability(ctx, c.sel.Location.Code, cursor.Year, cursor.Month)
	if !c.stillCurrent(t) || cursor != c.sel.ServiceCursor {
		return
	}
	if err != nil {
		c.loadFailed("days", err)
		c.days = nil
		return
	}
	overlay := make(map[string]bool, len(days))
	for _, d := range days {
		overlay[d.Date] = d.Available
	}
	c.days = overlay
}

func (c *Controller) loadSlots(ctx context.Context, date string) {
	if c.sel.Location == nil {
		c.slots = nil
		return
	}
	t := c.tag()
	slots, err := c.gateway.GetTimeSlots(ctx, c.sel.Location.Code, date)
	if !c.stillCurrent(t) || c.sel.Date != date {
		return
	}
	if err != nil {
		c.loadFailed("slots", err)
		c.slots = nil
		return
	}
	c.slots = slots
}
