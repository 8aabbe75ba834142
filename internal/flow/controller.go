// Package flow implements the wizard state machine behind the booking widget:
// step navigation, per-step validation gating, step-entry data loads and the
// single-submission guarantee.
package flow

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"bookwidget/internal/domain"
	"bookwidget/internal/events"
	"bookwidget/internal/metrics"
	"bookwidget/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrCannotProceed    = errors.New("current step is incomplete")
	ErrInvalidAction    = errors.New("action is not valid on the current step")
	ErrPastDate         = errors.New("date is in the past")
	ErrDayUnavailable   = errors.New("day is not available")
	ErrInvalidSize      = errors.New("size is not offered for the chosen item")
	ErrSubmitInFlight   = errors.New("submission already in flight")
	ErrAlreadySubmitted = errors.New("booking already submitted")
)

// Controller owns one widget session's Selection. All mutation funnels
// through its methods; callers must serialize actions per session.
type Controller struct {
	sel      *models.Selection
	gateway  domain.BookingGateway
	bus      domain.EventPublisher
	clientID string
	logger   *zerolog.Logger
	now      func() time.Time

	settings models.Settings

	// data loaded on step entry, re-rendered from here
	locations []models.Location
	services  []models.Service
	items     []models.RentalItem
	days      map[string]bool
	slots     []models.TimeSlot

	// navEpoch tags in-flight fetches with the navigation state they belong
	// to; a result arriving after further navigation is discarded.
	navEpoch uint64

	submitting atomic.Bool
	submitErr  string
}

// NewController wires a controller around an existing selection.
func NewController(sel *models.Selection, gateway domain.BookingGateway, bus domain.EventPublisher, clientID string, logger *zerolog.Logger) *Controller {
	return &Controller{
		sel:      sel,
		gateway:  gateway,
		bus:      bus,
		clientID: clientID,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the controller's clock; tests pin today's date with it.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Open loads the widget settings for a freshly created session. A settings
// failure is logged and leaves the rental flow disabled.
func (c *Controller) Open(ctx context.Context) {
	c.loadSettings(ctx)
	metrics.IncOpen()
	_ = c.bus.PublishJSON(events.EventWidgetOpened, events.StepEventPayload{
		SessionID: c.sel.SessionID,
		To:        string(models.StepRoot),
	})
}

// Hydrate rebuilds in-memory state for a selection restored from storage:
// settings plus whatever data the current step displays. Unlike Open it
// reports no new widget opening.
func (c *Controller) Hydrate(ctx context.Context) {
	c.loadSettings(ctx)
	c.Refresh(ctx)
}

// Refresh reloads the data backing the current step.
func (c *Controller) Refresh(ctx context.Context) {
	switch c.sel.Step {
	case models.StepServiceLocation, models.StepRentalLocation:
		c.loadLocations(ctx)
	case models.StepServicePick:
		c.loadServices(ctx)
	case models.StepRentalItem:
		c.loadItems(ctx)
	case models.StepServiceDateTime:
		c.loadDays(ctx)
		if c.sel.Date != "" {
			c.loadSlots(ctx, c.sel.Date)
		}
	}
}

func (c *Controller) loadSettings(ctx context.Context) {
	settings, err := c.gateway.GetSettings(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load widget settings")
		metrics.IncFetchFailure("settings")
		settings = models.Settings{}
	}
	c.settings = settings
}

// ChooseMode leaves the root screen into the first step of a flow.
func (c *Controller) ChooseMode(ctx context.Context, mode models.Mode) error {
	if c.sel.Step != models.StepRoot {
		return ErrInvalidAction
	}
	if mode == models.ModeRental && !c.settings.RentalEnabled {
		return ErrInvalidAction
	}

	switch mode {
	case models.ModeService:
		c.sel.Mode = mode
		c.enterStep(ctx, models.StepServiceLocation)
	case models.ModeRental:
		c.sel.Mode = mode
		c.enterStep(ctx, models.StepRentalItem)
	default:
		return ErrInvalidAction
	}
	return nil
}

// Next advances one step if the current step's data is complete.
func (c *Controller) Next(ctx context.Context) error {
	if c.sel.Step == models.StepSuccess {
		return ErrInvalidAction
	}
	if !c.CanProceed() {
		return ErrCannotProceed
	}

	switch c.sel.Step {
	case models.StepServiceSummary:
		return c.Submit(ctx)
	case models.StepRentalSummary:
		return c.Submit(ctx)
	}

	next, ok := nextStep[c.sel.Step]
	if !ok {
		return ErrInvalidAction
	}
	c.enterStep(ctx, next)
	return nil
}

// Back retreats one step. From the first step of a chain it returns to the
// root screen and resets the selection, unless the alternate flow is
// disabled, in which case there is no mode choice to return to.
func (c *Controller) Back(ctx context.Context) error {
	if c.sel.Step == models.StepRoot || c.sel.Step == models.StepSuccess {
		return ErrInvalidAction
	}

	if c.sel.Step == firstStep(c.sel.Mode) {
		if !c.alternateFlowEnabled() {
			return nil
		}
		c.resetToRoot(ctx)
		return nil
	}

	prev, ok := prevStep[c.sel.Step]
	if !ok {
		return ErrInvalidAction
	}
	c.enterStep(ctx, prev)
	return nil
}

func (c *Controller) alternateFlowEnabled() bool {
	if c.sel.Mode == models.ModeService {
		return c.settings.RentalEnabled
	}
	return true
}

func (c *Controller) resetToRoot(ctx context.Context) {
	c.sel.Reset(c.now())
	c.locations = nil
	c.services = nil
	c.items = nil
	c.days = nil
	c.slots = nil
	c.submitErr = ""
	c.navEpoch++
	metrics.IncStep(string(models.StepRoot))
	_ = c.bus.PublishJSON(events.EventStepChanged, events.StepEventPayload{
		SessionID: c.sel.SessionID,
		To:        string(models.StepRoot),
	})
}

// CanProceed applies the per-step validation gate.
func (c *Controller) CanProceed() bool {
	switch c.sel.Step {
	case models.StepServiceLocation, models.StepRentalLocation:
		return c.sel.Location != nil
	case models.StepServicePick:
		return c.sel.Service != nil
	case models.StepRentalItem:
		return c.sel.Item != nil
	case models.StepRentalSize:
		return c.sel.Size != ""
	case models.StepServiceDateTime:
		return c.sel.Date != "" && c.sel.Time != ""
	case models.StepRentalDates:
		return c.sel.PickupDate != "" && c.sel.ReturnDate != ""
	case models.StepServiceCustomer, models.StepRentalCustomer:
		return customerComplete(c.sel.Customer)
	case models.StepServiceSummary, models.StepRentalSummary:
		return true
	default:
		return false
	}
}

func customerComplete(cust models.Customer) bool {
	return strings.TrimSpace(cust.Name) != "" &&
		strings.TrimSpace(cust.Phone) != "" &&
		strings.Contains(cust.Email, "@")
}

// step graph
var nextStep = map[models.Step]models.Step{
	models.StepServiceLocation: models.StepServicePick,
	models.StepServicePick:     models.StepServiceDateTime,
	models.StepServiceDateTime: models.StepServiceCustomer,
	models.StepServiceCustomer: models.StepServiceSummary,

	models.StepRentalItem:     models.StepRentalSize,
	models.StepRentalSize:     models.StepRentalLocation,
	models.StepRentalLocation: models.StepRentalDates,
	models.StepRentalDates:    models.StepRentalCustomer,
	models.StepRentalCustomer: models.StepRentalSummary,
}

var prevStep = map[models.Step]models.Step{
	models.StepServicePick:     models.StepServiceLocation,
	models.StepServiceDateTime: models.StepServicePick,
	models.StepServiceCustomer: models.StepServiceDateTime,
	models.StepServiceSummary:  models.StepServiceCustomer,

	models.StepRentalSize:     models.StepRentalItem,
	models.StepRentalLocation: models.StepRentalSize,
	models.StepRentalDates:    models.StepRentalLocation,
	models.StepRentalCustomer: models.StepRentalDates,
	models.StepRentalSummary:  models.StepRentalCustomer,
}

func firstStep(mode models.Mode) models.Step {
	if mode == models.ModeRental {
		return models.StepRentalItem
	}
	return models.StepServiceLocation
}

func (c *Controller) enterStep(ctx context.Context, step models.Step) {
	from := c.sel.Step
	c.sel.Step = step
	c.navEpoch++
	metrics.IncStep(string(step))
	_ = c.bus.PublishJSON(events.EventStepChanged, events.StepEventPayload{
		SessionID: c.sel.SessionID,
		Mode:      string(c.sel.Mode),
		From:      string(from),
		To:        string(step),
	})

	switch step {
	case models.StepServiceLocation, models.StepRentalLocation:
		c.loadLocations(ctx)
	case models.StepServicePick:
		c.loadServices(ctx)
	case models.StepRentalItem:
		c.loadItems(ctx)
	case models.StepServiceDateTime:
		c.loadDays(ctx)
	}
	// the rental range calendar needs no remote fetch: only the past-date
	// rule applies
}
