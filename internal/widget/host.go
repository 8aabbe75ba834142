package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookwidget/internal/config"
	"bookwidget/internal/domain"
	"bookwidget/internal/events"
	"bookwidget/internal/flow"
	"bookwidget/internal/models"
	"bookwidget/internal/session"

	"github.com/rs/zerolog"
)

var (
	ErrUnknownSession = errors.New("unknown or expired session")
	ErrRateLimited    = errors.New("too many actions")
)

// Action is one visitor interaction posted to the widget.
type Action struct {
	Type   string `json:"type"`
	Mode   string `json:"mode,omitempty"`
	ID     int64  `json:"id,omitempty"`
	Value  string `json:"value,omitempty"`
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`
	Target string `json:"target,omitempty"`

	Customer    *models.Customer `json:"customer,omitempty"`
	ItemBrand   string           `json:"item_brand,omitempty"`
	ItemModel   string           `json:"item_model,omitempty"`
	Description string           `json:"description,omitempty"`
}

// Host owns the live widget sessions of one embedding client: it creates
// them, serializes their actions, persists every mutation and renders views.
type Host struct {
	cfg      config.EmbedConfig
	gateway  domain.BookingGateway
	sessions *session.Service
	bus      *events.EventBus
	renderer *Renderer
	logger   *zerolog.Logger
	now      func() time.Time

	mu   sync.Mutex
	live map[string]*hostSession
}

// hostSession serializes all actions of one session; the flow controller
// itself is not safe for concurrent use.
type hostSession struct {
	mu   sync.Mutex
	ctrl *flow.Controller
}

// NewHost validates the embed configuration up front; a missing client ID or
// backend URL is an integration error and refuses to attach at all.
func NewHost(cfg config.EmbedConfig, gateway domain.BookingGateway, sessions *session.Service, bus *events.EventBus, logger *zerolog.Logger) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embed config: %w", err)
	}
	return &Host{
		cfg:      cfg,
		gateway:  gateway,
		sessions: sessions,
		bus:      bus,
		renderer: NewRenderer(Theme{
			AccentColor:    cfg.AccentColor,
			FloatingButton: cfg.FloatingButtonVisible(),
		}),
		logger: logger,
		now:    time.Now,
		live:   make(map[string]*hostSession),
	}, nil
}

// WithClock pins the host's clock, for tests.
func (h *Host) WithClock(now func() time.Time) *Host {
	h.now = now
	return h
}

// Open starts a new widget session on the root screen.
func (h *Host) Open(ctx context.Context) (View, error) {
	sel, err := h.sessions.Open(ctx, h.now())
	if err != nil {
		return View{}, err
	}

	ctrl := flow.NewController(sel, h.gateway, h.bus, h.cfg.ClientID, h.logger).WithClock(h.now)
	ctrl.Open(ctx)

	h.mu.Lock()
	h.live[sel.SessionID] = &hostSession{ctrl: ctrl}
	h.mu.Unlock()

	return h.renderer.Render(ctrl.State()), nil
}

// View renders the current screen of a session without mutating it.
func (h *Host) View(ctx context.Context, sessionID string) (View, error) {
	hs, err := h.acquire(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return h.renderer.Render(hs.ctrl.State()), nil
}

// Dispatch applies one action to a session and returns the resulting view.
// Flow-level rejections (incomplete step, unavailable day and the like) are
// not errors at this boundary: they render into the view's error message.
func (h *Host) Dispatch(ctx context.Context, sessionID string, action Action) (View, error) {
	ok, err := h.sessions.CheckRateLimit(ctx, sessionID,
		models.RateLimitActions, models.RateLimitWindow*time.Second)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("rate limit check failed")
	} else if !ok {
		return View{}, ErrRateLimited
	}

	hs, err := h.acquire(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	hs.mu.Lock()
	defer hs.mu.Unlock()

	actionErr := h.apply(ctx, hs.ctrl, action)
	if saveErr := h.sessions.Save(ctx, hs.ctrl.Selection()); saveErr != nil {
		h.logger.Error().Err(saveErr).Str("session_id", sessionID).Msg("failed to persist session")
	}

	view := h.renderer.Render(hs.ctrl.State())
	if actionErr != nil && view.Error == "" {
		view.Error = actionMessage(actionErr)
	}
	return view, nil
}

// Close discards a session.
func (h *Host) Close(ctx context.Context, sessionID string) error {
	h.mu.Lock()
	delete(h.live, sessionID)
	h.mu.Unlock()

	_ = h.bus.PublishJSON(events.EventWidgetClosed, events.StepEventPayload{SessionID: sessionID})
	return h.sessions.Close(ctx, sessionID)
}

// acquire returns the live session, rehydrating it from storage when this
// process has no in-memory controller for it.
func (h *Host) acquire(ctx context.Context, sessionID string) (*hostSession, error) {
	h.mu.Lock()
	hs, ok := h.live[sessionID]
	h.mu.Unlock()
	if ok {
		return hs, nil
	}

	sel, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sel == nil {
		return nil, ErrUnknownSession
	}

	ctrl := flow.NewController(sel, h.gateway, h.bus, h.cfg.ClientID, h.logger).WithClock(h.now)
	ctrl.Hydrate(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.live[sessionID]; ok {
		return existing, nil
	}
	hs = &hostSession{ctrl: ctrl}
	h.live[sessionID] = hs
	return hs, nil
}

func (h *Host) apply(ctx context.Context, ctrl *flow.Controller, action Action) error {
	switch action.Type {
	case "choose_mode":
		return ctrl.ChooseMode(ctx, models.Mode(action.Mode))
	case "next":
		return ctrl.Next(ctx)
	case "back":
		return ctrl.Back(ctx)
	case "select_location":
		return ctrl.SelectLocation(ctx, action.ID)
	case "select_service":
		return ctrl.SelectService(action.ID)
	case "select_item":
		return ctrl.SelectItem(action.ID)
	case "select_size":
		return ctrl.SelectSize(action.Value)
	case "select_day":
		return ctrl.SelectDay(ctx, action.Date)
	case "select_slot":
		return ctrl.SelectSlot(action.Time)
	case "retarget":
		return ctrl.Retarget(models.RangeTarget(action.Target))
	case "prev_month":
		return ctrl.PrevMonth(ctx)
	case "next_month":
		return ctrl.NextMonth(ctx)
	case "set_customer":
		if action.Customer == nil {
			return flow.ErrInvalidAction
		}
		return ctrl.SetCustomer(*action.Customer)
	case "set_extras":
		return ctrl.SetServiceExtras(action.ItemBrand, action.ItemModel, action.Description)
	case "submit":
		return ctrl.Submit(ctx)
	default:
		return flow.ErrInvalidAction
	}
}

// actionMessage maps flow rejections to visitor-facing text.
func actionMessage(err error) string {
	switch {
	case errors.Is(err, flow.ErrCannotProceed):
		return "Please complete this step first."
	case errors.Is(err, flow.ErrPastDate):
		return "This date is in the past."
	case errors.Is(err, flow.ErrDayUnavailable):
		return "This day is not available."
	case errors.Is(err, flow.ErrInvalidSize):
		return "This size is not offered for the chosen bike."
	case errors.Is(err, flow.ErrSubmitInFlight), errors.Is(err, flow.ErrAlreadySubmitted):
		return "Your booking is already being processed."
	default:
		return "This action is not available right now."
	}
}
