package flow

import "bookwidget/internal/models"

// State is the read-only snapshot the render layer consumes. The controller
// hands out copies; the view owns no state of its own.
type State struct {
	Selection models.Selection
	Settings  models.Settings

	Locations []models.Location
	Services  []models.Service
	Items     []models.RentalItem
	Days      map[string]bool
	Slots     []models.TimeSlot

	// Today anchors the render layer's past/future boundary to the same
	// clock the controller validates against.
	Today string

	CanProceed  bool
	Submitting  bool
	SubmitError string
}

// State snapshots everything a render pass needs.
func (c *Controller) State() State {
	return State{
		Selection:   *c.sel,
		Settings:    c.settings,
		Locations:   c.locations,
		Services:    c.services,
		Items:       c.items,
		Days:        c.days,
		Slots:       c.slots,
		Today:       c.today(),
		CanProceed:  c.CanProceed(),
		Submitting:  c.submitting.Load(),
		SubmitError: c.submitErr,
	}
}

// Selection exposes the live session record for persistence.
func (c *Controller) Selection() *models.Selection {
	return c.sel
}

// Settings reports the loaded widget configuration.
func (c *Controller) Settings() models.Settings {
	return c.settings
}
