// Package widget turns a flow snapshot into a renderable view description
// and hosts widget sessions over HTTP. The view layer is pure: every render
// is a full description computed from the current state, nothing in it is
// patched incrementally.
package widget

import "bookwidget/internal/models"

// Every emitted class name carries the bkw- prefix so the widget's styles
// never collide with the host page's.
const (
	ClassRoot     = "bkw-root"
	ClassButton   = "bkw-button"
	ClassOption   = "bkw-option"
	ClassCalendar = "bkw-calendar"
	ClassDay      = "bkw-day"
	ClassSlot     = "bkw-slot"
	ClassForm     = "bkw-form"
	ClassSummary  = "bkw-summary"
	ClassSuccess  = "bkw-success"
	ClassError    = "bkw-error"
)

// Theme carries the embed-configurable presentation knobs.
type Theme struct {
	AccentColor    string `json:"accent_color"`
	FloatingButton bool   `json:"floating_button"`
}

// View is the complete description of one widget screen. Exactly one of the
// step-specific sections is populated, matching Step.
type View struct {
	SessionID string `json:"session_id"`
	Step      string `json:"step"`
	Title     string `json:"title"`
	RootClass string `json:"root_class"`
	Theme     Theme  `json:"theme"`

	Buttons  []Button      `json:"buttons,omitempty"`
	Options  []Option      `json:"options,omitempty"`
	Calendar *CalendarView `json:"calendar,omitempty"`
	Slots    []Slot        `json:"slots,omitempty"`
	Form     *Form         `json:"form,omitempty"`
	Summary  *Summary      `json:"summary,omitempty"`
	Success  *Success      `json:"success,omitempty"`

	Nav   Nav    `json:"nav"`
	Error string `json:"error,omitempty"`
}

// Button is a mode or range-target choice button.
type Button struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
	Label  string `json:"label"`
	Class  string `json:"class"`
	Active bool   `json:"active,omitempty"`
}

// Option is one row of a pick list (locations, services, items, sizes).
type Option struct {
	Action   string `json:"action"`
	ID       int64  `json:"id,omitempty"`
	Value    string `json:"value,omitempty"`
	Label    string `json:"label"`
	Sub      string `json:"sub,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Class    string `json:"class"`
	Selected bool   `json:"selected"`
}

// CalendarView is a rendered month grid, Monday-first, whole weeks.
type CalendarView struct {
	Year       int         `json:"year"`
	Month      int         `json:"month"`
	MonthLabel string      `json:"month_label"`
	Weekdays   []string    `json:"weekdays"`
	Weeks      [][]DayCell `json:"weeks"`
	// Target is set on the rental calendar only and names which end of the
	// range the next click fills.
	Target string `json:"target,omitempty"`
}

// DayCell is one calendar cell; padding cells have Day 0 and no class.
type DayCell struct {
	Day       int    `json:"day,omitempty"`
	Date      string `json:"date,omitempty"`
	Class     string `json:"class,omitempty"`
	Clickable bool   `json:"clickable,omitempty"`
}

// Slot is one bookable time for the chosen day.
type Slot struct {
	Time      string `json:"time"`
	Class     string `json:"class"`
	Clickable bool   `json:"clickable"`
	Selected  bool   `json:"selected"`
}

// Form is the customer contact form, with the service flow's optional
// bike-details fields when ShowExtras is set.
type Form struct {
	Customer    models.Customer `json:"customer"`
	ShowExtras  bool            `json:"show_extras"`
	ItemBrand   string          `json:"item_brand,omitempty"`
	ItemModel   string          `json:"item_model,omitempty"`
	Description string          `json:"description,omitempty"`
	Class       string          `json:"class"`
}

// SummaryRow is one label/value pair on the confirmation screen.
type SummaryRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary is the confirmation screen before submission.
type Summary struct {
	Rows       []SummaryRow `json:"rows"`
	Submitting bool         `json:"submitting"`
	Class      string       `json:"class"`
}

// Success is the terminal screen after a confirmed booking.
type Success struct {
	BookingNumber string `json:"booking_number"`
	Message       string `json:"message"`
	Class         string `json:"class"`
}

// Nav describes the back/continue controls below the step content.
type Nav struct {
	BackVisible bool   `json:"back_visible"`
	NextVisible bool   `json:"next_visible"`
	NextEnabled bool   `json:"next_enabled"`
	NextLabel   string `json:"next_label,omitempty"`
}
