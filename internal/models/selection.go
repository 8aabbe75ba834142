package models

import "time"

// Mode identifies which booking journey is active.
type Mode string

const (
	ModeNone    Mode = "none"
	ModeService Mode = "service"
	ModeRental  Mode = "rental"
)

// RangeTarget says which end of the rental date range the next day click sets.
type RangeTarget string

const (
	TargetPickup RangeTarget = "pickup"
	TargetReturn RangeTarget = "return"
)

// CursorMonth is the calendar month a flow currently displays.
type CursorMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Prev moves one month back with year carry.
func (c CursorMonth) Prev() CursorMonth {
	if c.Month == 1 {
		return CursorMonth{Year: c.Year - 1, Month: 12}
	}
	return CursorMonth{Year: c.Year, Month: c.Month - 1}
}

// Next moves one month forward with year carry.
func (c CursorMonth) Next() CursorMonth {
	if c.Month == 12 {
		return CursorMonth{Year: c.Year + 1, Month: 1}
	}
	return CursorMonth{Year: c.Year, Month: c.Month + 1}
}

// CurrentMonth returns the cursor for now's month.
func CurrentMonth(now time.Time) CursorMonth {
	return CursorMonth{Year: now.Year(), Month: int(now.Month())}
}

// Customer holds the visitor-entered contact fields shared by both flows.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Selection is the single mutable session record for an open widget.
// All dates are ISO YYYY-MM-DD strings; times are HH:MM. Fields of the
// inactive flow may be stale and must not be read (Mode gates access);
// Reset clears everything on return to the root screen.
type Selection struct {
	SessionID string `json:"session_id"`
	Mode      Mode   `json:"mode"`
	Step      Step   `json:"step"`

	// service flow
	Location *Location `json:"location,omitempty"`
	Service  *Service  `json:"service,omitempty"`
	Date     string    `json:"date,omitempty"`
	Time     string    `json:"time,omitempty"`
	// optional service extras
	ItemBrand   string `json:"item_brand,omitempty"`
	ItemModel   string `json:"item_model,omitempty"`
	Description string `json:"description,omitempty"`

	// rental flow
	Item       *RentalItem `json:"item,omitempty"`
	Size       string      `json:"size,omitempty"`
	PickupDate string      `json:"pickup_date,omitempty"`
	ReturnDate string      `json:"return_date,omitempty"`
	Target     RangeTarget `json:"target,omitempty"`

	Customer Customer `json:"customer"`

	// independent cursor months, retained across navigation in one session
	ServiceCursor CursorMonth `json:"service_cursor"`
	RentalCursor  CursorMonth `json:"rental_cursor"`

	Result *BookingResult `json:"result,omitempty"`
}

// NewSelection returns the empty root-screen state with both cursors on
// now's month.
func NewSelection(sessionID string, now time.Time) *Selection {
	cur := CurrentMonth(now)
	return &Selection{
		SessionID:     sessionID,
		Mode:          ModeNone,
		Step:          StepRoot,
		Target:        TargetPickup,
		ServiceCursor: cur,
		RentalCursor:  cur,
	}
}

// Reset returns the selection to its initial empty state, keeping only the
// session identity. Cursor months are re-anchored to now.
func (s *Selection) Reset(now time.Time) {
	*s = *NewSelection(s.SessionID, now)
}
