// Package calendar holds the pure month-grid and date-range math used by the
// booking widget. Everything here is deterministic: callers pass today's date
// and an availability overlay in, a classified grid comes out.
package calendar

import (
	"fmt"
	"time"

	"bookwidget/internal/models"
)

// Cell is one position of the rendered month grid. A zero Day marks a padding
// cell used to align day 1 with its weekday column.
type Cell struct {
	Day      int    `json:"day"`
	Date     string `json:"date,omitempty"`
	Today    bool   `json:"today,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
	Selected bool   `json:"selected,omitempty"`
	Pickup   bool   `json:"pickup,omitempty"`
	Return   bool   `json:"return,omitempty"`
	InRange  bool   `json:"in_range,omitempty"`
}

// Options feed the grid classification. A non-nil Range switches the grid to
// range mode; Availability is honored in single-date mode only.
type Options struct {
	Today        string
	Selected     string
	Range        *RangeSelection
	Availability map[string]bool
}

// MonthGrid builds the Monday-first grid for a month. Leading padding cells
// place day 1 on its weekday column; trailing padding completes the last row.
func MonthGrid(year, month int, opts Options) []Cell {
	firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(firstDay.Weekday()) + 6) % 7 // Monday-indexed
	total := DaysIn(year, month)

	cells := make([]Cell, 0, offset+total)
	for i := 0; i < offset; i++ {
		cells = append(cells, Cell{})
	}

	for day := 1; day <= total; day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		cells = append(cells, classify(date, day, opts))
	}

	for len(cells)%7 != 0 {
		cells = append(cells, Cell{})
	}
	return cells
}

func classify(date string, day int, opts Options) Cell {
	cell := Cell{Day: day, Date: date}

	if opts.Today != "" {
		if date < opts.Today {
			cell.Disabled = true
		}
		if date == opts.Today {
			cell.Today = true
		}
	}

	if opts.Range != nil {
		r := opts.Range
		if date == r.Pickup {
			cell.Pickup = true
		}
		if date == r.Return {
			cell.Return = true
		}
		if r.Pickup != "" && r.Return != "" && date > r.Pickup && date < r.Return {
			cell.InRange = true
		}
		return cell
	}

	if date == opts.Selected {
		cell.Selected = true
	}
	if !cell.Disabled && opts.Availability != nil && !opts.Availability[date] {
		cell.Disabled = true
	}
	return cell
}

// DaysIn returns the number of days of a month with leap handling.
func DaysIn(year, month int) int {
	switch time.Month(month) {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// InclusiveDays counts the calendar days a rental spans, both endpoints
// included. A same-day pickup and return is one day. Malformed dates yield 0.
func InclusiveDays(pickup, returnDate string) int {
	from, err := time.Parse(models.DateLayout, pickup)
	if err != nil {
		return 0
	}
	to, err := time.Parse(models.DateLayout, returnDate)
	if err != nil {
		return 0
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		return 0
	}
	return days
}
