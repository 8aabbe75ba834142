package widget

import (
	"fmt"
	"strings"
	"time"

	"bookwidget/internal/calendar"
	"bookwidget/internal/flow"
	"bookwidget/internal/models"
)

var weekdayLabels = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Renderer builds view descriptions from flow snapshots. It holds only the
// embed theme; rendering itself is a pure function of the snapshot.
type Renderer struct {
	theme Theme
}

func NewRenderer(theme Theme) *Renderer {
	return &Renderer{theme: theme}
}

// Render produces the full screen description for a snapshot. It never
// mutates anything and may be called any number of times for the same state.
func (r *Renderer) Render(st flow.State) View {
	v := View{
		SessionID: st.Selection.SessionID,
		Step:      string(st.Selection.Step),
		RootClass: ClassRoot,
		Theme:     r.theme,
		Error:     st.SubmitError,
		Nav:       renderNav(st),
	}

	switch st.Selection.Step {
	case models.StepRoot:
		v.Title = "What would you like to book?"
		v.Buttons = renderModeButtons(st)
	case models.StepServiceLocation:
		v.Title = "Choose a workshop"
		v.Options = renderLocations(st, "select_location")
	case models.StepServicePick:
		v.Title = "Choose a service"
		v.Options = renderServices(st)
	case models.StepServiceDateTime:
		v.Title = "Pick a date and time"
		v.Calendar = renderServiceCalendar(st)
		if st.Selection.Date != "" {
			v.Slots = renderSlots(st)
		}
	case models.StepServiceCustomer:
		v.Title = "Your details"
		v.Form = renderForm(st, true)
	case models.StepServiceSummary:
		v.Title = "Confirm your booking"
		v.Summary = renderServiceSummary(st)
	case models.StepRentalItem:
		v.Title = "Choose a bike"
		v.Options = renderItems(st)
	case models.StepRentalSize:
		v.Title = "Choose a size"
		v.Options = renderSizes(st)
	case models.StepRentalLocation:
		v.Title = "Choose a pickup location"
		v.Options = renderLocations(st, "select_location")
	case models.StepRentalDates:
		v.Title = "Pick your rental dates"
		v.Calendar = renderRentalCalendar(st)
		v.Buttons = renderTargetButtons(st)
	case models.StepRentalCustomer:
		v.Title = "Your details"
		v.Form = renderForm(st, false)
	case models.StepRentalSummary:
		v.Title = "Confirm your rental"
		v.Summary = renderRentalSummary(st)
	case models.StepSuccess:
		v.Title = "Booking confirmed"
		v.Success = renderSuccess(st)
	}
	return v
}

func renderNav(st flow.State) Nav {
	step := st.Selection.Step
	if step == models.StepRoot || step == models.StepSuccess {
		return Nav{}
	}
	label := "Continue"
	if step == models.StepServiceSummary || step == models.StepRentalSummary {
		label = "Confirm booking"
	}
	return Nav{
		BackVisible: true,
		NextVisible: true,
		NextEnabled: st.CanProceed && !st.Submitting,
		NextLabel:   label,
	}
}

func renderModeButtons(st flow.State) []Button {
	buttons := []Button{{
		Action: "choose_mode",
		Value:  string(models.ModeService),
		Label:  "Book a service",
		Class:  ClassButton,
	}}
	if st.Settings.RentalEnabled {
		buttons = append(buttons, Button{
			Action: "choose_mode",
			Value:  string(models.ModeRental),
			Label:  "Rent a bike",
			Class:  ClassButton,
		})
	}
	return buttons
}

func renderLocations(st flow.State, action string) []Option {
	opts := make([]Option, 0, len(st.Locations))
	for _, loc := range st.Locations {
		opts = append(opts, Option{
			Action:   action,
			ID:       loc.ID,
			Label:    loc.Name,
			Sub:      loc.Address,
			Class:    optionClass(st.Selection.Location != nil && st.Selection.Location.ID == loc.ID),
			Selected: st.Selection.Location != nil && st.Selection.Location.ID == loc.ID,
		})
	}
	return opts
}

func renderServices(st flow.State) []Option {
	opts := make([]Option, 0, len(st.Services))
	for _, svc := range st.Services {
		selected := st.Selection.Service != nil && st.Selection.Service.ID == svc.ID
		opts = append(opts, Option{
			Action:   "select_service",
			ID:       svc.ID,
			Label:    svc.Name,
			Sub:      formatPrice(svc.Price),
			Class:    optionClass(selected),
			Selected: selected,
		})
	}
	return opts
}

func renderItems(st flow.State) []Option {
	opts := make([]Option, 0, len(st.Items))
	for _, item := range st.Items {
		selected := st.Selection.Item != nil && st.Selection.Item.ID == item.ID
		opts = append(opts, Option{
			Action:   "select_item",
			ID:       item.ID,
			Label:    item.Name,
			Sub:      formatPrice(item.PricePerDay) + " / day",
			ImageURL: item.ImageURL,
			Class:    optionClass(selected),
			Selected: selected,
		})
	}
	return opts
}

func renderSizes(st flow.State) []Option {
	if st.Selection.Item == nil {
		return nil
	}
	opts := make([]Option, 0, len(st.Selection.Item.Sizes))
	for _, size := range st.Selection.Item.Sizes {
		selected := st.Selection.Size == size
		opts = append(opts, Option{
			Action:   "select_size",
			Value:    size,
			Label:    size,
			Class:    optionClass(selected),
			Selected: selected,
		})
	}
	return opts
}

func renderServiceCalendar(st flow.State) *CalendarView {
	cur := st.Selection.ServiceCursor
	cells := calendar.MonthGrid(cur.Year, cur.Month, calendar.Options{
		Today:        todayFrom(st),
		Selected:     st.Selection.Date,
		Availability: st.Days,
	})
	return calendarView(cur, cells, "")
}

func renderRentalCalendar(st flow.State) *CalendarView {
	cur := st.Selection.RentalCursor
	cells := calendar.MonthGrid(cur.Year, cur.Month, calendar.Options{
		Today: todayFrom(st),
		Range: &calendar.RangeSelection{
			Pickup: st.Selection.PickupDate,
			Return: st.Selection.ReturnDate,
			Target: st.Selection.Target,
		},
	})
	return calendarView(cur, cells, string(st.Selection.Target))
}

// todayFrom derives today's date from the snapshot's cursor anchoring; the
// flow validates clicks against its own clock, so the grid only needs a
// consistent past/future boundary for styling.
func todayFrom(st flow.State) string {
	return st.Today
}

func calendarView(cur models.CursorMonth, cells []calendar.Cell, target string) *CalendarView {
	weeks := make([][]DayCell, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		week := make([]DayCell, 7)
		for j, cell := range cells[i : i+7] {
			week[j] = dayCell(cell)
		}
		weeks = append(weeks, week)
	}
	return &CalendarView{
		Year:       cur.Year,
		Month:      cur.Month,
		MonthLabel: fmt.Sprintf("%s %d", time.Month(cur.Month), cur.Year),
		Weekdays:   weekdayLabels,
		Weeks:      weeks,
		Target:     target,
	}
}

func dayCell(cell calendar.Cell) DayCell {
	if cell.Day == 0 {
		return DayCell{}
	}
	classes := []string{ClassDay}
	switch {
	case cell.Disabled:
		classes = append(classes, ClassDay+"--disabled")
	case cell.Pickup:
		classes = append(classes, ClassDay+"--pickup")
	case cell.Return:
		classes = append(classes, ClassDay+"--return")
	case cell.InRange:
		classes = append(classes, ClassDay+"--in-range")
	case cell.Selected:
		classes = append(classes, ClassDay+"--selected")
	}
	if cell.Today {
		classes = append(classes, ClassDay+"--today")
	}
	return DayCell{
		Day:       cell.Day,
		Date:      cell.Date,
		Class:     strings.Join(classes, " "),
		Clickable: !cell.Disabled,
	}
}

func renderSlots(st flow.State) []Slot {
	slots := make([]Slot, 0, len(st.Slots))
	for _, s := range st.Slots {
		selected := st.Selection.Time == s.Time
		class := ClassSlot
		if !s.Available {
			class += " " + ClassSlot + "--disabled"
		} else if selected {
			class += " " + ClassSlot + "--selected"
		}
		slots = append(slots, Slot{
			Time:      s.Time,
			Class:     class,
			Clickable: s.Available,
			Selected:  selected,
		})
	}
	return slots
}

func renderForm(st flow.State, showExtras bool) *Form {
	return &Form{
		Customer:    st.Selection.Customer,
		ShowExtras:  showExtras,
		ItemBrand:   st.Selection.ItemBrand,
		ItemModel:   st.Selection.ItemModel,
		Description: st.Selection.Description,
		Class:       ClassForm,
	}
}

func renderServiceSummary(st flow.State) *Summary {
	sel := st.Selection
	rows := []SummaryRow{}
	if sel.Location != nil {
		rows = append(rows, SummaryRow{Label: "Location", Value: sel.Location.Name})
	}
	if sel.Service != nil {
		rows = append(rows,
			SummaryRow{Label: "Service", Value: sel.Service.Name},
			SummaryRow{Label: "Price", Value: formatPrice(sel.Service.Price)})
	}
	rows = append(rows,
		SummaryRow{Label: "Date", Value: sel.Date},
		SummaryRow{Label: "Time", Value: sel.Time},
		SummaryRow{Label: "Name", Value: sel.Customer.Name},
		SummaryRow{Label: "Phone", Value: sel.Customer.Phone})
	return &Summary{Rows: rows, Submitting: st.Submitting, Class: ClassSummary}
}

func renderRentalSummary(st flow.State) *Summary {
	sel := st.Selection
	rows := []SummaryRow{}
	if sel.Item != nil {
		rows = append(rows, SummaryRow{Label: "Bike", Value: sel.Item.Name})
	}
	if sel.Size != "" {
		rows = append(rows, SummaryRow{Label: "Size", Value: sel.Size})
	}
	if sel.Location != nil {
		rows = append(rows, SummaryRow{Label: "Pickup location", Value: sel.Location.Name})
	}
	days := calendar.InclusiveDays(sel.PickupDate, sel.ReturnDate)
	rows = append(rows,
		SummaryRow{Label: "Pickup", Value: sel.PickupDate},
		SummaryRow{Label: "Return", Value: sel.ReturnDate},
		SummaryRow{Label: "Days", Value: fmt.Sprintf("%d", days)})
	if sel.Item != nil && days > 0 {
		rows = append(rows, SummaryRow{
			Label: "Total",
			Value: formatPrice(sel.Item.PricePerDay * float64(days)),
		})
	}
	rows = append(rows,
		SummaryRow{Label: "Name", Value: sel.Customer.Name},
		SummaryRow{Label: "Phone", Value: sel.Customer.Phone})
	return &Summary{Rows: rows, Submitting: st.Submitting, Class: ClassSummary}
}

func renderSuccess(st flow.State) *Success {
	number := ""
	if st.Selection.Result != nil {
		number = st.Selection.Result.BookingNumber
	}
	return &Success{
		BookingNumber: number,
		Message:       "Thank you! We sent a confirmation to " + st.Selection.Customer.Email + ".",
		Class:         ClassSuccess,
	}
}

func renderTargetButtons(st flow.State) []Button {
	return []Button{
		{
			Action: "retarget",
			Value:  string(models.TargetPickup),
			Label:  "Pickup date",
			Class:  ClassButton,
			Active: st.Selection.Target == models.TargetPickup,
		},
		{
			Action: "retarget",
			Value:  string(models.TargetReturn),
			Label:  "Return date",
			Class:  ClassButton,
			Active: st.Selection.Target == models.TargetReturn,
		},
	}
}

func optionClass(selected bool) string {
	if selected {
		return ClassOption + " " + ClassOption + "--selected"
	}
	return ClassOption
}

func formatPrice(price float64) string {
	return fmt.Sprintf("%.2f €", price)
}
