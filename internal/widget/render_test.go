package widget

import (
	"testing"

	"bookwidget/internal/flow"
	"bookwidget/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseState(step models.Step) flow.State {
	return flow.State{
		Selection: models.Selection{
			SessionID: "sess-1",
			Step:      step,
			ServiceCursor: models.CursorMonth{Year: 2025, Month: 6},
			RentalCursor:  models.CursorMonth{Year: 2025, Month: 6},
		},
		Today: "2025-06-05",
	}
}

func TestRenderRoot(t *testing.T) {
	r := NewRenderer(Theme{AccentColor: "#2f6fde", FloatingButton: true})

	t.Run("RentalEnabledShowsBothButtons", func(t *testing.T) {
		st := baseState(models.StepRoot)
		st.Settings.RentalEnabled = true

		v := r.Render(st)
		assert.Equal(t, "root", v.Step)
		assert.Equal(t, ClassRoot, v.RootClass)
		require.Len(t, v.Buttons, 2)
		assert.Equal(t, string(models.ModeService), v.Buttons[0].Value)
		assert.Equal(t, string(models.ModeRental), v.Buttons[1].Value)
		assert.False(t, v.Nav.BackVisible, "root has no navigation chrome")
	})

	t.Run("RentalDisabledHidesRentalButton", func(t *testing.T) {
		v := r.Render(baseState(models.StepRoot))
		require.Len(t, v.Buttons, 1)
		assert.Equal(t, string(models.ModeService), v.Buttons[0].Value)
	})
}

func TestRenderNavGating(t *testing.T) {
	r := NewRenderer(Theme{})

	st := baseState(models.StepServiceLocation)
	v := r.Render(st)
	assert.True(t, v.Nav.BackVisible)
	assert.False(t, v.Nav.NextEnabled, "incomplete step keeps continue disabled")

	st.CanProceed = true
	assert.True(t, r.Render(st).Nav.NextEnabled)

	st.Selection.Step = models.StepServiceSummary
	st.Submitting = true
	v = r.Render(st)
	assert.False(t, v.Nav.NextEnabled, "in-flight submission disables confirm")
	assert.Equal(t, "Confirm booking", v.Nav.NextLabel)
}

func TestRenderServiceCalendar(t *testing.T) {
	r := NewRenderer(Theme{})
	st := baseState(models.StepServiceDateTime)
	st.Selection.Date = "2025-06-10"
	st.Days = map[string]bool{"2025-06-10": true, "2025-06-11": true}
	st.Slots = []models.TimeSlot{{Time: "10:00", Available: true}, {Time: "11:00", Available: false}}
	st.Selection.Time = "10:00"

	v := r.Render(st)
	require.NotNil(t, v.Calendar)
	assert.Equal(t, "June 2025", v.Calendar.MonthLabel)
	assert.Equal(t, []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}, v.Calendar.Weekdays)
	// June 2025 starts on a Sunday: six leading pads, 30 days, six rows
	require.Len(t, v.Calendar.Weeks, 6)
	assert.Zero(t, v.Calendar.Weeks[0][0].Day)
	assert.Equal(t, 1, v.Calendar.Weeks[0][6].Day)

	var selected, disabled int
	for _, week := range v.Calendar.Weeks {
		for _, cell := range week {
			if cell.Day == 0 {
				assert.Empty(t, cell.Class, "padding cells carry no class")
				continue
			}
			assert.Contains(t, cell.Class, ClassDay)
			if cell.Date == "2025-06-10" {
				assert.Contains(t, cell.Class, ClassDay+"--selected")
				selected++
			}
			if cell.Date == "2025-06-12" {
				// not in the availability overlay
				assert.Contains(t, cell.Class, ClassDay+"--disabled")
				assert.False(t, cell.Clickable)
				disabled++
			}
		}
	}
	assert.Equal(t, 1, selected)
	assert.Equal(t, 1, disabled)

	require.Len(t, v.Slots, 2)
	assert.True(t, v.Slots[0].Selected)
	assert.Contains(t, v.Slots[1].Class, ClassSlot+"--disabled")
	assert.False(t, v.Slots[1].Clickable)
}

func TestRenderRentalCalendarRange(t *testing.T) {
	r := NewRenderer(Theme{})
	st := baseState(models.StepRentalDates)
	st.Selection.Mode = models.ModeRental
	st.Selection.PickupDate = "2025-06-10"
	st.Selection.ReturnDate = "2025-06-13"
	st.Selection.Target = models.TargetReturn

	v := r.Render(st)
	require.NotNil(t, v.Calendar)
	assert.Equal(t, "return", v.Calendar.Target)
	require.Len(t, v.Buttons, 2, "target toggle buttons")
	assert.True(t, v.Buttons[1].Active)

	classByDate := map[string]string{}
	for _, week := range v.Calendar.Weeks {
		for _, cell := range week {
			classByDate[cell.Date] = cell.Class
		}
	}
	assert.Contains(t, classByDate["2025-06-10"], ClassDay+"--pickup")
	assert.Contains(t, classByDate["2025-06-13"], ClassDay+"--return")
	assert.Contains(t, classByDate["2025-06-11"], ClassDay+"--in-range")
	assert.Contains(t, classByDate["2025-06-12"], ClassDay+"--in-range")
}

func TestRenderRentalSummaryTotals(t *testing.T) {
	r := NewRenderer(Theme{})
	st := baseState(models.StepRentalSummary)
	st.Selection.Mode = models.ModeRental
	st.Selection.Item = &models.RentalItem{ID: 3, Name: "Trek Marlin", PricePerDay: 15}
	st.Selection.Size = "M"
	st.Selection.Location = &models.Location{ID: 1, Name: "Bratislava"}
	st.Selection.PickupDate = "2025-06-10"
	st.Selection.ReturnDate = "2025-06-12"
	st.Selection.Customer = models.Customer{Name: "Ján Novák", Phone: "+421900000000"}

	v := r.Render(st)
	require.NotNil(t, v.Summary)

	rows := map[string]string{}
	for _, row := range v.Summary.Rows {
		rows[row.Label] = row.Value
	}
	assert.Equal(t, "3", rows["Days"], "both endpoints count")
	assert.Equal(t, "45.00 €", rows["Total"])
	assert.Equal(t, "Trek Marlin", rows["Bike"])
}

func TestRenderSuccess(t *testing.T) {
	r := NewRenderer(Theme{})
	st := baseState(models.StepSuccess)
	st.Selection.Customer.Email = "jan@test.sk"
	st.Selection.Result = &models.BookingResult{BookingNumber: "SB-2025-0042"}

	v := r.Render(st)
	require.NotNil(t, v.Success)
	assert.Equal(t, "SB-2025-0042", v.Success.BookingNumber)
	assert.Contains(t, v.Success.Message, "jan@test.sk")
	assert.False(t, v.Nav.NextVisible, "success is terminal")
}

func TestRenderSubmitErrorSurfaces(t *testing.T) {
	r := NewRenderer(Theme{})
	st := baseState(models.StepServiceSummary)
	st.SubmitError = "slot no longer available"

	assert.Equal(t, "slot no longer available", r.Render(st).Error)
}
