package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nonPadding(cells []Cell) []Cell {
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if c.Day != 0 {
			out = append(out, c)
		}
	}
	return out
}

func TestMonthGridShape(t *testing.T) {
	tests := []struct {
		name       string
		year       int
		month      int
		wantDays   int
		wantOffset int // Monday-indexed column of day 1
	}{
		{"June 2025 starts Sunday", 2025, 6, 30, 6},
		{"July 2025 starts Tuesday", 2025, 7, 31, 1},
		{"September 2025 starts Monday", 2025, 9, 30, 0},
		{"February 2024 leap", 2024, 2, 29, 3},
		{"February 2025 plain", 2025, 2, 28, 5},
		{"February 2100 century no leap", 2100, 2, 28, 0},
		{"February 2000 400-year leap", 2000, 2, 29, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := MonthGrid(tt.year, tt.month, Options{})
			assert.Len(t, nonPadding(cells), tt.wantDays)
			assert.Equal(t, 0, len(cells)%7, "grid must be whole weeks")

			for i := 0; i < tt.wantOffset; i++ {
				assert.Zero(t, cells[i].Day, "leading cell %d must be padding", i)
			}
			require.Greater(t, len(cells), tt.wantOffset)
			assert.Equal(t, 1, cells[tt.wantOffset].Day)
		})
	}
}

func TestMonthGridClassification(t *testing.T) {
	t.Run("PastAndToday", func(t *testing.T) {
		cells := nonPadding(MonthGrid(2025, 7, Options{Today: "2025-07-10"}))
		assert.True(t, cells[8].Disabled, "July 9 is past")
		assert.True(t, cells[9].Today)
		assert.False(t, cells[9].Disabled)
		assert.False(t, cells[10].Disabled)
	})

	t.Run("SelectedSingleDate", func(t *testing.T) {
		cells := nonPadding(MonthGrid(2025, 7, Options{Today: "2025-07-01", Selected: "2025-07-15"}))
		assert.True(t, cells[14].Selected)
		assert.False(t, cells[13].Selected)
	})

	t.Run("UnavailableDayDisabled", func(t *testing.T) {
		avail := map[string]bool{"2025-07-10": true}
		cells := nonPadding(MonthGrid(2025, 7, Options{Today: "2025-07-01", Availability: avail}))
		assert.False(t, cells[9].Disabled, "listed available day stays enabled")
		assert.True(t, cells[10].Disabled, "unlisted day is unavailable")
	})

	t.Run("AvailabilityIgnoredInRangeMode", func(t *testing.T) {
		r := &RangeSelection{Pickup: "2025-07-05", Return: "2025-07-08"}
		cells := nonPadding(MonthGrid(2025, 7, Options{
			Today:        "2025-07-01",
			Range:        r,
			Availability: map[string]bool{},
		}))
		assert.False(t, cells[9].Disabled, "range mode applies only the past rule")
	})

	t.Run("RangeEndpointsAndInterior", func(t *testing.T) {
		r := &RangeSelection{Pickup: "2025-07-05", Return: "2025-07-08"}
		cells := nonPadding(MonthGrid(2025, 7, Options{Today: "2025-07-01", Range: r}))
		assert.True(t, cells[4].Pickup)
		assert.True(t, cells[7].Return)
		assert.True(t, cells[5].InRange)
		assert.True(t, cells[6].InRange)
		assert.False(t, cells[4].InRange, "endpoints are not interior")
		assert.False(t, cells[8].InRange)
	})

	t.Run("OneDayRentalCombinesEndpoints", func(t *testing.T) {
		r := &RangeSelection{Pickup: "2025-07-05", Return: "2025-07-05"}
		cells := nonPadding(MonthGrid(2025, 7, Options{Range: r}))
		assert.True(t, cells[4].Pickup)
		assert.True(t, cells[4].Return)
	})
}

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, 1, InclusiveDays("2025-06-01", "2025-06-01"))
	assert.Equal(t, 5, InclusiveDays("2025-06-01", "2025-06-05"))
	assert.Equal(t, 2, InclusiveDays("2025-06-30", "2025-07-01"))
	assert.Equal(t, 0, InclusiveDays("2025-06-05", "2025-06-01"), "inverted range")
	assert.Equal(t, 0, InclusiveDays("garbage", "2025-06-01"))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, 2))
	assert.Equal(t, 28, DaysIn(2025, 2))
	assert.Equal(t, 28, DaysIn(1900, 2))
	assert.Equal(t, 29, DaysIn(2000, 2))
	assert.Equal(t, 30, DaysIn(2025, 11))
	assert.Equal(t, 31, DaysIn(2025, 12))
}
