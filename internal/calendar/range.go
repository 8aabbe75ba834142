package calendar

import "bookwidget/internal/models"

// RangeSelection is the rental date-range picking state: both endpoints plus
// which endpoint the next day click sets. Dates are ISO YYYY-MM-DD strings,
// so lexicographic comparison is day comparison.
type RangeSelection struct {
	Pickup string
	Return string
	Target models.RangeTarget
}

// ApplyClick advances the two-click range selection:
//   - picking the pickup endpoint clears a return date that would precede it
//     and hands the target over to return;
//   - picking the return endpoint only completes the range when a pickup
//     exists and the click is not before it; the target stays on return so
//     the user can re-pick;
//   - a return-targeted click on an empty range is treated as a pickup pick.
//
// A click that would put the range end before its start never survives; the
// range restarts from the clicked day instead.
func (r RangeSelection) ApplyClick(date string) RangeSelection {
	if r.Target == models.TargetReturn && r.Pickup != "" && date >= r.Pickup {
		r.Return = date
		return r
	}

	// pickup pick: explicit, implied by an empty range, or a range restart
	r.Pickup = date
	if r.Return != "" && r.Return < date {
		r.Return = ""
	}
	r.Target = models.TargetReturn
	return r
}

// Retarget switches which endpoint the next click sets, leaving dates alone.
func (r RangeSelection) Retarget(target models.RangeTarget) RangeSelection {
	r.Target = target
	return r
}

// Complete reports whether both endpoints are chosen.
func (r RangeSelection) Complete() bool {
	return r.Pickup != "" && r.Return != ""
}
