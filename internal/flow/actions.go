package flow

import (
	"context"

	"bookwidget/internal/calendar"
	"bookwidget/internal/models"
)

// SelectLocation picks a branch on either location step.
func (c *Controller) SelectLocation(ctx context.Context, locationID int64) error {
	if c.sel.Step != models.StepServiceLocation && c.sel.Step != models.StepRentalLocation {
		return ErrInvalidAction
	}
	for i := range c.locations {
		if c.locations[i].ID == locationID {
			loc := c.locations[i]
			c.sel.Location = &loc
			return nil
		}
	}
	return ErrInvalidAction
}

// SelectService picks a workshop service.
func (c *Controller) SelectService(serviceID int64) error {
	if c.sel.Step != models.StepServicePick {
		return ErrInvalidAction
	}
	for i := range c.services {
		if c.services[i].ID == serviceID {
			svc := c.services[i]
			c.sel.Service = &svc
			return nil
		}
	}
	return ErrInvalidAction
}

// SelectItem picks a rental bike. A previously chosen size is dropped when
// it is not offered for the new item.
func (c *Controller) SelectItem(itemID int64) error {
	if c.sel.Step != models.StepRentalItem {
		return ErrInvalidAction
	}
	for i := range c.items {
		if c.items[i].ID == itemID {
			item := c.items[i]
			c.sel.Item = &item
			if c.sel.Size != "" && !item.HasSize(c.sel.Size) {
				c.sel.Size = ""
			}
			return nil
		}
	}
	return ErrInvalidAction
}

// SelectSize picks a size from the chosen item's size chart.
func (c *Controller) SelectSize(size string) error {
	if c.sel.Step != models.StepRentalSize {
		return ErrInvalidAction
	}
	if c.sel.Item == nil || !c.sel.Item.HasSize(size) {
		return ErrInvalidSize
	}
	c.sel.Size = size
	return nil
}

// SelectDay handles a calendar day click on either flow's calendar step.
func (c *Controller) SelectDay(ctx context.Context, date string) error {
	switch c.sel.Step {
	case models.StepServiceDateTime:
		return c.selectServiceDay(ctx, date)
	case models.StepRentalDates:
		return c.selectRentalDay(date)
	default:
		return ErrInvalidAction
	}
}

func (c *Controller) selectServiceDay(ctx context.Context, date string) error {
	if date < c.today() {
		return ErrPastDate
	}
	if c.days != nil && !c.days[date] {
		return ErrDayUnavailable
	}
	c.sel.Date = date
	c.sel.Time = "" // a new day invalidates the old slot choice
	c.slots = nil
	c.loadSlots(ctx, date)
	return nil
}

func (c *Controller) selectRentalDay(date string) error {
	if date < c.today() {
		return ErrPastDate
	}
	r := calendar.RangeSelection{
		Pickup: c.sel.PickupDate,
		Return: c.sel.ReturnDate,
		Target: c.sel.Target,
	}
	r = r.ApplyClick(date)
	c.sel.PickupDate = r.Pickup
	c.sel.ReturnDate = r.Return
	c.sel.Target = r.Target
	return nil
}

// Retarget switches which end of the rental range the next day click sets.
func (c *Controller) Retarget(target models.RangeTarget) error {
	if c.sel.Step != models.StepRentalDates {
		return ErrInvalidAction
	}
	if target != models.TargetPickup && target != models.TargetReturn {
		return ErrInvalidAction
	}
	c.sel.Target = target
	return nil
}

// SelectSlot picks a time slot; legal only after a day was chosen.
func (c *Controller) SelectSlot(slotTime string) error {
	if c.sel.Step != models.StepServiceDateTime || c.sel.Date == "" {
		return ErrInvalidAction
	}
	for _, s := range c.slots {
		if s.Time == slotTime {
			if !s.Available {
				return ErrDayUnavailable
			}
			c.sel.Time = slotTime
			return nil
		}
	}
	return ErrInvalidAction
}

// PrevMonth moves the active flow's calendar cursor one month back and, on
// the service calendar, reloads day availability.
func (c *Controller) PrevMonth(ctx context.Context) error {
	return c.moveCursor(ctx, func(cur models.CursorMonth) models.CursorMonth { return cur.Prev() })
}

// NextMonth moves the active flow's calendar cursor one month forward.
func (c *Controller) NextMonth(ctx context.Context) error {
	return c.moveCursor(ctx, func(cur models.CursorMonth) models.CursorMonth { return cur.Next() })
}

func (c *Controller) moveCursor(ctx context.Context, move func(models.CursorMonth) models.CursorMonth) error {
	switch c.sel.Step {
	case models.StepServiceDateTime:
		c.sel.ServiceCursor = move(c.sel.ServiceCursor)
		c.navEpoch++
		c.loadDays(ctx)
		return nil
	case models.StepRentalDates:
		c.sel.RentalCursor = move(c.sel.RentalCursor)
		return nil
	default:
		return ErrInvalidAction
	}
}

// SetCustomer stores the contact fields; validation happens in CanProceed.
func (c *Controller) SetCustomer(cust models.Customer) error {
	if c.sel.Step != models.StepServiceCustomer && c.sel.Step != models.StepRentalCustomer {
		return ErrInvalidAction
	}
	c.sel.Customer = cust
	return nil
}

// SetServiceExtras stores the optional bike brand/model and description of
// the service flow.
func (c *Controller) SetServiceExtras(brand, model, description string) error {
	if c.sel.Step != models.StepServiceCustomer {
		return ErrInvalidAction
	}
	c.sel.ItemBrand = brand
	c.sel.ItemModel = model
	c.sel.Description = description
	return nil
}

func (c *Controller) today() string {
	return c.now().Format(models.DateLayout)
}
