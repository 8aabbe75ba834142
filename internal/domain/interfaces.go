package domain

import (
	"context"
	"time"

	"bookwidget/internal/api"
	"bookwidget/internal/models"
)

// BookingGateway is the remote HTTP boundary the widget reads catalog and
// availability data from and submits completed bookings to.
type BookingGateway interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	GetLocations(ctx context.Context) ([]models.Location, error)
	GetServices(ctx context.Context) ([]models.Service, error)
	GetRentalItems(ctx context.Context) ([]models.RentalItem, error)
	GetDayAvailability(ctx context.Context, locationCode string, year, month int) ([]models.DayAvailability, error)
	GetTimeSlots(ctx context.Context, locationCode, date string) ([]models.TimeSlot, error)
	SubmitServiceBooking(ctx context.Context, req api.ServiceBookingRequest) (models.BookingResult, error)
	SubmitRentalBooking(ctx context.Context, req api.RentalBookingRequest) (models.BookingResult, error)
}

// SessionRepository persists the per-visitor selection between widget actions.
type SessionRepository interface {
	GetSelection(ctx context.Context, sessionID string) (*models.Selection, error)
	SaveSelection(ctx context.Context, sel *models.Selection) error
	ClearSelection(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error)
}

// EventPublisher fans widget lifecycle and booking events out to subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
