package models

// Settings is the per-client widget configuration served by the backend.
type Settings struct {
	RentalEnabled bool `json:"rental_enabled"`
}

// Location is a branch where services and rentals are offered.
type Location struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Service is a bookable workshop service.
type Service struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
}

// RentalItem is a rentable bike with its size chart.
type RentalItem struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	ImageURL    string   `json:"image_url"`
	Sizes       []string `json:"sizes"`
	PricePerDay float64  `json:"price_per_day"`
}

// HasSize reports whether size belongs to the item's size chart.
func (i RentalItem) HasSize(size string) bool {
	for _, s := range i.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// DayAvailability marks a single calendar day of a displayed month.
// Date is an ISO YYYY-MM-DD string.
type DayAvailability struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// TimeSlot is one bookable HH:MM slot on a chosen day.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// BookingResult is produced only by a successful submission and never mutated.
type BookingResult struct {
	BookingNumber string `json:"booking_number"`
}
