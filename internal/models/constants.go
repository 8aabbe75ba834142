package models

// Step identifies a single screen within a flow.
type Step string

const (
	StepRoot    Step = "root"
	StepSuccess Step = "success"

	// service chain
	StepServiceLocation Step = "service_location"
	StepServicePick     Step = "service_pick"
	StepServiceDateTime Step = "service_datetime"
	StepServiceCustomer Step = "service_customer"
	StepServiceSummary  Step = "service_summary"

	// rental chain
	StepRentalItem     Step = "rental_item"
	StepRentalSize     Step = "rental_size"
	StepRentalLocation Step = "rental_location"
	StepRentalDates    Step = "rental_dates"
	StepRentalCustomer Step = "rental_customer"
	StepRentalSummary  Step = "rental_summary"
)

const (
	// DefaultSessionTTL время жизни сессии виджета в хранилище
	DefaultSessionTTL = 30 * 60 // 30 минут в секундах

	// DefaultCacheTTL время жизни кэша справочников в Redis
	DefaultCacheTTL = 5 * 60 // 5 минут в секундах

	// RateLimitActions количество действий в окне на одну сессию
	RateLimitActions = 60

	// RateLimitWindow окно ограничения частоты действий
	RateLimitWindow = 60 // 1 минута в секундах

	// DateLayout формат календарной даты
	DateLayout = "2006-01-02"
)
