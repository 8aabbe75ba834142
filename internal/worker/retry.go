package worker

import "time"

// RetryPolicy defines exponential backoff parameters for batch delivery.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxRetries <= 0 {
		r.MaxRetries = 5
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = 2 * time.Second
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = time.Minute
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}
	return r
}

// NextDelay returns the backoff before the given 1-based attempt, clamped
// to MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	r = r.withDefaults()
	delay := r.InitialDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * r.BackoffFactor)
		if delay >= r.MaxDelay {
			return r.MaxDelay
		}
	}
	if delay > r.MaxDelay {
		return r.MaxDelay
	}
	return delay
}
