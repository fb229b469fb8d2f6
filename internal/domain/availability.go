package domain

import "context"

// Availability is the derived seat count of one event.
// swagger:model Availability
type Availability struct {
	EventID     string `json:"event_id"`
	Capacity    int    `json:"capacity"`
	TotalBooked int    `json:"total_booked"`
	SeatsLeft   int    `json:"seats_left"`
	SoldOut     bool   `json:"sold_out"`
}

// NewAvailability is the single formula for seats left. Both the read path and
// admission use it. SeatsLeft is clamped at zero, so an event whose capacity was
// edited below its booked total reports 0 rather than a negative number.
func NewAvailability(eventID string, capacity, totalBooked int) *Availability {
	left := capacity - totalBooked
	if left < 0 {
		left = 0
	}
	return &Availability{
		EventID:     eventID,
		Capacity:    capacity,
		TotalBooked: totalBooked,
		SeatsLeft:   left,
		SoldOut:     left <= 0,
	}
}

// AvailabilityCalculator derives availability from persisted state on every call.
type AvailabilityCalculator interface {
	Compute(ctx context.Context, eventID string) (*Availability, error)
}
