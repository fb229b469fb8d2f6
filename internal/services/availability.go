package services

import (
	"context"
	"time"

	"eventbooking/internal/domain"
)

type availabilityCalculator struct {
	eventRepo      domain.EventRepository
	bookingRepo    domain.BookingRepository
	contextTimeout time.Duration
}

// NewAvailabilityCalculator returns a calculator that reads capacity and booked seats on every call.
func NewAvailabilityCalculator(eventRepo domain.EventRepository, bookingRepo domain.BookingRepository, timeout time.Duration) domain.AvailabilityCalculator {
	return &availabilityCalculator{
		eventRepo:      eventRepo,
		bookingRepo:    bookingRepo,
		contextTimeout: timeout,
	}
}

func (c *availabilityCalculator) Compute(ctx context.Context, eventID string) (*domain.Availability, error) {
	ctx, cancel := context.WithTimeout(ctx, c.contextTimeout)
	defer cancel()

	event, err := c.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, storageErr("get event", err)
	}
	total, err := c.bookingRepo.SumSeatsByEventID(ctx, eventID)
	if err != nil {
		return nil, storageErr("sum booked seats", err)
	}
	return domain.NewAvailability(event.ID, event.Capacity, total), nil
}
