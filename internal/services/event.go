package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"eventbooking/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	bookingRepo    domain.BookingRepository
	availability   domain.AvailabilityCalculator
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	bookingRepo domain.BookingRepository,
	availability domain.AvailabilityCalculator,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		bookingRepo:    bookingRepo,
		availability:   availability,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return domain.InvalidInputf("event owner is required")
	}
	event.Title = strings.TrimSpace(event.Title)
	event.Location = strings.TrimSpace(event.Location)
	if event.Title == "" {
		return domain.InvalidInputf("title is required")
	}
	if event.Location == "" {
		return domain.InvalidInputf("location is required")
	}
	if event.Date.IsZero() {
		return domain.InvalidInputf("date is required")
	}
	if event.Capacity < 0 {
		return domain.InvalidInputf("capacity must be zero or greater")
	}

	now := time.Now().UTC()
	event.Slug = slug.Make(event.Title)
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return storageErr("create event", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("get event", err)
	}
	return event, nil
}

func (s *eventService) GetEventWithAvailability(ctx context.Context, id string) (*domain.EventWithAvailability, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	av, err := s.availability.Compute(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.EventWithAvailability{
		Event:       event,
		TotalBooked: av.TotalBooked,
		SeatsLeft:   av.SeatsLeft,
		SoldOut:     av.SoldOut,
	}, nil
}

func (s *eventService) ListPublishedEvents(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.ListPublished(ctx, p)
	if err != nil {
		return nil, 0, storageErr("list published events", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) ListAllEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, storageErr("list events", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// UpdateEvent applies a partial update. Capacity may drop below the booked total;
// availability then reports zero seats left.
func (s *eventService) UpdateEvent(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if u.Empty() {
		return nil, domain.InvalidInputf("no fields to update")
	}
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		if t == "" {
			return nil, domain.InvalidInputf("title cannot be empty")
		}
		sl := slug.Make(t)
		u.Title, u.Slug = &t, &sl
	}
	if u.Location != nil {
		l := strings.TrimSpace(*u.Location)
		if l == "" {
			return nil, domain.InvalidInputf("location cannot be empty")
		}
		u.Location = &l
	}
	if u.Capacity != nil && *u.Capacity < 0 {
		return nil, domain.InvalidInputf("capacity must be zero or greater")
	}

	event, err := s.eventRepo.Update(ctx, id, u)
	if err != nil {
		return nil, storageErr("update event", err)
	}
	return event, nil
}

// DeleteEvent removes an event that has no bookings. The check runs under the
// same lock as admission.
func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	err := s.bookingRepo.WithEventLock(ctx, id, func(ctx context.Context, l domain.SeatLedger) error {
		total, err := l.TotalBooked(ctx)
		if err != nil {
			return err
		}
		if total > 0 {
			return fmt.Errorf("%w: event has %d booked seats", domain.ErrConflict, total)
		}
		return l.RemoveEvent(ctx)
	})
	if err != nil {
		return storageErr("delete event", err)
	}
	return nil
}
