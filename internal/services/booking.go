package services

import (
	"context"
	"log/slog"
	"time"

	"eventbooking/internal/domain"
)

const publishTimeout = 3 * time.Second

type bookingService struct {
	eventRepo      domain.EventRepository
	bookingRepo    domain.BookingRepository
	userRepo       domain.UserRepository
	publisher      domain.BookingPublisher
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewBookingService returns the booking admission service. publisher may be nil.
func NewBookingService(eventRepo domain.EventRepository,
	bookingRepo domain.BookingRepository,
	userRepo domain.UserRepository,
	publisher domain.BookingPublisher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		eventRepo:      eventRepo,
		bookingRepo:    bookingRepo,
		userRepo:       userRepo,
		publisher:      publisher,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *bookingService) Admit(ctx context.Context, eventID, userID string, seats int) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, storageErr("get event", err)
	}
	if seats < 1 {
		return nil, domain.InvalidInputf("seats must be at least 1")
	}

	var (
		booking *domain.Booking
		event   *domain.Event
	)
	err := s.bookingRepo.WithEventLock(ctx, eventID, func(ctx context.Context, l domain.SeatLedger) error {
		total, err := l.TotalBooked(ctx)
		if err != nil {
			return err
		}
		av := domain.NewAvailability(eventID, l.Event().Capacity, total)
		if seats > av.SeatsLeft {
			return &domain.CapacityExceededError{Requested: seats, SeatsLeft: av.SeatsLeft}
		}
		b := domain.NewBooking(eventID, userID, seats, time.Now().UTC())
		if err := l.Append(ctx, b); err != nil {
			return err
		}
		booking, event = b, l.Event()
		return nil
	})
	if err != nil {
		return nil, storageErr("admit booking", err)
	}

	s.publishConfirmed(ctx, booking, event)
	return booking, nil
}

// publishConfirmed announces the committed booking. Failures are logged only.
func (s *bookingService) publishConfirmed(ctx context.Context, b *domain.Booking, e *domain.Event) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	msg := &domain.BookingConfirmed{
		BookingID:  b.ID,
		EventID:    e.ID,
		EventTitle: e.Title,
		EventDate:  e.Date,
		UserID:     b.UserID,
		Seats:      b.Seats,
		CreatedAt:  b.CreatedAt,
	}
	if s.userRepo != nil {
		if u, err := s.userRepo.GetByID(ctx, b.UserID); err == nil {
			msg.UserEmail = u.Email
			msg.Username = u.Username
		}
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "publish booking confirmed failed", "booking_id", b.ID, "err", err)
	}
}

func (s *bookingService) ListMine(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.bookingRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, storageErr("list user bookings", err)
	}
	if list == nil {
		list = []*domain.BookingWithEvent{}
	}
	return list, nil
}

func (s *bookingService) ListForEvent(ctx context.Context, eventID string) ([]*domain.BookingWithUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.bookingRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, storageErr("list event bookings", err)
	}
	if list == nil {
		list = []*domain.BookingWithUser{}
	}
	return list, nil
}
