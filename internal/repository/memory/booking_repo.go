package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"eventbooking/internal/domain"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

type bookingRepository struct {
	s *Store
}

// NewBookingRepository returns a BookingRepository backed by the store.
func NewBookingRepository(s *Store) domain.BookingRepository {
	return &bookingRepository{s: s}
}

// ledger buffers writes made under an event lock until fn returns without error.
type ledger struct {
	s       *Store
	event   *domain.Event
	pending []*domain.Booking
	removed bool
}

func (l *ledger) Event() *domain.Event { return l.event }

func (l *ledger) TotalBooked(ctx context.Context) (int, error) {
	total := l.s.sumSeats(l.event.ID)
	for _, b := range l.pending {
		total += b.Seats
	}
	return total, nil
}

func (l *ledger) Append(ctx context.Context, b *domain.Booking) error {
	if b.EventID != l.event.ID {
		return domain.InvalidInputf("booking for event %s appended to ledger of %s", b.EventID, l.event.ID)
	}
	if b.Seats < 1 {
		return domain.InvalidInputf("seats must be at least 1")
	}
	l.s.mu.RLock()
	_, ok := l.s.users[b.UserID]
	l.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	b.ID = uuid.NewString()
	cp := *b
	l.pending = append(l.pending, &cp)
	return nil
}

func (l *ledger) RemoveEvent(ctx context.Context) error {
	l.removed = true
	return nil
}

func (r *bookingRepository) WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, l domain.SeatLedger) error) error {
	unlock, err := r.s.eventLocks.lock(ctx, eventID)
	if err != nil {
		return err
	}
	defer unlock()

	r.s.mu.RLock()
	e, ok := r.s.events[eventID]
	if ok {
		e = copyEvent(e)
	}
	r.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}

	l := &ledger{s: r.s, event: e}
	if err := fn(ctx, l); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings = append(r.s.bookings, l.pending...)
	if l.removed {
		delete(r.s.events, eventID)
	}
	return nil
}

func (r *bookingRepository) SumSeatsByEventID(ctx context.Context, eventID string) (int, error) {
	return r.s.sumSeats(eventID), nil
}

func (s *Store) sumSeats(eventID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, b := range s.bookings {
		if b.EventID == eventID {
			total += b.Seats
		}
	}
	return total
}

// ListByUserID returns the user's bookings, newest first.
func (r *bookingRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.BookingWithEvent{}
	for i := len(r.s.bookings) - 1; i >= 0; i-- {
		b := r.s.bookings[i]
		if b.UserID != userID {
			continue
		}
		e, ok := r.s.events[b.EventID]
		if !ok {
			continue
		}
		cp := *b
		out = append(out, &domain.BookingWithEvent{Booking: &cp, Event: copyEvent(e)})
	}
	return out, nil
}

// ListByEventID returns the event's bookings in admission order.
func (r *bookingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.BookingWithUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.BookingWithUser{}
	for _, b := range r.s.bookings {
		if b.EventID != eventID {
			continue
		}
		u, ok := r.s.users[b.UserID]
		if !ok {
			continue
		}
		cp := *b
		out = append(out, &domain.BookingWithUser{Booking: &cp, User: u.Summary()})
	}
	return out, nil
}
