package domain

import (
	"context"
	"time"
)

// Booking is a claim on one or more seats of an event by one user.
// Bookings are append-only: they are never updated after creation.
// swagger:model Booking
type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Seats     int       `json:"seats"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBooking returns a new Booking. ID is typically set by the repository on create.
func NewBooking(eventID, userID string, seats int, createdAt time.Time) *Booking {
	return &Booking{
		EventID:   eventID,
		UserID:    userID,
		Seats:     seats,
		CreatedAt: createdAt,
	}
}

// BookingWithEvent bundles a booking with a snapshot of its event.
type BookingWithEvent struct {
	*Booking
	Event *Event `json:"event"`
}

// UserSummary is the public part of a user, without credential fields.
// swagger:model UserSummary
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// BookingWithUser bundles a booking with a snapshot of the user who made it.
type BookingWithUser struct {
	*Booking
	User *UserSummary `json:"user"`
}

// SeatLedger is the view of one event handed to the function passed to
// BookingRepository.WithEventLock. Everything done through it happens while the
// event is locked against other ledgers for the same id.
type SeatLedger interface {
	// Event is the event as read after the lock was taken.
	Event() *Event
	// TotalBooked sums the seats of every committed booking of the event.
	TotalBooked(ctx context.Context) (int, error)
	// Append persists a booking for the event and sets its ID.
	Append(ctx context.Context, b *Booking) error
	// RemoveEvent deletes the locked event.
	RemoveEvent(ctx context.Context) error
}

// BookingRepository defines booking storage. Only the admission path creates bookings.
type BookingRepository interface {
	// WithEventLock runs fn with exclusive access to the event's seat ledger.
	// Calls for different events never wait on each other. If fn returns an error,
	// nothing it wrote is kept. Returns ErrNotFound when the event does not exist.
	WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, l SeatLedger) error) error
	SumSeatsByEventID(ctx context.Context, eventID string) (int, error)
	ListByUserID(ctx context.Context, userID string) ([]*BookingWithEvent, error)
	ListByEventID(ctx context.Context, eventID string) ([]*BookingWithUser, error)
}

// BookingConfirmed is published after a booking commits.
type BookingConfirmed struct {
	BookingID  string    `json:"booking_id"`
	EventID    string    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	EventDate  time.Time `json:"event_date"`
	UserID     string    `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	Username   string    `json:"username,omitempty"`
	Seats      int       `json:"seats"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookingPublisher announces committed bookings to downstream consumers.
type BookingPublisher interface {
	PublishBookingConfirmed(ctx context.Context, msg *BookingConfirmed) error
}

// BookingService defines booking admission and listing.
type BookingService interface {
	// Admit validates the request, re-derives availability under the event lock
	// and persists the booking only if the seats fit.
	Admit(ctx context.Context, eventID, userID string, seats int) (*Booking, error)
	ListMine(ctx context.Context, userID string) ([]*BookingWithEvent, error)
	ListForEvent(ctx context.Context, eventID string) ([]*BookingWithUser, error)
}

// BookingConfirmedHandler reacts to a published BookingConfirmed message.
type BookingConfirmedHandler interface {
	HandleBookingConfirmed(ctx context.Context, msg *BookingConfirmed) error
}
