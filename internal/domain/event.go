package domain

import (
	"context"
	"time"
)

// Event is a schedulable activity with a fixed seat capacity.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Image       *string   `json:"image,omitempty"`
	IsPublished bool      `json:"is_published"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, location string, date time.Time, capacity int, image *string, ownerID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:     title,
		Date:      date,
		Location:  location,
		Capacity:  capacity,
		Image:     image,
		OwnerID:   ownerID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// EventUpdate carries a partial update; nil fields are left unchanged.
type EventUpdate struct {
	Title       *string
	Slug        *string
	Date        *time.Time
	Location    *string
	Capacity    *int
	Image       *string
	IsPublished *bool
}

// Empty reports whether the update changes nothing.
func (u EventUpdate) Empty() bool {
	return u.Title == nil && u.Date == nil && u.Location == nil && u.Capacity == nil && u.Image == nil && u.IsPublished == nil
}

// EventWithAvailability is an event merged with its current availability.
type EventWithAvailability struct {
	*Event
	TotalBooked int  `json:"total_booked"`
	SeatsLeft   int  `json:"seats_left"`
	SoldOut     bool `json:"sold_out"`
}

// EventRepository defines the interface for event storage.
// Deletion is not part of it: events are removed through BookingRepository.WithEventLock
// so that the "no bookings" check and the delete share the admission lock.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListPublished(ctx context.Context, p PaginationParams) ([]*Event, int, error)
	ListAll(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, id string, u EventUpdate) (*Event, error)
}

// EventService defines the event catalogue operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	GetEventWithAvailability(ctx context.Context, id string) (*EventWithAvailability, error)
	ListPublishedEvents(ctx context.Context, p PaginationParams) ([]*Event, int, error)
	ListAllEvents(ctx context.Context) ([]*Event, error)
	UpdateEvent(ctx context.Context, id string, u EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
