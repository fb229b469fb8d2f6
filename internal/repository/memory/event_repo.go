package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"eventbooking/internal/domain"
)

type eventRepository struct {
	s *Store
}

// NewEventRepository returns an EventRepository backed by the store.
func NewEventRepository(s *Store) domain.EventRepository {
	return &eventRepository{s: s}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.OwnerID != "" {
		if _, ok := r.s.users[e.OwnerID]; !ok {
			return domain.ErrNotFound
		}
	}
	e.ID = uuid.NewString()
	r.s.events[e.ID] = copyEvent(e)
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEvent(e), nil
}

func (r *eventRepository) ListPublished(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	all := r.sorted(func(e *domain.Event) bool { return e.IsPublished })
	lo, hi := p.Window(len(all))
	return all[lo:hi], len(all), nil
}

func (r *eventRepository) ListAll(ctx context.Context) ([]*domain.Event, error) {
	return r.sorted(func(*domain.Event) bool { return true }), nil
}

// sorted returns copies of the matching events ordered by date, then id.
func (r *eventRepository) sorted(keep func(*domain.Event) bool) []*domain.Event {
	r.s.mu.RLock()
	out := make([]*domain.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		if keep(e) {
			out = append(out, copyEvent(e))
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *domain.Event) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// Update takes the event's lock so that it never interleaves with an admission.
func (r *eventRepository) Update(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	unlock, err := r.s.eventLocks.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e = copyEvent(e)
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Slug != nil {
		e.Slug = *u.Slug
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.Capacity != nil {
		e.Capacity = *u.Capacity
	}
	if u.Image != nil {
		img := *u.Image
		e.Image = &img
	}
	if u.IsPublished != nil {
		e.IsPublished = *u.IsPublished
	}
	e.UpdatedAt = nowUTC()
	r.s.events[id] = e
	return copyEvent(e), nil
}
