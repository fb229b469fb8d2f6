// Package memory holds a process-local implementation of the repositories.
// It is meant for single-instance deployments and tests.
package memory

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"eventbooking/internal/domain"
)

// Store is the shared state behind every memory repository.
type Store struct {
	mu        sync.RWMutex
	events    map[string]*domain.Event
	bookings  []*domain.Booking
	users     map[string]*domain.User
	emails    map[string]string
	roles     map[string]*domain.Role
	userRoles map[string][]string

	eventLocks *keyLock
}

// NewStore returns an empty store seeded with the "user" and "admin" roles.
func NewStore() *Store {
	s := &Store{
		events:     make(map[string]*domain.Event),
		users:      make(map[string]*domain.User),
		emails:     make(map[string]string),
		roles:      make(map[string]*domain.Role),
		userRoles:  make(map[string][]string),
		eventLocks: newKeyLock(),
	}
	for _, code := range []string{domain.RoleUser, domain.RoleAdmin} {
		s.roles[code] = &domain.Role{ID: uuid.NewString(), Code: code}
	}
	return s
}

func copyEvent(e *domain.Event) *domain.Event {
	cp := *e
	if e.Image != nil {
		img := *e.Image
		cp.Image = &img
	}
	return &cp
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp
}

// roleCodes returns the sorted role codes of a user. Callers hold s.mu.
func (s *Store) roleCodes(userID string) []string {
	codes := []string{}
	for _, id := range s.userRoles[userID] {
		for code, role := range s.roles {
			if role.ID == id {
				codes = append(codes, code)
			}
		}
	}
	slices.Sort(codes)
	return codes
}
