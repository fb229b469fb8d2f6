package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"eventbooking/internal/domain"
)

type userRepository struct {
	s *Store
}

// NewUserRepository returns a UserRepository backed by the store.
func NewUserRepository(s *Store) domain.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.emails[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = uuid.NewString()
	r.s.users[u.ID] = copyUser(u)
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := copyUser(r.s.users[id])
	u.Roles = r.s.roleCodes(id)
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := copyUser(u)
	cp.Roles = r.s.roleCodes(id)
	return cp, nil
}

func (r *userRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	if slices.Contains(r.s.userRoles[userID], roleID) {
		return nil
	}
	r.s.userRoles[userID] = append(r.s.userRoles[userID], roleID)
	return nil
}

type roleRepository struct {
	s *Store
}

// NewRoleRepository returns a RoleRepository backed by the store.
func NewRoleRepository(s *Store) domain.RoleRepository {
	return &roleRepository{s: s}
}

func (r *roleRepository) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role, ok := r.s.roles[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *role
	return &cp, nil
}

func (r *roleRepository) CodesByUserID(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.roleCodes(userID), nil
}
