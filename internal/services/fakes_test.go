package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"eventbooking/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID    map[string]*domain.Event
	nextID  int
	err     error // if set, every call returns this error
	gets    int
	updated domain.EventUpdate
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) add(capacity int) *domain.Event {
	e := &domain.Event{Title: "Concert", Location: "Hall", Capacity: capacity, Date: time.Now().Add(time.Hour)}
	_ = f.Create(context.Background(), e)
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListPublished(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if e.IsPublished {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) ListAll(ctx context.Context) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Event
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	f.updated = u
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Slug != nil {
		e.Slug = *u.Slug
	}
	if u.Capacity != nil {
		e.Capacity = *u.Capacity
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.IsPublished != nil {
		e.IsPublished = *u.IsPublished
	}
	return e, nil
}

// fakeBookingRepo is a BookingRepository over a slice. WithEventLock serializes
// all events on one mutex, which is enough for unit tests.
type fakeBookingRepo struct {
	mu       sync.Mutex
	events   *fakeEventRepo
	bookings []*domain.Booking
	nextID   int
	err      error // returned by every call when set
	lockErr  error // returned by WithEventLock before fn runs
	removed  []string
	locked   int
}

func newFakeBookingRepo(events *fakeEventRepo) *fakeBookingRepo {
	return &fakeBookingRepo{events: events, nextID: 1}
}

type fakeLedger struct {
	repo    *fakeBookingRepo
	event   *domain.Event
	pending []*domain.Booking
	removed bool
	sumErr  error
}

func (l *fakeLedger) Event() *domain.Event { return l.event }

func (l *fakeLedger) TotalBooked(ctx context.Context) (int, error) {
	if l.sumErr != nil {
		return 0, l.sumErr
	}
	total := l.repo.sum(l.event.ID)
	for _, b := range l.pending {
		total += b.Seats
	}
	return total, nil
}

func (l *fakeLedger) Append(ctx context.Context, b *domain.Booking) error {
	b.ID = fmt.Sprintf("bk-%d", l.repo.nextID)
	l.repo.nextID++
	l.pending = append(l.pending, b)
	return nil
}

func (l *fakeLedger) RemoveEvent(ctx context.Context) error {
	l.removed = true
	return nil
}

func (f *fakeBookingRepo) WithEventLock(ctx context.Context, eventID string, fn func(context.Context, domain.SeatLedger) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked++
	if f.lockErr != nil {
		return f.lockErr
	}
	e, ok := f.events.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	l := &fakeLedger{repo: f, event: e, sumErr: f.err}
	if err := fn(ctx, l); err != nil {
		return err
	}
	f.bookings = append(f.bookings, l.pending...)
	if l.removed {
		delete(f.events.byID, eventID)
		f.removed = append(f.removed, eventID)
	}
	return nil
}

func (f *fakeBookingRepo) sum(eventID string) int {
	total := 0
	for _, b := range f.bookings {
		if b.EventID == eventID {
			total += b.Seats
		}
	}
	return total
}

func (f *fakeBookingRepo) SumSeatsByEventID(ctx context.Context, eventID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.sum(eventID), nil
}

func (f *fakeBookingRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.BookingWithEvent
	for i := len(f.bookings) - 1; i >= 0; i-- {
		if b := f.bookings[i]; b.UserID == userID {
			out = append(out, &domain.BookingWithEvent{Booking: b, Event: f.events.byID[b.EventID]})
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.BookingWithUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.BookingWithUser
	for _, b := range f.bookings {
		if b.EventID == eventID {
			out = append(out, &domain.BookingWithUser{Booking: b, User: &domain.UserSummary{ID: b.UserID}})
		}
	}
	return out, nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	assigned  map[string][]string
	createErr error
	getErr    error
	nextID    int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:     make(map[string]*domain.User),
		byEmail:  make(map[string]*domain.User),
		assigned: make(map[string][]string),
		nextID:   1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	if _, ok := f.byID[userID]; !ok {
		return domain.ErrNotFound
	}
	f.assigned[userID] = append(f.assigned[userID], roleID)
	return nil
}

// fakeRoleRepo implements domain.RoleRepository for tests.
type fakeRoleRepo struct {
	byCode map[string]*domain.Role
	users  *fakeUserRepo
	getErr error
}

func newFakeRoleRepo(users *fakeUserRepo) *fakeRoleRepo {
	return &fakeRoleRepo{
		byCode: map[string]*domain.Role{
			domain.RoleUser:  {ID: "role-user", Code: domain.RoleUser},
			domain.RoleAdmin: {ID: "role-admin", Code: domain.RoleAdmin},
		},
		users: users,
	}
}

func (f *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if r, ok := f.byCode[code]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) CodesByUserID(ctx context.Context, userID string) ([]string, error) {
	var out []string
	for _, id := range f.users.assigned[userID] {
		for code, r := range f.byCode {
			if r.ID == id {
				out = append(out, code)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	saltErr error
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) {
	if f.saltErr != nil {
		return "", f.saltErr
	}
	return "salt", nil
}

func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + password, nil
}

func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err       error
	lastRoles []string
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastRoles = roles
	return "token-" + userID, nil
}

// fakeEmailService records what would have been sent.
type fakeEmailService struct {
	err       error
	welcomes  []*domain.WelcomeEmailData
	confirmed []*domain.BookingConfirmedEmailData
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	f.welcomes = append(f.welcomes, data)
	return f.err
}

func (f *fakeEmailService) SendBookingConfirmed(ctx context.Context, data *domain.BookingConfirmedEmailData) error {
	f.confirmed = append(f.confirmed, data)
	return f.err
}

// fakePublisher records published messages.
type fakePublisher struct {
	mu       sync.Mutex
	err      error
	messages []*domain.BookingConfirmed
	ctxErr   error
}

func (f *fakePublisher) PublishBookingConfirmed(ctx context.Context, msg *domain.BookingConfirmed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxErr = ctx.Err()
	f.messages = append(f.messages, msg)
	return f.err
}
