package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID = "3f1c2b7e-8a4d-4f21-9c1e-2b3d4e5f6a7b"
	testUserID  = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	registerErr  error
	loginErr     error
	lastEmail    string
	lastUsername string
}

func (f *fakeAuthService) Register(_ context.Context, email, _, username string) (*domain.User, error) {
	f.lastEmail, f.lastUsername = email, username
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &domain.User{ID: testUserID, Email: email, Username: username, Roles: []string{domain.RoleUser}}, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "signed-token", &domain.User{ID: testUserID, Email: email}, nil
}

func (f *fakeAuthService) EnsureAdmin(_ context.Context, email, _, username string) (*domain.User, error) {
	return &domain.User{ID: testUserID, Email: email, Username: username}, nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err         error
	event       *domain.Event
	withAvail   *domain.EventWithAvailability
	events      []*domain.Event
	total       int
	lastCreate  *domain.Event
	lastUpdate  domain.EventUpdate
	lastParams  domain.PaginationParams
	lastID      string
	withCalled  bool
	deleteCalls int
}

func (f *fakeEventService) CreateEvent(_ context.Context, event *domain.Event) error {
	f.lastCreate = event
	if f.err != nil {
		return f.err
	}
	event.ID = testEventID
	return nil
}

func (f *fakeEventService) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	f.lastID = id
	return f.event, f.err
}

func (f *fakeEventService) GetEventWithAvailability(_ context.Context, id string) (*domain.EventWithAvailability, error) {
	f.lastID, f.withCalled = id, true
	return f.withAvail, f.err
}

func (f *fakeEventService) ListPublishedEvents(_ context.Context, p domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastParams = p
	return f.events, f.total, f.err
}

func (f *fakeEventService) ListAllEvents(context.Context) ([]*domain.Event, error) {
	return f.events, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	f.lastID, f.lastUpdate = id, u
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(_ context.Context, id string) error {
	f.lastID = id
	f.deleteCalls++
	return f.err
}

// fakeAvailability implements domain.AvailabilityCalculator.
type fakeAvailability struct {
	result *domain.Availability
	err    error
}

func (f *fakeAvailability) Compute(_ context.Context, eventID string) (*domain.Availability, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeBookingService implements domain.BookingService.
type fakeBookingService struct {
	admitErr    error
	listErr     error
	mine        []*domain.BookingWithEvent
	roster      []*domain.BookingWithUser
	admitCalls  int
	lastEventID string
	lastUserID  string
	lastSeats   int
}

func (f *fakeBookingService) Admit(_ context.Context, eventID, userID string, seats int) (*domain.Booking, error) {
	f.admitCalls++
	f.lastEventID, f.lastUserID, f.lastSeats = eventID, userID, seats
	if f.admitErr != nil {
		return nil, f.admitErr
	}
	return &domain.Booking{ID: "b-1", EventID: eventID, UserID: userID, Seats: seats}, nil
}

func (f *fakeBookingService) ListMine(_ context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	f.lastUserID = userID
	return f.mine, f.listErr
}

func (f *fakeBookingService) ListForEvent(_ context.Context, eventID string) ([]*domain.BookingWithUser, error) {
	f.lastEventID = eventID
	return f.roster, f.listErr
}

// newRequest builds a request with an optional JSON body and path value.
func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rdr io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withUser(req *http.Request, roles ...string) *http.Request {
	return req.WithContext(middleware.SetIdentity(req.Context(), domain.Identity{UserID: testUserID, Roles: roles}))
}

// decodeEnvelope decodes the API envelope and returns it with data re-marshalled into dst when dst is non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dst any) helpers.APIResponse {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if dst != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, dst))
	}
	return helpers.APIResponse{Data: raw.Data, Error: raw.Error}
}
