package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/domain"
)

func newTestEventService() (domain.EventService, *fakeEventRepo, *fakeBookingRepo) {
	events := newFakeEventRepo()
	bookings := newFakeBookingRepo(events)
	calc := NewAvailabilityCalculator(events, bookings, time.Second)
	return NewEventService(events, bookings, calc, time.Second), events, bookings
}

func TestEventService_CreateEvent(t *testing.T) {
	svc, events, _ := newTestEventService()
	date := time.Date(2026, 12, 1, 18, 0, 0, 0, time.UTC)

	e := domain.NewEvent("  Go Conf: Berlin 2026 ", " Kino ", date, 100, nil, "owner-1", time.Time{}, time.Time{})
	require.NoError(t, svc.CreateEvent(context.Background(), e))

	assert.Equal(t, "ev-1", e.ID)
	assert.Equal(t, "Go Conf: Berlin 2026", e.Title)
	assert.Equal(t, "Kino", e.Location)
	assert.Equal(t, "go-conf-berlin-2026", e.Slug)
	assert.False(t, e.IsPublished)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Contains(t, events.byID, e.ID)
}

func TestEventService_CreateEvent_Validation(t *testing.T) {
	date := time.Now().Add(time.Hour)
	tests := []struct {
		name  string
		event *domain.Event
	}{
		{name: "missing owner", event: domain.NewEvent("t", "l", date, 1, nil, "", time.Time{}, time.Time{})},
		{name: "blank title", event: domain.NewEvent("   ", "l", date, 1, nil, "o", time.Time{}, time.Time{})},
		{name: "blank location", event: domain.NewEvent("t", "", date, 1, nil, "o", time.Time{}, time.Time{})},
		{name: "missing date", event: domain.NewEvent("t", "l", time.Time{}, 1, nil, "o", time.Time{}, time.Time{})},
		{name: "negative capacity", event: domain.NewEvent("t", "l", date, -1, nil, "o", time.Time{}, time.Time{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, events, _ := newTestEventService()
			err := svc.CreateEvent(context.Background(), tt.event)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, events.byID)
		})
	}
}

func TestEventService_CreateEvent_ZeroCapacityAllowed(t *testing.T) {
	svc, _, _ := newTestEventService()
	e := domain.NewEvent("Private", "Room", time.Now(), 0, nil, "o", time.Time{}, time.Time{})
	require.NoError(t, svc.CreateEvent(context.Background(), e))
}

func TestEventService_GetEventWithAvailability(t *testing.T) {
	svc, events, bookings := newTestEventService()
	e := events.add(10)
	bookings.bookings = append(bookings.bookings, &domain.Booking{EventID: e.ID, Seats: 4})

	got, err := svc.GetEventWithAvailability(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, 4, got.TotalBooked)
	assert.Equal(t, 6, got.SeatsLeft)
	assert.False(t, got.SoldOut)

	_, err = svc.GetEventWithAvailability(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ListEvents(t *testing.T) {
	svc, events, _ := newTestEventService()
	events.add(1).IsPublished = true
	events.add(1)

	published, total, err := svc.ListPublishedEvents(context.Background(), domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, published, 1)

	all, err := svc.ListAllEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	events.err = errors.New("db down")
	_, _, err = svc.ListPublishedEvents(context.Background(), domain.PaginationParams{})
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestEventService_UpdateEvent(t *testing.T) {
	svc, events, _ := newTestEventService()
	e := events.add(10)
	title, capacity, published := " New Title ", 2, true

	got, err := svc.UpdateEvent(context.Background(), e.ID, domain.EventUpdate{Title: &title, Capacity: &capacity, IsPublished: &published})
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
	assert.Equal(t, "new-title", got.Slug)
	assert.Equal(t, 2, got.Capacity)
	assert.True(t, got.IsPublished)
}

func TestEventService_UpdateEvent_CapacityBelowBookedClamps(t *testing.T) {
	svc, events, bookings := newTestEventService()
	e := events.add(10)
	bookings.bookings = append(bookings.bookings, &domain.Booking{EventID: e.ID, Seats: 6})
	capacity := 3

	_, err := svc.UpdateEvent(context.Background(), e.ID, domain.EventUpdate{Capacity: &capacity})
	require.NoError(t, err)
	got, err := svc.GetEventWithAvailability(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SeatsLeft)
	assert.True(t, got.SoldOut)
	assert.Len(t, bookings.bookings, 1)
}

func TestEventService_UpdateEvent_Validation(t *testing.T) {
	blank, negative := "  ", -1
	tests := []struct {
		name string
		u    domain.EventUpdate
	}{
		{name: "empty update", u: domain.EventUpdate{}},
		{name: "blank title", u: domain.EventUpdate{Title: &blank}},
		{name: "blank location", u: domain.EventUpdate{Location: &blank}},
		{name: "negative capacity", u: domain.EventUpdate{Capacity: &negative}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, events, _ := newTestEventService()
			e := events.add(1)
			_, err := svc.UpdateEvent(context.Background(), e.ID, tt.u)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	svc, _, _ := newTestEventService()
	capacity := 1
	_, err := svc.UpdateEvent(context.Background(), "missing", domain.EventUpdate{Capacity: &capacity})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_DeleteEvent(t *testing.T) {
	svc, events, bookings := newTestEventService()
	e := events.add(5)

	require.NoError(t, svc.DeleteEvent(context.Background(), e.ID))
	assert.NotContains(t, events.byID, e.ID)
	assert.Equal(t, []string{e.ID}, bookings.removed)

	require.ErrorIs(t, svc.DeleteEvent(context.Background(), e.ID), domain.ErrNotFound)
}

func TestEventService_DeleteEvent_WithBookingsConflicts(t *testing.T) {
	svc, events, bookings := newTestEventService()
	e := events.add(5)
	bookings.bookings = append(bookings.bookings, &domain.Booking{EventID: e.ID, Seats: 1})

	err := svc.DeleteEvent(context.Background(), e.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, events.byID, e.ID)
	assert.Empty(t, bookings.removed)
}
