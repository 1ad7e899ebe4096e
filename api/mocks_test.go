package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/eventhive/event-registration/attendees"
	"github.com/eventhive/event-registration/events"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var noopLogger = slog.New(slog.DiscardHandler)

var testClock = func() time.Time {
	return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

const testAPIKey = "test-api-key"

func newTestAPI(db DB) *API {
	return NewAPI(db, noopLogger, Config{
		Env:    LOCAL,
		APIKey: testAPIKey,
		Now:    testClock,
	}, prometheus.NewRegistry())
}

var _ DB = &mockDB{}

type mockDB struct {
	GetEventFunc                func(ctx context.Context, id uuid.UUID) (events.Event, error)
	GetOpenEventsFunc           func(ctx context.Context, now time.Time, limit int32, cursor *string) (events.GetOpenEventsResponse, error)
	CreateEventFunc             func(ctx context.Context, event events.Event) error
	UpdateEventFunc             func(ctx context.Context, event events.Event) error
	CreateAttendeeFunc          func(ctx context.Context, attendee attendees.Attendee, event events.Event) error
	GetAttendeeFunc             func(ctx context.Context, eventId uuid.UUID, email string) (attendees.Attendee, error)
	GetAttendeeByHashFunc       func(ctx context.Context, hash string) (attendees.Attendee, error)
	SetCheckInHashFunc          func(ctx context.Context, eventId uuid.UUID, email string, hash string) error
	MarkCheckedInFunc           func(ctx context.Context, attendee attendees.Attendee, event events.Event) error
	GetAllAttendeesForEventFunc func(ctx context.Context, eventId uuid.UUID, limit int32, cursor *string) (attendees.GetAllAttendeesResponse, error)
}

func (m *mockDB) GetEvent(ctx context.Context, id uuid.UUID) (events.Event, error) {
	return m.GetEventFunc(ctx, id)
}

func (m *mockDB) GetOpenEvents(ctx context.Context, now time.Time, limit int32, cursor *string) (events.GetOpenEventsResponse, error) {
	return m.GetOpenEventsFunc(ctx, now, limit, cursor)
}

func (m *mockDB) CreateEvent(ctx context.Context, event events.Event) error {
	return m.CreateEventFunc(ctx, event)
}

func (m *mockDB) UpdateEvent(ctx context.Context, event events.Event) error {
	return m.UpdateEventFunc(ctx, event)
}

func (m *mockDB) CreateAttendee(ctx context.Context, attendee attendees.Attendee, event events.Event) error {
	if m.CreateAttendeeFunc != nil {
		return m.CreateAttendeeFunc(ctx, attendee, event)
	}
	return nil
}

func (m *mockDB) GetAttendee(ctx context.Context, eventId uuid.UUID, email string) (attendees.Attendee, error) {
	if m.GetAttendeeFunc != nil {
		return m.GetAttendeeFunc(ctx, eventId, email)
	}
	return attendees.Attendee{}, attendees.NewAttendeeDoesNotExistError("not found", nil)
}

func (m *mockDB) GetAttendeeByHash(ctx context.Context, hash string) (attendees.Attendee, error) {
	if m.GetAttendeeByHashFunc != nil {
		return m.GetAttendeeByHashFunc(ctx, hash)
	}
	return attendees.Attendee{}, attendees.NewAttendeeDoesNotExistError("not found", nil)
}

func (m *mockDB) SetCheckInHash(ctx context.Context, eventId uuid.UUID, email string, hash string) error {
	if m.SetCheckInHashFunc != nil {
		return m.SetCheckInHashFunc(ctx, eventId, email, hash)
	}
	return nil
}

func (m *mockDB) MarkCheckedIn(ctx context.Context, attendee attendees.Attendee, event events.Event) error {
	if m.MarkCheckedInFunc != nil {
		return m.MarkCheckedInFunc(ctx, attendee, event)
	}
	return nil
}

func (m *mockDB) GetAllAttendeesForEvent(ctx context.Context, eventId uuid.UUID, limit int32, cursor *string) (attendees.GetAllAttendeesResponse, error) {
	return m.GetAllAttendeesForEventFunc(ctx, eventId, limit, cursor)
}
