package attendees

import (
	"context"

	"github.com/eventhive/event-registration/events"
	"github.com/google/uuid"
)

type mockEventRepository struct {
	events.Repository
	GetEventFunc func(ctx context.Context, id uuid.UUID) (events.Event, error)
}

func (m *mockEventRepository) GetEvent(ctx context.Context, id uuid.UUID) (events.Event, error) {
	return m.GetEventFunc(ctx, id)
}

var _ Repository = &mockAttendeeRepository{}

type mockAttendeeRepository struct {
	CreateAttendeeFunc          func(ctx context.Context, attendee Attendee, event events.Event) error
	GetAttendeeFunc             func(ctx context.Context, eventId uuid.UUID, email string) (Attendee, error)
	GetAttendeeByHashFunc       func(ctx context.Context, hash string) (Attendee, error)
	SetCheckInHashFunc          func(ctx context.Context, eventId uuid.UUID, email string, hash string) error
	MarkCheckedInFunc           func(ctx context.Context, attendee Attendee, event events.Event) error
	GetAllAttendeesForEventFunc func(ctx context.Context, eventId uuid.UUID, limit int32, cursor *string) (GetAllAttendeesResponse, error)
}

func (m *mockAttendeeRepository) CreateAttendee(ctx context.Context, attendee Attendee, event events.Event) error {
	if m.CreateAttendeeFunc != nil {
		return m.CreateAttendeeFunc(ctx, attendee, event)
	}
	return nil
}

func (m *mockAttendeeRepository) GetAttendee(ctx context.Context, eventId uuid.UUID, email string) (Attendee, error) {
	if m.GetAttendeeFunc != nil {
		return m.GetAttendeeFunc(ctx, eventId, email)
	}
	return Attendee{}, NewAttendeeDoesNotExistError("not found", nil)
}

func (m *mockAttendeeRepository) GetAttendeeByHash(ctx context.Context, hash string) (Attendee, error) {
	if m.GetAttendeeByHashFunc != nil {
		return m.GetAttendeeByHashFunc(ctx, hash)
	}
	return Attendee{}, NewAttendeeDoesNotExistError("not found", nil)
}

func (m *mockAttendeeRepository) SetCheckInHash(ctx context.Context, eventId uuid.UUID, email string, hash string) error {
	if m.SetCheckInHashFunc != nil {
		return m.SetCheckInHashFunc(ctx, eventId, email, hash)
	}
	return nil
}

func (m *mockAttendeeRepository) MarkCheckedIn(ctx context.Context, attendee Attendee, event events.Event) error {
	if m.MarkCheckedInFunc != nil {
		return m.MarkCheckedInFunc(ctx, attendee, event)
	}
	return nil
}

func (m *mockAttendeeRepository) GetAllAttendeesForEvent(ctx context.Context, eventId uuid.UUID, limit int32, cursor *string) (GetAllAttendeesResponse, error) {
	if m.GetAllAttendeesForEventFunc != nil {
		return m.GetAllAttendeesForEventFunc(ctx, eventId, limit, cursor)
	}
	return GetAllAttendeesResponse{}, nil
}
