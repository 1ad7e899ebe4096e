package attendees

import (
	"context"
	"time"

	"github.com/eventhive/event-registration/events"
	"github.com/google/uuid"
)

type Attendee struct {
	ID           uuid.UUID
	Version      int
	EventID      uuid.UUID
	Email        string
	RegisteredAt time.Time
	Answers      []Answer
	CheckInHash  *string
	CheckedIn    bool
	CheckedInAt  *time.Time
}

type Answer struct {
	QuestionID uuid.UUID
	AnswerText string
}

type GetAllAttendeesResponse struct {
	Data        []Attendee
	Cursor      *string
	HasNextPage bool
}

type Repository interface {
	// CreateAttendee stores the attendee and the updated event in one
	// transaction. The write is conditional on no attendee existing for the
	// same (event, email) pair.
	CreateAttendee(ctx context.Context, attendee Attendee, event events.Event) error
	GetAttendee(ctx context.Context, eventId uuid.UUID, email string) (Attendee, error)
	GetAttendeeByHash(ctx context.Context, hash string) (Attendee, error)
	SetCheckInHash(ctx context.Context, eventId uuid.UUID, email string, hash string) error
	// MarkCheckedIn stores the checked-in attendee and the updated event in
	// one transaction, so the event's check-in counter moves with the flag.
	MarkCheckedIn(ctx context.Context, attendee Attendee, event events.Event) error
	GetAllAttendeesForEvent(ctx context.Context, eventId uuid.UUID, limit int32, cursor *string) (GetAllAttendeesResponse, error)
}
