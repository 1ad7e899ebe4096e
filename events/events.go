package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID                    uuid.UUID
	Version               int
	Title                 string
	Description           string
	ShortDescription      string
	EventDate             *time.Time
	RegistrationCloseTime *time.Time
	Questions             []Question
	CustomFields          []CustomField
	NumAttendees          int
	NumCheckedIn          int
}

// RegistrationOpenAt reports whether new attendees are admitted at the given
// time. A nil RegistrationCloseTime means registration never closes.
func (e Event) RegistrationOpenAt(t time.Time) bool {
	return e.RegistrationCloseTime == nil || !t.After(*e.RegistrationCloseTime)
}

// RequiredQuestions returns the questions an attendee must answer.
func (e Event) RequiredQuestions() []Question {
	var required []Question
	for _, q := range e.Questions {
		if q.Required {
			required = append(required, q)
		}
	}
	return required
}

type CustomField struct {
	Name  string
	Value string
}

type GetOpenEventsResponse struct {
	Data        []Event
	Cursor      *string
	HasNextPage bool
}

type Repository interface {
	GetEvent(ctx context.Context, id uuid.UUID) (Event, error)
	GetOpenEvents(ctx context.Context, now time.Time, limit int32, cursor *string) (GetOpenEventsResponse, error)
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
}

// CreateEvent assigns a fresh ID and stores the event with zeroed attendee
// counters.
func CreateEvent(ctx context.Context, repo Repository, event Event) (Event, error) {
	event.ID = uuid.New()
	event.Version = 1
	event.NumAttendees = 0
	event.NumCheckedIn = 0

	err := repo.CreateEvent(ctx, event)
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

// UpdateEvent replaces the organizer-editable details of an existing event.
// Questions and custom fields are replaced wholesale; attendee counters are
// carried over from the stored event.
func UpdateEvent(ctx context.Context, repo Repository, id uuid.UUID, updated Event) (Event, error) {
	existing, err := repo.GetEvent(ctx, id)
	if err != nil {
		var eventErr *Error
		if errors.As(err, &eventErr) && eventErr.Reason == REASON_EVENT_DOES_NOT_EXIST {
			return Event{}, err
		}
		return Event{}, NewFailedToFetchError(fmt.Sprintf("Failed to fetch event with ID %q", id), err)
	}

	updated.ID = existing.ID
	updated.Version = existing.Version + 1
	updated.NumAttendees = existing.NumAttendees
	updated.NumCheckedIn = existing.NumCheckedIn

	err = repo.UpdateEvent(ctx, updated)
	if err != nil {
		return Event{}, err
	}

	return updated, nil
}
