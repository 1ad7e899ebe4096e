package attendees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventhive/event-registration/events"
	"github.com/google/uuid"
)

// RegistrationRequest is a candidate registration before any eligibility
// check has run. RegisteredAt is supplied by the caller so that deadline
// comparisons never read the wall clock.
type RegistrationRequest struct {
	EventID      uuid.UUID
	Email        string
	Answers      []Answer
	RegisteredAt time.Time
}

// AttemptRegistration runs the admission checks in order, short-circuiting on
// the first failure, and persists the attendee only when every check passes.
// Steps before the final create perform no writes, so a rejected registration
// leaves nothing behind.
func AttemptRegistration(ctx context.Context, req RegistrationRequest, eventRepo events.Repository, attendeeRepo Repository) (Attendee, error) {
	event, err := eventRepo.GetEvent(ctx, req.EventID)
	if err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) && eventErr.Reason == events.REASON_EVENT_DOES_NOT_EXIST {
			return Attendee{}, NewAssociatedEventDoesNotExistError(fmt.Sprintf("Event does not exist with ID %q", req.EventID), err)
		}

		return Attendee{}, NewFailedToFetchError(fmt.Sprintf("Failed to fetch event with ID %q", req.EventID), err)
	}

	if !event.RegistrationOpenAt(req.RegisteredAt) {
		return Attendee{}, NewRegistrationClosedError(*event.RegistrationCloseTime)
	}

	// Friendly early rejection; the create below is conditional on the same
	// (event, email) pair so a race between two registrations still resolves
	// to ATTENDEE_ALREADY_EXISTS.
	_, err = attendeeRepo.GetAttendee(ctx, req.EventID, req.Email)
	if err == nil {
		return Attendee{}, NewAttendeeAlreadyExistsError(fmt.Sprintf("Attendee %q is already registered for event %q", req.Email, req.EventID), nil)
	}
	var attendeeErr *Error
	if !errors.As(err, &attendeeErr) || attendeeErr.Reason != REASON_ATTENDEE_DOES_NOT_EXIST {
		return Attendee{}, NewFailedToFetchError(fmt.Sprintf("Failed to look up attendee %q for event %q", req.Email, req.EventID), err)
	}

	if missing := unansweredRequiredQuestions(event, req.Answers); len(missing) > 0 {
		return Attendee{}, NewMissingRequiredAnswersError(missing)
	}

	attendee := Attendee{
		ID:           uuid.New(),
		Version:      1,
		EventID:      event.ID,
		Email:        req.Email,
		RegisteredAt: req.RegisteredAt,
		Answers:      req.Answers,
	}

	event.Version++
	event.NumAttendees++

	err = attendeeRepo.CreateAttendee(ctx, attendee, event)
	if err != nil {
		return Attendee{}, err
	}

	return attendee, nil
}

// Answers to unknown or optional questions are accepted as-is; only required
// questions are checked, and only for presence.
func unansweredRequiredQuestions(event events.Event, answers []Answer) []uuid.UUID {
	answered := make(map[uuid.UUID]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}

	var missing []uuid.UUID
	for _, q := range event.RequiredQuestions() {
		if !answered[q.ID] {
			missing = append(missing, q.ID)
		}
	}
	return missing
}
