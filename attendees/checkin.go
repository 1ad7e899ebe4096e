package attendees

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/eventhive/event-registration/events"
	"github.com/google/uuid"
)

// CheckInHash derives the scannable token for an attendee. It is a pure
// function of fields that never change after registration, so reissuing the
// same attendee's code always yields the same hash.
func CheckInHash(eventId uuid.UUID, email string, attendeeId uuid.UUID) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s-%s-%s", eventId, email, attendeeId))
	return hex.EncodeToString(sum[:])
}

// IssueCheckInHash computes and stores the check-in hash for a registered
// attendee. Safe to call repeatedly; the stored value never changes.
func IssueCheckInHash(ctx context.Context, eventRepo events.Repository, attendeeRepo Repository, eventId uuid.UUID, email string) (string, error) {
	err := checkEventExists(ctx, eventRepo, eventId)
	if err != nil {
		return "", err
	}

	attendee, err := attendeeRepo.GetAttendee(ctx, eventId, email)
	if err != nil {
		var attendeeErr *Error
		if errors.As(err, &attendeeErr) && attendeeErr.Reason == REASON_ATTENDEE_DOES_NOT_EXIST {
			return "", err
		}
		return "", NewFailedToFetchError(fmt.Sprintf("Failed to look up attendee %q for event %q", email, eventId), err)
	}

	hash := CheckInHash(attendee.EventID, attendee.Email, attendee.ID)

	err = attendeeRepo.SetCheckInHash(ctx, attendee.EventID, attendee.Email, hash)
	if err != nil {
		return "", err
	}

	return hash, nil
}

// ConfirmVisit marks the attendee holding the scanned hash as checked in and
// bumps the event's check-in counter. Scanning the same hash twice
// re-confirms without another write.
func ConfirmVisit(ctx context.Context, eventRepo events.Repository, attendeeRepo Repository, eventId uuid.UUID, hash string, at time.Time) (Attendee, error) {
	event, err := eventRepo.GetEvent(ctx, eventId)
	if err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) && eventErr.Reason == events.REASON_EVENT_DOES_NOT_EXIST {
			return Attendee{}, NewAssociatedEventDoesNotExistError(fmt.Sprintf("Event does not exist with ID %q", eventId), err)
		}
		return Attendee{}, NewFailedToFetchError(fmt.Sprintf("Failed to fetch event with ID %q", eventId), err)
	}

	attendee, err := attendeeRepo.GetAttendeeByHash(ctx, hash)
	if err != nil {
		var attendeeErr *Error
		if errors.As(err, &attendeeErr) && attendeeErr.Reason == REASON_ATTENDEE_DOES_NOT_EXIST {
			return Attendee{}, err
		}
		return Attendee{}, NewFailedToFetchError("Failed to look up attendee by check-in hash", err)
	}

	// A hash issued for another event is not valid at this one's door.
	if attendee.EventID != eventId {
		return Attendee{}, NewAttendeeDoesNotExistError(fmt.Sprintf("Check-in hash does not belong to event %q", eventId), nil)
	}

	if attendee.CheckedIn {
		return attendee, nil
	}

	attendee.CheckedIn = true
	attendee.CheckedInAt = &at

	event.Version++
	event.NumCheckedIn++

	err = attendeeRepo.MarkCheckedIn(ctx, attendee, event)
	if err != nil {
		return Attendee{}, err
	}

	return attendee, nil
}

func checkEventExists(ctx context.Context, eventRepo events.Repository, eventId uuid.UUID) error {
	_, err := eventRepo.GetEvent(ctx, eventId)
	if err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) && eventErr.Reason == events.REASON_EVENT_DOES_NOT_EXIST {
			return NewAssociatedEventDoesNotExistError(fmt.Sprintf("Event does not exist with ID %q", eventId), err)
		}
		return NewFailedToFetchError(fmt.Sprintf("Failed to fetch event with ID %q", eventId), err)
	}
	return nil
}
