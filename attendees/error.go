package attendees

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrorReason string

const (
	REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL ErrorReason = "FAILED_TO_TRANSLATE_TO_DB_MODEL"
	REASON_FAILED_TO_WRITE                 ErrorReason = "FAILED_TO_WRITE"
	REASON_ATTENDEE_DOES_NOT_EXIST         ErrorReason = "ATTENDEE_DOES_NOT_EXIST"
	REASON_ATTENDEE_ALREADY_EXISTS         ErrorReason = "ATTENDEE_ALREADY_EXISTS"
	REASON_FAILED_TO_FETCH                 ErrorReason = "FAILED_TO_FETCH"
	REASON_INVALID_CURSOR                  ErrorReason = "INVALID_CURSOR"
	REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST ErrorReason = "ASSOCIATED_EVENT_DOES_NOT_EXIST"
	REASON_REGISTRATION_CLOSED             ErrorReason = "REGISTRATION_CLOSED"
	REASON_MISSING_REQUIRED_ANSWERS        ErrorReason = "MISSING_REQUIRED_ANSWERS"
	REASON_TIMEOUT                         ErrorReason = "TIMEOUT"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newAttendeeError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newAttendeeError(REASON_FAILED_TO_WRITE, message, cause)
}

func NewFailedToTranslateToDBModelError(message string, cause error) *Error {
	return newAttendeeError(REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL, message, cause)
}

func NewAttendeeAlreadyExistsError(message string, cause error) *Error {
	return newAttendeeError(REASON_ATTENDEE_ALREADY_EXISTS, message, cause)
}

func NewAttendeeDoesNotExistError(message string, cause error) *Error {
	return newAttendeeError(REASON_ATTENDEE_DOES_NOT_EXIST, message, cause)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newAttendeeError(REASON_FAILED_TO_FETCH, message, cause)
}

func NewInvalidCursorError(message string, cause error) *Error {
	return newAttendeeError(REASON_INVALID_CURSOR, message, cause)
}

func NewAssociatedEventDoesNotExistError(message string, cause error) *Error {
	return newAttendeeError(REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST, message, cause)
}

func NewRegistrationClosedError(closedAt time.Time) *Error {
	return newAttendeeError(REASON_REGISTRATION_CLOSED, fmt.Sprintf("Registration closed at %s", closedAt), nil)
}

func NewMissingRequiredAnswersError(questionIds []uuid.UUID) *Error {
	ids := make([]string, len(questionIds))
	for i, id := range questionIds {
		ids[i] = id.String()
	}
	return newAttendeeError(REASON_MISSING_REQUIRED_ANSWERS, fmt.Sprintf("Required questions left unanswered: %s", strings.Join(ids, ", ")), nil)
}

func NewTimeoutError(message string) *Error {
	return newAttendeeError(REASON_TIMEOUT, message, nil)
}
