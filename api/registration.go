package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eventhive/event-registration/attendees"
	"github.com/eventhive/event-registration/slices"
	"github.com/google/uuid"
)

type Attendee struct {
	Id           uuid.UUID  `json:"id"`
	EventId      uuid.UUID  `json:"eventId"`
	Email        string     `json:"email"`
	RegisteredAt time.Time  `json:"registeredAt"`
	Answers      []Answer   `json:"answers"`
	CheckedIn    bool       `json:"checkedIn"`
	CheckedInAt  *time.Time `json:"checkedInAt,omitempty"`
}

type Answer struct {
	QuestionId uuid.UUID `json:"questionId"`
	AnswerText string    `json:"answerText"`
}

type registerAttendeeRequest struct {
	Email   string   `json:"email" validate:"required,email"`
	Answers []Answer `json:"answers"`
}

type GetAttendeesResponse struct {
	Data        []Attendee `json:"data"`
	Cursor      *string    `json:"cursor,omitempty"`
	HasNextPage bool       `json:"hasNextPage"`
}

func (a *API) registerAttendee(w http.ResponseWriter, r *http.Request) {
	logger := getLoggerFromCtx(r.Context())

	eventId, ok := a.eventIdFromPath(w, r)
	if !ok {
		return
	}

	var body registerAttendeeRequest
	if !a.decodeBody(w, r, &body) {
		return
	}

	req := attendees.RegistrationRequest{
		EventID: eventId,
		Email:   body.Email,
		Answers: slices.Map(body.Answers, func(ans Answer) attendees.Answer {
			return attendees.Answer{QuestionID: ans.QuestionId, AnswerText: ans.AnswerText}
		}),
		RegisteredAt: a.now(),
	}

	attendee, err := attendees.AttemptRegistration(r.Context(), req, a.db, a.db)
	if err != nil {
		var attendeeErr *attendees.Error
		if errors.As(err, &attendeeErr) {
			switch attendeeErr.Reason {
			case attendees.REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST:
				a.metrics.RegistrationAttempts.WithLabelValues("event_not_found").Inc()
				a.writeError(w, http.StatusNotFound, NotFound, "Event to register with was not found")
				return
			case attendees.REASON_REGISTRATION_CLOSED:
				a.metrics.RegistrationAttempts.WithLabelValues("closed").Inc()
				a.writeError(w, http.StatusBadRequest, RegistrationExceeded, "Registration is not possible anymore, the deadline has passed")
				return
			case attendees.REASON_ATTENDEE_ALREADY_EXISTS:
				a.metrics.RegistrationAttempts.WithLabelValues("duplicate").Inc()
				a.writeError(w, http.StatusConflict, AlreadyRegistered, "You are already registered for this event")
				return
			case attendees.REASON_MISSING_REQUIRED_ANSWERS:
				a.metrics.RegistrationAttempts.WithLabelValues("missing_answers").Inc()
				a.writeError(w, http.StatusBadRequest, MissingRequiredAnswers, "Please answer all required questions")
				return
			}
		}

		logger.Error("Error trying to register", "error", err)
		a.metrics.RegistrationAttempts.WithLabelValues("error").Inc()
		a.writeInternalError(w)
		return
	}

	a.metrics.RegistrationAttempts.WithLabelValues("success").Inc()
	a.writeJSON(w, http.StatusOK, attendeeToApiAttendee(attendee))
}

func (a *API) getAttendees(w http.ResponseWriter, r *http.Request) {
	logger := getLoggerFromCtx(r.Context())

	eventId, ok := a.eventIdFromPath(w, r)
	if !ok {
		return
	}

	limit := 10
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		userLimit, err := strconv.Atoi(rawLimit)
		if err != nil || userLimit < 1 || userLimit > 50 {
			a.writeError(w, http.StatusBadRequest, LimitOutOfBounds, "Limit must be between 1 and 50")
			return
		}
		limit = userLimit
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	result, err := a.db.GetAllAttendeesForEvent(r.Context(), eventId, int32(limit), cursor)
	if err != nil {
		logger.Error("Failed to get attendees for event", "error", err, "eventId", eventId)

		var attendeeErr *attendees.Error
		if errors.As(err, &attendeeErr) && attendeeErr.Reason == attendees.REASON_INVALID_CURSOR {
			a.writeError(w, http.StatusBadRequest, InvalidCursor, "Cursor is invalid")
			return
		}
		a.writeInternalError(w)
		return
	}

	a.writeJSON(w, http.StatusOK, GetAttendeesResponse{
		Data: slices.Map(result.Data, func(v attendees.Attendee) Attendee {
			return attendeeToApiAttendee(v)
		}),
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}

func attendeeToApiAttendee(attendee attendees.Attendee) Attendee {
	return Attendee{
		Id:           attendee.ID,
		EventId:      attendee.EventID,
		Email:        attendee.Email,
		RegisteredAt: attendee.RegisteredAt,
		Answers: slices.Map(attendee.Answers, func(ans attendees.Answer) Answer {
			return Answer{QuestionId: ans.QuestionID, AnswerText: ans.AnswerText}
		}),
		CheckedIn:   attendee.CheckedIn,
		CheckedInAt: attendee.CheckedInAt,
	}
}
