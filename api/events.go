package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eventhive/event-registration/events"
	"github.com/eventhive/event-registration/slices"
	"github.com/google/uuid"
)

type Event struct {
	Id                  *uuid.UUID    `json:"id,omitempty"`
	Title               string        `json:"title"`
	Description         string        `json:"description,omitempty"`
	ShortDescription    string        `json:"shortDescription,omitempty"`
	EventDate           *time.Time    `json:"eventDate,omitempty"`
	RegistrationEndDate *time.Time    `json:"registrationEndDate,omitempty"`
	Questions           []Question    `json:"questions"`
	CustomFields        []CustomField `json:"customFields"`
	SignUpStats         *SignUpStats  `json:"signUpStats,omitempty"`
}

type Question struct {
	Id           *uuid.UUID `json:"id,omitempty"`
	QuestionText string     `json:"questionText"`
	Type         string     `json:"type"`
	IsRequired   bool       `json:"isRequired"`
	Attributes   *string    `json:"attributes,omitempty"`
}

type CustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type SignUpStats struct {
	NumAttendees int `json:"numAttendees"`
	NumCheckedIn int `json:"numCheckedIn"`
}

type GetEventsResponse struct {
	Data        []Event `json:"data"`
	Cursor      *string `json:"cursor,omitempty"`
	HasNextPage bool    `json:"hasNextPage"`
}

func (a *API) getOpenEvents(w http.ResponseWriter, r *http.Request) {
	logger := getLoggerFromCtx(r.Context())

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

	result, err := a.db.GetOpenEvents(r.Context(), a.now(), int32(limit), cursor)
	if err != nil {
		logger.Error("Failed to get events from the DB", "error", err)

		var eventErr *events.Error
		if errors.As(err, &eventErr) && eventErr.Reason == events.REASON_INVALID_CURSOR {
			a.writeError(w, http.StatusBadRequest, InvalidCursor, "Passed in cursor is invalid")
			return
		}
		a.writeInternalError(w)
		return
	}

	a.writeJSON(w, http.StatusOK, GetEventsResponse{
		Data: slices.Map(result.Data, func(v events.Event) Event {
			return eventToApiEvent(v)
		}),
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}

type writeEventRequest struct {
	Title               string        `json:"title" validate:"required"`
	Description         string        `json:"description"`
	ShortDescription    string        `json:"shortDescription"`
	EventDate           *time.Time    `json:"eventDate"`
	RegistrationEndDate *time.Time    `json:"registrationEndDate"`
	Questions           []Question    `json:"questions" validate:"dive"`
	CustomFields        []CustomField `json:"customFields"`
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	logger := getLoggerFromCtx(r.Context())

	var body writeEventRequest
	if !a.decodeBody(w, r, &body) {
		return
	}

	event, err := events.CreateEvent(r.Context(), a.db, apiEventToEvent(body))
	if err != nil {
		logger.Error("Failed to create an event", "error", err)
		a.writeInternalError(w)
		return
	}

	a.writeJSON(w, http.StatusOK, eventToApiEvent(event))
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
	logger := getLoggerFromCtx(r.Context())

	id, ok := a.eventIdFromPath(w, r)
	if !ok {
		return
	}

	event, err := a.db.GetEvent(r.Context(), id)
	if err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) && eventErr.Reason == events.REASON_EVENT_DOES_NOT_EXIST {
			a.writeError(w, http.StatusNotFound, NotFound, "Event does not exist")
			return
		}

		logger.Error("Failed to fetch an event", "error", err)
		a.writeInternalError(w)
		return
	}

	a.writeJSON(w, http.StatusOK, eventToApiEvent(event))
}

func (a *API) updateEvent(w http.ResponseWriter, r *http.Request) {
	logger := getLoggerFromCtx(r.Context())

	id, ok := a.eventIdFromPath(w, r)
	if !ok {
		return
	}

	var body writeEventRequest
	if !a.decodeBody(w, r, &body) {
		return
	}

	event, err := events.UpdateEvent(r.Context(), a.db, id, apiEventToEvent(body))
	if err != nil {
		var eventErr *events.Error
		if errors.As(err, &eventErr) && eventErr.Reason == events.REASON_EVENT_DOES_NOT_EXIST {
			a.writeError(w, http.StatusNotFound, NotFound, "Event does not exist")
			return
		}

		logger.Error("Failed to update an event", "error", err)
		a.writeInternalError(w)
		return
	}

	a.writeJSON(w, http.StatusOK, eventToApiEvent(event))
}

func (a *API) eventIdFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("eventId"))
	if err != nil {
		a.writeError(w, http.StatusNotFound, NotFound, "Event does not exist")
		return uuid.Nil, false
	}
	return id, true
}

func eventToApiEvent(event events.Event) Event {
	return Event{
		Id:                  &event.ID,
		Title:               event.Title,
		Description:         event.Description,
		ShortDescription:    event.ShortDescription,
		EventDate:           event.EventDate,
		RegistrationEndDate: event.RegistrationCloseTime,
		Questions: slices.Map(event.Questions, func(q events.Question) Question {
			return questionToApiQuestion(q)
		}),
		CustomFields: slices.Map(event.CustomFields, func(f events.CustomField) CustomField {
			return CustomField{Name: f.Name, Value: f.Value}
		}),
		SignUpStats: &SignUpStats{
			NumAttendees: event.NumAttendees,
			NumCheckedIn: event.NumCheckedIn,
		},
	}
}

func apiEventToEvent(body writeEventRequest) events.Event {
	return events.Event{
		Title:                 body.Title,
		Description:           body.Description,
		ShortDescription:      body.ShortDescription,
		EventDate:             body.EventDate,
		RegistrationCloseTime: body.RegistrationEndDate,
		Questions: slices.Map(body.Questions, func(q Question) events.Question {
			return apiQuestionToQuestion(q)
		}),
		CustomFields: slices.Map(body.CustomFields, func(f CustomField) events.CustomField {
			return events.CustomField{Name: f.Name, Value: f.Value}
		}),
	}
}

func questionToApiQuestion(q events.Question) Question {
	return Question{
		Id:           &q.ID,
		QuestionText: q.Text,
		Type:         string(q.Type),
		IsRequired:   q.Required,
		Attributes:   q.Attributes,
	}
}

func apiQuestionToQuestion(q Question) events.Question {
	id := uuid.New()
	if q.Id != nil {
		id = *q.Id
	}

	qType := events.QuestionType(q.Type)
	if q.Type == "" {
		qType = events.FREE_TEXT
	}

	return events.Question{
		ID:         id,
		Text:       q.QuestionText,
		Type:       qType,
		Required:   q.IsRequired,
		Attributes: q.Attributes,
	}
}
