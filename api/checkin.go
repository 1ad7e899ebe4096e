package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/eventhive/event-registration/attendees"
)

type IssueCheckInHashResponse struct {
	Hash string `json:"hash"`
}

type confirmVisitRequest struct {
	Hash string `json:"hash" validate:"required"`
}

type ConfirmVisitResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *API) issueCheckInHash(w http.ResponseWriter, r *http.Request) {
	logger := getLoggerFromCtx(r.Context())

	eventId, ok := a.eventIdFromPath(w, r)
	if !ok {
		return
	}

	email, err := url.PathUnescape(r.PathValue("email"))
	if err != nil || email == "" {
		a.writeError(w, http.StatusNotFound, NotRegistered, "You are not registered for this event")
		return
	}

	hash, err := attendees.IssueCheckInHash(r.Context(), a.db, a.db, eventId, email)
	if err != nil {
		var attendeeErr *attendees.Error
		if errors.As(err, &attendeeErr) {
			switch attendeeErr.Reason {
			case attendees.REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST:
				a.writeError(w, http.StatusNotFound, NotFound, "Event does not exist")
				return
			case attendees.REASON_ATTENDEE_DOES_NOT_EXIST:
				a.writeError(w, http.StatusNotFound, NotRegistered, "You are not registered for this event")
				return
			}
		}

		logger.Error("Failed to issue check-in hash", "error", err, "eventId", eventId)
		a.writeInternalError(w)
		return
	}

	a.writeJSON(w, http.StatusOK, IssueCheckInHashResponse{Hash: hash})
}

func (a *API) confirmVisit(w http.ResponseWriter, r *http.Request) {
	logger := getLoggerFromCtx(r.Context())

	eventId, ok := a.eventIdFromPath(w, r)
	if !ok {
		return
	}

	var body confirmVisitRequest
	if !a.decodeBody(w, r, &body) {
		return
	}

	_, err := attendees.ConfirmVisit(r.Context(), a.db, a.db, eventId, body.Hash, a.now())
	if err != nil {
		var attendeeErr *attendees.Error
		if errors.As(err, &attendeeErr) {
			switch attendeeErr.Reason {
			case attendees.REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST:
				a.metrics.CheckIns.WithLabelValues("event_not_found").Inc()
				a.writeError(w, http.StatusNotFound, NotFound, "Event does not exist")
				return
			case attendees.REASON_ATTENDEE_DOES_NOT_EXIST:
				a.metrics.CheckIns.WithLabelValues("not_registered").Inc()
				a.writeError(w, http.StatusNotFound, NotRegistered, "You are not registered for this event")
				return
			}
		}

		logger.Error("Failed to confirm visit", "error", err)
		a.metrics.CheckIns.WithLabelValues("error").Inc()
		a.writeInternalError(w)
		return
	}

	a.metrics.CheckIns.WithLabelValues("success").Inc()
	a.writeJSON(w, http.StatusOK, ConfirmVisitResponse{Code: "OK", Message: "Thanks for visiting us."})
}
