package api

import (
	"encoding/json"
	"net/http"
)

type ErrorCode string

// Wire codes, kept compatible with the original public API.
const (
	Unauthorized           ErrorCode = "UNAUTHORIZED"
	NotFound               ErrorCode = "NOT_FOUND"
	RegistrationExceeded   ErrorCode = "REGISTRATION_EXCEEDED"
	AlreadyRegistered      ErrorCode = "ALREADY_REGISTERED"
	MissingRequiredAnswers ErrorCode = "MISSING_REQUIRED_ANSWERS"
	NotRegistered          ErrorCode = "NOT_REGISTERED"
	EmptyBody              ErrorCode = "EMPTY_BODY"
	InvalidBody            ErrorCode = "INVALID_BODY"
	InvalidCursor          ErrorCode = "INVALID_CURSOR"
	LimitOutOfBounds       ErrorCode = "LIMIT_OUT_OF_BOUNDS"
	InternalError          ErrorCode = "INTERNAL_SERVER_ERROR"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		a.logger.Error("failed to marshal response body", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"INTERNAL_SERVER_ERROR","message":"please wait a moment and try again"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (a *API) writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	a.writeJSON(w, status, Error{Code: code, Message: message})
}

func (a *API) writeInternalError(w http.ResponseWriter) {
	a.writeError(w, http.StatusInternalServerError, InternalError, "please wait a moment and try again")
}
