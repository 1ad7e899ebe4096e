package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// decodeBody parses and validates a JSON request body, writing the error
// response itself when the body is unusable.
func (a *API) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	logger := getLoggerFromCtx(r.Context())

	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			a.writeError(w, http.StatusBadRequest, EmptyBody, "Must specify a JSON body in the request")
			return false
		}

		logger.Warn("Failed to decode request body", "error", err)
		a.writeError(w, http.StatusBadRequest, InvalidBody, "Invalid body")
		return false
	}

	err = a.validate.Struct(dst)
	if err != nil {
		logger.Warn("Request body failed validation", "error", err)
		a.writeError(w, http.StatusBadRequest, InvalidBody, "Invalid body: "+err.Error())
		return false
	}

	return true
}
