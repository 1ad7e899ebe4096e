package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler wires every route behind the middleware chain. All /v1 routes
// require the API key; /healthz and /metrics do not.
func (a *API) Handler() http.Handler {
	v1 := http.NewServeMux()
	v1.HandleFunc("GET /v1/events", a.getOpenEvents)
	v1.HandleFunc("POST /v1/events", a.createEvent)
	v1.HandleFunc("GET /v1/events/{eventId}", a.getEvent)
	v1.HandleFunc("PUT /v1/events/{eventId}", a.updateEvent)
	v1.HandleFunc("POST /v1/events/{eventId}/attendees", a.registerAttendee)
	v1.HandleFunc("GET /v1/events/{eventId}/attendees", a.getAttendees)
	v1.HandleFunc("GET /v1/events/{eventId}/attendees/{email}/checkin", a.issueCheckInHash)
	v1.HandleFunc("POST /v1/events/{eventId}/attendees/visit", a.confirmVisit)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	root.Handle("GET /metrics", promhttp.Handler())
	root.Handle("/v1/", useMiddlewares(v1, a.authMiddleware()))

	return useMiddlewares(root,
		a.corsMiddleware(),
		a.loggingMiddleware(),
		a.tracingMiddleware(),
		a.requestIdMiddleware(),
	)
}
