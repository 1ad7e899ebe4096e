package api

import (
	"log/slog"
	"time"

	"github.com/eventhive/event-registration/attendees"
	"github.com/eventhive/event-registration/events"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
)

type DB interface {
	events.Repository
	attendees.Repository
}

type Config struct {
	Env Environment
	// APIKey is the shared credential every caller must present in the
	// api-key header.
	APIKey string
	// Now is the clock used for deadline checks and check-in timestamps.
	// Defaults to time.Now.
	Now func() time.Time
}

type API struct {
	db       DB
	logger   *slog.Logger
	env      Environment
	apiKey   string
	now      func() time.Time
	validate *validator.Validate
	metrics  *Metrics
}

func NewAPI(db DB, logger *slog.Logger, cfg Config, reg prometheus.Registerer) *API {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &API{
		db:       db,
		logger:   logger,
		env:      cfg.Env,
		apiKey:   cfg.APIKey,
		now:      now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  NewMetrics(reg),
	}
}
