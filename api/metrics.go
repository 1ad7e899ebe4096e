package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RegistrationAttempts *prometheus.CounterVec
	CheckIns             *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RegistrationAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_registration",
			Name:      "registration_attempts_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		CheckIns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_registration",
			Name:      "check_ins_total",
			Help:      "Check-in scans by outcome.",
		}, []string{"outcome"}),
	}
}
