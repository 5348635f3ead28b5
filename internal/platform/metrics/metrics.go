package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	Registrations       prometheus.Counter
	Approvals           prometheus.Counter
	Rejections          prometheus.Counter
	Logins              prometheus.Counter
	LoginFailures       prometheus.Counter
	VerificationsIssued prometheus.Counter
	ContentFlags        prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuscard_registrations_total",
			Help: "Total number of sign-up registrations accepted",
		}),
		Approvals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuscard_approvals_total",
			Help: "Total number of pending accounts approved",
		}),
		Rejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuscard_rejections_total",
			Help: "Total number of pending accounts rejected",
		}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuscard_logins_total",
			Help: "Total number of successful logins",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuscard_login_failures_total",
			Help: "Total number of failed login attempts",
		}),
		VerificationsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuscard_verification_tokens_issued_total",
			Help: "Total number of email verification tokens issued",
		}),
		ContentFlags: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campuscard_content_flags_total",
			Help: "Total number of profile fields flagged by moderation",
		}),
	}
}
