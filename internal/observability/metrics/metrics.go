package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes used as metric labels.
const (
	OutcomeAccepted         = "accepted"
	OutcomeRateLimited      = "rate_limited"
	OutcomeCSRFRejected     = "csrf_rejected"
	OutcomeInvalidBody      = "invalid_body"
	OutcomeValidationFailed = "validation_failed"
	OutcomeInternalError    = "internal_error"
)

// IntakeMetrics exposes counters for the contact intake pipeline.
type IntakeMetrics struct {
	submissionsTotal *prometheus.CounterVec
	rateLimitedTotal *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparkle",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Total contact form submissions by outcome",
		}, []string{"outcome"}),
		rateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparkle",
			Subsystem: "intake",
			Name:      "rate_limited_total",
			Help:      "Total rate-limited submissions by rejection reason",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.rateLimitedTotal)
	return m
}

func (m *IntakeMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *IntakeMetrics) ObserveRateLimited(reason string) {
	if m == nil {
		return
	}
	m.rateLimitedTotal.WithLabelValues(reason).Inc()
}
