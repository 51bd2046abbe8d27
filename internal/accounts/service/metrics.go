package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts account lifecycle events. A nil *Metrics records nothing.
type Metrics struct {
	signups     prometheus.Counter
	logins      *prometheus.CounterVec
	codesIssued *prometheus.CounterVec
	invitations *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	cleaned     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		signups: f.NewCounter(prometheus.CounterOpts{
			Name: "accounts_signups_total",
			Help: "Accounts created through self-service signup.",
		}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"result"}),
		codesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_codes_issued_total",
			Help: "One-time codes issued by purpose.",
		}, []string{"purpose"}),
		invitations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_invitations_total",
			Help: "Manager invitation transitions.",
		}, []string{"event"}),
		deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_mail_failures_total",
			Help: "Notification emails that could not be delivered.",
		}, []string{"kind"}),
		cleaned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "accounts_housekeeping_cleared_total",
			Help: "Expired challenges and invitations cleared by housekeeping.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) signup() {
	if m != nil {
		m.signups.Inc()
	}
}

func (m *Metrics) login(result string) {
	if m != nil {
		m.logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) codeIssued(purpose string) {
	if m != nil {
		m.codesIssued.WithLabelValues(purpose).Inc()
	}
}

func (m *Metrics) invitation(event string) {
	if m != nil {
		m.invitations.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) deliveryFailed(kind string) {
	if m != nil {
		m.deliveries.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) cleared(kind string, n int64) {
	if m != nil && n > 0 {
		m.cleaned.WithLabelValues(kind).Add(float64(n))
	}
}
