package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "campus_report"

// Metrics holds the portal's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	ReportsSubmitted  *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	FeedbackSent      *prometheus.CounterVec
	TrackingLookups   *prometheus.CounterVec
	UploadFailures    *prometheus.CounterVec
	Donations         prometheus.Counter
	HTTPDuration      *prometheus.HistogramVec
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ReportsSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Reports accepted, by report type.",
		}, []string{"report_type"}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Status changes applied by admins.",
		}, []string{"from", "to"}),
		FeedbackSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_sent_total",
			Help:      "Feedback entries recorded, by channel.",
		}, []string{"channel"}),
		TrackingLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_lookups_total",
			Help:      "Reporter tracking lookups, by result (found, not_found, throttled).",
		}, []string{"result"}),
		UploadFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_failures_total",
			Help:      "File uploads that failed, by kind (attachment, donation_proof).",
		}, []string{"kind"}),
		Donations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_total",
			Help:      "Donation confirmations recorded.",
		}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
}

func (m *Metrics) ReportSubmitted(reportType string) {
	if m == nil {
		return
	}
	m.ReportsSubmitted.WithLabelValues(reportType).Inc()
}

func (m *Metrics) StatusChanged(from, to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) FeedbackRecorded(channel string) {
	if m == nil {
		return
	}
	m.FeedbackSent.WithLabelValues(channel).Inc()
}

func (m *Metrics) TrackingLookup(result string) {
	if m == nil {
		return
	}
	m.TrackingLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) UploadFailed(kind string) {
	if m == nil {
		return
	}
	m.UploadFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) DonationRecorded() {
	if m == nil {
		return
	}
	m.Donations.Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
