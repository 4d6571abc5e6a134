package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Submission outcome labels
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Metrics holds the Prometheus metrics of the tracking path
type Metrics struct {
	SubmissionsTotal            *prometheus.CounterVec
	SubmissionDuration          *prometheus.HistogramVec
	InvalidEventsTotal          prometheus.Counter
	DimensionLimitExceededTotal prometheus.Counter
	BestEffortFailuresTotal     prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parse_analytics_submissions_total",
				Help: "Total number of tracking submissions by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		SubmissionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parse_analytics_submission_duration_seconds",
				Help:    "Tracking submission duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		InvalidEventsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parse_analytics_invalid_events_total",
				Help: "Total number of tracking calls rejected before submission",
			},
		),
		DimensionLimitExceededTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parse_analytics_dimension_limit_exceeded_total",
				Help: "Total number of events submitted with more dimensions than the advisory limit",
			},
		),
		BestEffortFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parse_analytics_best_effort_failures_total",
				Help: "Total number of best-effort tracking failures that were contained",
			},
		),
	}

	registry.MustRegister(
		m.SubmissionsTotal,
		m.SubmissionDuration,
		m.InvalidEventsTotal,
		m.DimensionLimitExceededTotal,
		m.BestEffortFailuresTotal,
	)

	return m
}

// ObserveSubmission records one finished submission
func (m *Metrics) ObserveSubmission(kind, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SubmissionsTotal.WithLabelValues(kind, status).Inc()
	m.SubmissionDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// IncInvalidEvent counts a call rejected by validation
func (m *Metrics) IncInvalidEvent() {
	if m == nil {
		return
	}
	m.InvalidEventsTotal.Inc()
}

// IncDimensionLimitExceeded counts an event over the advisory dimension limit
func (m *Metrics) IncDimensionLimitExceeded() {
	if m == nil {
		return
	}
	m.DimensionLimitExceededTotal.Inc()
}

// IncBestEffortFailure counts a contained best-effort failure
func (m *Metrics) IncBestEffortFailure() {
	if m == nil {
		return
	}
	m.BestEffortFailuresTotal.Inc()
}

// LogSummary writes every gathered counter and histogram count to logger at debug level
func LogSummary(registry *prometheus.Registry, logger logrus.FieldLogger) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			fields := logrus.Fields{"metric": family.GetName()}
			for _, label := range metric.GetLabel() {
				fields[label.GetName()] = label.GetValue()
			}

			switch {
			case metric.GetCounter() != nil:
				fields["value"] = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				fields["count"] = metric.GetHistogram().GetSampleCount()
				fields["sum"] = metric.GetHistogram().GetSampleSum()
			}

			logger.WithFields(fields).Debug("metric")
		}
	}
	return nil
}
