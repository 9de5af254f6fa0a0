// Package metrics exposes Prometheus instrumentation for the tracker.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the tracker's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	EventsRecorded        *prometheus.CounterVec
	StorageErrors         *prometheus.CounterVec
	SyncUploaded          prometheus.Counter
	SyncDownloaded        prometheus.Counter
	InsightsRanked        prometheus.Gauge
	RecommendationsServed prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the tracker metrics on reg. Use a fresh registry per
// tracker to avoid duplicate registration panics.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EventsRecorded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learning_events_recorded_total",
				Help: "Total number of learning events recorded",
			},
			[]string{"agent", "category"},
		),
		StorageErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learning_storage_errors_total",
				Help: "Storage failures absorbed by the tracker",
			},
			[]string{"op"}, // "read" or "write"
		),
		SyncUploaded: f.NewCounter(prometheus.CounterOpts{
			Name: "learning_sync_uploaded_total",
			Help: "Events uploaded from the local scope to the global scope",
		}),
		SyncDownloaded: f.NewCounter(prometheus.CounterOpts{
			Name: "learning_sync_downloaded_total",
			Help: "Global insights imported into the local insight index",
		}),
		InsightsRanked: f.NewGauge(prometheus.GaugeOpts{
			Name: "learning_insights_ranked",
			Help: "Number of insights returned by the most recent analysis",
		}),
		RecommendationsServed: f.NewCounter(prometheus.CounterOpts{
			Name: "learning_recommendations_served_total",
			Help: "Recommendations returned to callers",
		}),
		gatherer: reg,
	}
}

// RecordEvent counts a recorded event.
func (m *Metrics) RecordEvent(agent, category string) {
	if m == nil {
		return
	}
	m.EventsRecorded.WithLabelValues(agent, category).Inc()
}

// StorageError counts an absorbed storage failure.
func (m *Metrics) StorageError(op string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(op).Inc()
}

// Synced counts the outcome of a sync run.
func (m *Metrics) Synced(uploaded, downloaded int) {
	if m == nil {
		return
	}
	m.SyncUploaded.Add(float64(uploaded))
	m.SyncDownloaded.Add(float64(downloaded))
}

// Ranked records the size of the latest ranked insight set.
func (m *Metrics) Ranked(n int) {
	if m == nil {
		return
	}
	m.InsightsRanked.Set(float64(n))
}

// Served counts returned recommendations.
func (m *Metrics) Served(n int) {
	if m == nil {
		return
	}
	m.RecommendationsServed.Add(float64(n))
}

// WriteText writes all gathered metrics in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.gatherer.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
