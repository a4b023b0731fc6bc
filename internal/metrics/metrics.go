// Package metrics holds the Prometheus instruments for lookups.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for parcel lookups and classification.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Lookup outcomes by kind ("key", "coordinates") and outcome
	// ("ok", "invalid_input", "not_found", "transport")
	Lookups *prometheus.CounterVec

	// Lookup latency by kind
	LookupLatency *prometheus.HistogramVec

	// Classifications by canonical category
	Classifications *prometheus.CounterVec

	// Features in the loaded collection
	ParcelsLoaded prometheus.Gauge
}

// New registers all instruments on reg. Pass prometheus.DefaultRegisterer
// for the process-wide registry, or a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "urbanmind_lookups_total",
			Help: "Total parcel lookups by identifier kind and outcome",
		}, []string{"kind", "outcome"}),

		LookupLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "urbanmind_lookup_duration_seconds",
			Help:    "Duration of parcel lookups including classification",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"kind"}),

		Classifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "urbanmind_classifications_total",
			Help: "Total zoning classifications by canonical category",
		}, []string{"category"}),

		ParcelsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Name: "urbanmind_parcels_loaded",
			Help: "Number of parcel features in the loaded collection",
		}),
	}
}

// ObserveLookup records one lookup's outcome and latency.
func (m *Metrics) ObserveLookup(kind, outcome string, d time.Duration) {
	if m != nil {
		m.Lookups.WithLabelValues(kind, outcome).Inc()
		m.LookupLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// IncrementClassification records a classification result.
func (m *Metrics) IncrementClassification(category string) {
	if m != nil {
		m.Classifications.WithLabelValues(category).Inc()
	}
}

// SetParcelsLoaded records the collection size.
func (m *Metrics) SetParcelsLoaded(n int) {
	if m != nil {
		m.ParcelsLoaded.Set(float64(n))
	}
}
