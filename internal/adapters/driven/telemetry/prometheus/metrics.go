// Package prometheus records pipeline telemetry as Prometheus metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// Ensure Telemetry implements the interface.
var _ driven.Telemetry = (*Telemetry)(nil)

const namespace = "voiceos"

// Telemetry holds the pipeline metrics.
type Telemetry struct {
	registry *prometheus.Registry

	Turns         *prometheus.CounterVec
	TurnDuration  *prometheus.HistogramVec
	Intents       *prometheus.CounterVec
	Dispatches    *prometheus.CounterVec
	Searches      *prometheus.CounterVec
	SearchResults *prometheus.HistogramVec
}

// New registers the pipeline metrics on a fresh registry, together with
// the Go runtime and process collectors.
func New() *Telemetry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the pipeline metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Telemetry {
	factory := promauto.With(reg)

	return &Telemetry{
		registry: reg,
		Turns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Completed voice turns by response kind.",
			},
			[]string{"kind"},
		),
		TurnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "turn_duration_seconds",
				Help:      "Time from transcript submission to response.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
			},
			[]string{"kind"},
		),
		Intents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intents_total",
				Help:      "Classification outcomes by intent type and error kind.",
			},
			[]string{"type", "error"},
		),
		Dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Action dispatches by action, outcome and error kind.",
			},
			[]string{"action", "outcome", "error"},
		),
		Searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Knowledge searches by the mode that answered.",
			},
			[]string{"mode"},
		),
		SearchResults: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_results",
				Help:      "Number of results returned per knowledge search.",
				Buckets:   []float64{0, 1, 2, 3, 5, 10},
			},
			[]string{"mode"},
		),
	}
}

// TurnCompleted implements driven.Telemetry.
func (t *Telemetry) TurnCompleted(kind domain.ResponseKind, d time.Duration) {
	t.Turns.WithLabelValues(string(kind)).Inc()
	t.TurnDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

// IntentClassified implements driven.Telemetry.
func (t *Telemetry) IntentClassified(intentType domain.IntentType, errKind string) {
	label := string(intentType)
	if label == "" {
		label = "none"
	}
	t.Intents.WithLabelValues(label, errKind).Inc()
}

// ActionDispatched implements driven.Telemetry.
func (t *Telemetry) ActionDispatched(action string, success bool, errKind string) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	t.Dispatches.WithLabelValues(action, outcome, errKind).Inc()
}

// SearchPerformed implements driven.Telemetry.
func (t *Telemetry) SearchPerformed(mode domain.SearchMode, results int) {
	t.Searches.WithLabelValues(string(mode)).Inc()
	t.SearchResults.WithLabelValues(string(mode)).Observe(float64(results))
}

// Handler serves the registry in the Prometheus exposition format.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{Registry: t.registry})
}

// Registry returns the underlying registry.
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}
