// Package metrics exposes gallery activity as Prometheus metrics.
//
// Each [Recorder] owns its own registry, so several galleries (or tests)
// can coexist in one process.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Phase names counted as the end of a mount cycle.
const (
	PhaseResolved = "resolved"
	PhaseFailed   = "failed"
	PhaseRetrying = "retrying"
)

// Recorder turns widget snapshots into metrics.
type Recorder struct {
	registry *prometheus.Registry

	cycles    *prometheus.CounterVec
	retries   *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	displayed *prometheus.GaugeVec

	mu   sync.Mutex
	last map[string]observation
}

type observation struct {
	generation uint64
	phase      string
	attempt    int
}

// New creates a [Recorder] with a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faqwidget_mount_cycles_total",
				Help: "Mount cycles that reached content or error, by outcome",
			},
			[]string{"widget", "outcome"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faqwidget_retries_total",
				Help: "Backend attempts that did not resolve and were retried",
			},
			[]string{"widget"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faqwidget_refreshes_total",
				Help: "Re-mounts started after the initial mount",
			},
			[]string{"widget"},
		),
		displayed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "faqwidget_displayed_faqs",
				Help: "FAQs currently displayed by the widget",
			},
			[]string{"widget"},
		),
		last: make(map[string]observation),
	}
	r.registry.MustRegister(r.cycles, r.retries, r.refreshes, r.displayed)
	return r
}

// Observe records one snapshot of the named widget. Repeated snapshots of
// the same cycle state, such as accordion changes, count once.
func (r *Recorder) Observe(name string, generation uint64, phase string, attempt, items int) {
	r.mu.Lock()
	prev, seen := r.last[name]
	r.last[name] = observation{generation: generation, phase: phase, attempt: attempt}
	r.mu.Unlock()

	switch phase {
	case PhaseResolved, PhaseFailed:
		if !seen || prev.generation != generation || prev.phase != phase {
			r.cycles.WithLabelValues(name, phase).Inc()
		}
	case PhaseRetrying:
		if !seen || prev.generation != generation || prev.attempt != attempt || prev.phase != phase {
			r.retries.WithLabelValues(name).Inc()
		}
	}
	r.displayed.WithLabelValues(name).Set(float64(items))
}

// Refreshed records a re-mount of the named widget.
func (r *Recorder) Refreshed(name string) {
	r.refreshes.WithLabelValues(name).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
