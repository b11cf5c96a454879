// Package metrics exposes the solver's Prometheus registry: per-rank
// search progress and timing, for the optional metrics listener
// cmd/tspsolve can start.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric the solver records, grouped by concern.
type Registry struct {
	NodesPoppedTotal  *prometheus.CounterVec
	NodesPrunedTotal  *prometheus.CounterVec
	ToursFoundTotal   *prometheus.CounterVec
	BestCost          *prometheus.GaugeVec
	StackHighWater    *prometheus.GaugeVec
	SearchDuration    *prometheus.HistogramVec
	CoordinatorRounds *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry builds a fresh registry with every solver metric
// registered under it.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg}

	r.initSearchMetrics()
	r.initCoordinatorMetrics()

	return r
}

func (r *Registry) initSearchMetrics() {
	r.NodesPoppedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tspsolve_nodes_popped_total",
			Help: "Total branch-and-bound stack nodes popped, per rank.",
		},
		[]string{"rank"},
	)

	r.NodesPrunedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tspsolve_nodes_pruned_total",
			Help: "Total nodes pruned by bound or cost, per rank and reason.",
		},
		[]string{"rank", "reason"},
	)

	r.ToursFoundTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tspsolve_tours_completed_total",
			Help: "Total improving complete tours committed to the best cell, per rank.",
		},
		[]string{"rank"},
	)

	r.BestCost = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tspsolve_best_cost",
			Help: "Current best tour cost known to this rank.",
		},
		[]string{"rank"},
	)

	r.StackHighWater = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tspsolve_stack_high_water",
			Help: "Peak explicit-stack depth reached during the search.",
		},
		[]string{"rank"},
	)

	r.SearchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tspsolve_search_duration_seconds",
			Help:    "Wall-clock time spent in the branch-and-bound search.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"rank"},
	)
}

func (r *Registry) initCoordinatorMetrics() {
	r.CoordinatorRounds = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tspsolve_coordinator_reduction_rounds_total",
			Help: "Total completed reductions of per-rank results to a global best, by outcome.",
		},
		[]string{"outcome"},
	)
}

// Handler returns the HTTP handler to mount at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve starts a blocking HTTP server exposing /metrics on addr. Callers
// typically run it in its own goroutine.
func Serve(addr string, r *Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	return http.ListenAndServe(addr, mux)
}
