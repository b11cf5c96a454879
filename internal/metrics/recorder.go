package metrics

import (
	"strconv"
	"time"

	"github.com/tspbb/solver/internal/search"
)

// RecordSearch folds one rank's search.Stats and timing into the
// registry.
func (r *Registry) RecordSearch(rank int, stats search.Stats, bestCost int, elapsed time.Duration) {
	label := strconv.Itoa(rank)

	r.NodesPoppedTotal.WithLabelValues(label).Add(float64(stats.NodesPopped))
	r.NodesPrunedTotal.WithLabelValues(label, "bound").Add(float64(stats.NodesPrunedByBound))
	r.NodesPrunedTotal.WithLabelValues(label, "cost").Add(float64(stats.NodesPrunedByCost))
	r.ToursFoundTotal.WithLabelValues(label).Add(float64(stats.ToursCompleted))
	r.StackHighWater.WithLabelValues(label).Set(float64(stats.StackHighWater))
	r.SearchDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	if bestCost >= 0 {
		r.BestCost.WithLabelValues(label).Set(float64(bestCost))
	}
}

// RecordReduction records the outcome of one completed coordinator
// reduction. The coordinator records "optimal" and "no_solution"; a run
// that ends in ErrResourceExhausted is not recorded.
func (r *Registry) RecordReduction(outcome string) {
	r.CoordinatorRounds.WithLabelValues(outcome).Inc()
}
