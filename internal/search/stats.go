package search

// Stats accumulates the per-worker counters spec.md §8 expects a run to
// report: how much of the tree was explored vs. cut, and how deep the
// explicit stack grew.
type Stats struct {
	NodesPopped        int64
	NodesPrunedByCost  int64
	NodesPrunedByBound int64
	NodesExpanded      int64
	ToursCompleted     int64
	StackHighWater     int
}

// Add folds o into s in place, for combining per-thread stats into a
// per-worker total.
func (s *Stats) Add(o Stats) {
	s.NodesPopped += o.NodesPopped
	s.NodesPrunedByCost += o.NodesPrunedByCost
	s.NodesPrunedByBound += o.NodesPrunedByBound
	s.NodesExpanded += o.NodesExpanded
	s.ToursCompleted += o.ToursCompleted
	if o.StackHighWater > s.StackHighWater {
		s.StackHighWater = o.StackHighWater
	}
}
