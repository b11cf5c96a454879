// Package search implements the single-worker, explicit-stack
// branch-and-bound DFS engine: spec.md §4.3.
package search

// Task is a partial tour handed to the engine as a subtree root. Seeded
// tasks always have Depth >= 2 (spec.md §3's Partial Tour invariant).
//
// Node is the same shape as Task; the engine promotes seeds to Nodes on
// the explicit stack and discards them on pop (PUSHED -> EVALUATED ->
// {PRUNED | COMPLETED | EXPANDED}, per spec.md §4.3's state machine).
type Task struct {
	Depth       int
	Cost        int
	LastCity    int
	VisitedMask int
	Path        []int // path[0] == 0, len(Path) == Depth
	LB          int   // this task's own admissible lower bound
}

// Node is an alias for Task: both describe exactly the same tuple
// (depth, cost, last_city, visited_mask, path, parent_lb) from spec.md §3.
// Keeping one type avoids a pointless conversion when seeds are pushed
// onto the stack.
type Node = Task
