package coordinator

import "time"

// Result is a rank's outcome from a distributed run. Only rank 0's
// Result is authoritative for output: spec.md §6 requires exactly one
// rank to emit the final answer, and every other rank's Result carries
// just its own local contribution to the reduction.
type Result struct {
	Cost       int
	Path       []int
	NoSolution bool
	Elapsed    time.Duration
	WorldSize  int
}
