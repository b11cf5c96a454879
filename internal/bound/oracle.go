// Package bound implements the two admissible lower-bound schemes spec.md
// §4.2 describes for pruning the branch-and-bound search: Scheme A
// (minimum outgoing edge, recomputed from scratch) and Scheme B
// (two-edge averaged, updated incrementally in O(1)).
package bound

import (
	"math/bits"

	"github.com/tspbb/solver/internal/distance"
)

// Scheme selects which admissible lower bound a worker uses for its whole
// search. A worker must use exactly one scheme consistently.
type Scheme string

const (
	// SchemeA is the minimum-outgoing-edge bound, evaluated from scratch
	// on every call.
	SchemeA Scheme = "A"
	// SchemeB is the two-edge averaged bound, with an O(1) incremental
	// update when extending a partial tour by one edge.
	SchemeB Scheme = "B"
)

// Oracle computes admissible lower bounds for partial tours. Both
// FromScratch and Incremental must hold LB <= cost of any completion of
// the partial tour they describe, so pruning against them is always safe.
type Oracle interface {
	// Scheme reports which scheme this oracle implements.
	Scheme() Scheme

	// FromScratch computes the bound for a partial tour with the given
	// accumulated cost and visited mask, in O(N).
	FromScratch(cost, visitedMask int) int

	// Incremental computes the child's bound in O(1) from the parent's
	// bound, given the edge (prev -> cur) being added. Scheme A does not
	// support this and its implementation is never called by the DFS
	// engine when running under Scheme A.
	Incremental(parentLB, prev, cur int) int
}

// New builds the Oracle for the requested scheme over the given matrix.
func New(scheme Scheme, m *distance.Matrix) Oracle {
	switch scheme {
	case SchemeB:
		return schemeB{m: m}
	default:
		return schemeA{m: m}
	}
}

// schemeA implements LB_A(cost, mask) = cost + sum(c1[i] for i unvisited).
type schemeA struct {
	m *distance.Matrix
}

func (schemeA) Scheme() Scheme { return SchemeA }

func (s schemeA) FromScratch(cost, visitedMask int) int {
	n := s.m.N()
	full := (1 << n) - 1
	unvisited := ^visitedMask & full

	bound := cost
	for unvisited != 0 {
		i := bits.TrailingZeros(uint(unvisited))
		bound += s.m.C1(i)
		unvisited &= unvisited - 1
	}
	return bound
}

// Incremental is unused under Scheme A: the DFS engine never calls it when
// the oracle reports SchemeA. It returns parentLB unchanged. On a
// symmetric matrix that value never exceeds the child's FromScratch
// bound (D[prev][cur] >= c1[cur]), so a misuse prunes less, never unsafely.
func (s schemeA) Incremental(parentLB, prev, cur int) int {
	return parentLB
}

// schemeB implements LB_B(cost, mask) = cost + sum(floor((c1[i]+c2[i])/2)
// for i unvisited), with an O(1) incremental update.
type schemeB struct {
	m *distance.Matrix
}

func (schemeB) Scheme() Scheme { return SchemeB }

func (s schemeB) averagedEdge(i int) int {
	return (s.m.C1(i) + s.m.C2(i)) / 2
}

func (s schemeB) FromScratch(cost, visitedMask int) int {
	n := s.m.N()
	full := (1 << n) - 1
	unvisited := ^visitedMask & full

	bound := cost
	for unvisited != 0 {
		i := bits.TrailingZeros(uint(unvisited))
		bound += s.averagedEdge(i)
		unvisited &= unvisited - 1
	}
	return bound
}

// Incremental updates the bound in O(1): city cur was unvisited in the
// parent and contributed its averaged-edge term to parentLB; in the child
// it is visited and instead contributes the actual incoming edge
// D[prev][cur]. Every other unvisited city contributes identically, so it
// cancels out of the difference.
func (s schemeB) Incremental(parentLB, prev, cur int) int {
	return parentLB + s.m.At(prev, cur) - s.averagedEdge(cur)
}
