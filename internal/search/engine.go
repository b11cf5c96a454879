package search

import (
	"math/bits"
	"sort"

	"github.com/tspbb/solver/internal/bound"
	"github.com/tspbb/solver/internal/distance"
	"github.com/tspbb/solver/internal/solvererr"
)

// DefaultMaxStackDepth bounds the explicit stack so a pathological
// instance can't grow it without limit. N<=18 never comes close to this
// in practice; it exists purely to turn a runaway search into a
// reported ResourceExhausted error instead of an OOM kill.
const DefaultMaxStackDepth = 1 << 20

type child struct {
	city int
	edge int
}

// Run drains seeds (and everything they expand to) through the
// explicit-stack branch-and-bound loop of spec.md §4.3, pruning against
// the shared cell and committing any improving complete tour it finds.
// maxStack <= 0 selects DefaultMaxStackDepth.
func Run(seeds []Task, cell *BestCell, m *distance.Matrix, oracle bound.Oracle, maxStack int) (Stats, error) {
	if maxStack <= 0 {
		maxStack = DefaultMaxStackDepth
	}

	var stats Stats
	n := m.N()
	full := (1 << n) - 1

	stack := make([]Node, 0, len(seeds)*2+16)
	stack = append(stack, seeds...)
	if len(stack) > stats.StackHighWater {
		stats.StackHighWater = len(stack)
	}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stats.NodesPopped++

		b := cell.Peek()
		if node.Cost >= b || node.LB >= b {
			stats.NodesPrunedByBound++
			continue
		}

		if node.Depth == n {
			total := node.Cost + m.At(node.LastCity, 0)
			if total < b {
				closed := make([]int, len(node.Path)+1)
				copy(closed, node.Path)
				closed[len(node.Path)] = 0
				if cell.TryCommit(total, closed) {
					stats.ToursCompleted++
				}
			}
			continue
		}

		unvisited := ^node.VisitedMask & full
		children := make([]child, 0, bits.OnesCount(uint(unvisited)))
		for unvisited != 0 {
			j := bits.TrailingZeros(uint(unvisited))
			unvisited &= unvisited - 1
			children = append(children, child{city: j, edge: m.At(node.LastCity, j)})
		}
		sort.Slice(children, func(i, k int) bool {
			if children[i].edge != children[k].edge {
				return children[i].edge < children[k].edge
			}
			return children[i].city < children[k].city
		})

		// Push in reverse (most expensive first) so the cheapest edge
		// ends up on top of the LIFO stack and is popped first,
		// matching the non-decreasing branch order spec.md §4.3 calls
		// for.
		b = cell.Peek()
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			newCost := node.Cost + c.edge
			if newCost >= b {
				stats.NodesPrunedByCost++
				continue
			}

			newMask := node.VisitedMask | (1 << c.city)
			newDepth := node.Depth + 1

			var newLB int
			if oracle.Scheme() == bound.SchemeB {
				newLB = oracle.Incremental(node.LB, node.LastCity, c.city)
			} else {
				newLB = oracle.FromScratch(newCost, newMask)
			}
			if newLB >= b {
				stats.NodesPrunedByBound++
				continue
			}

			if newDepth == n {
				if newCost+m.At(c.city, 0) >= b {
					stats.NodesPrunedByCost++
					continue
				}
			}

			if len(stack) >= maxStack {
				return stats, solvererr.ErrResourceExhausted
			}

			newPath := make([]int, node.Depth+1)
			copy(newPath, node.Path)
			newPath[node.Depth] = c.city

			stack = append(stack, Node{
				Depth:       newDepth,
				Cost:        newCost,
				LastCity:    c.city,
				VisitedMask: newMask,
				Path:        newPath,
				LB:          newLB,
			})
			stats.NodesExpanded++
			if len(stack) > stats.StackHighWater {
				stats.StackHighWater = len(stack)
			}
		}
	}

	return stats, nil
}
