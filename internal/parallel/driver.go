// Package parallel implements the intra-worker concurrency layer:
// spec.md §4.5's Parallel Driver, which fans one rank's seed tasks out
// across a fixed pool of goroutines sharing a single shared-memory best
// cell.
package parallel

import (
	"fmt"
	"math"
	"sync"

	"github.com/tspbb/solver/internal/bound"
	"github.com/tspbb/solver/internal/distance"
	"github.com/tspbb/solver/internal/search"
)

// ErrTooManyThreads is returned when the requested thread count exceeds
// MaxThreads.
var ErrTooManyThreads = fmt.Errorf("thread count exceeds maximum")

// MaxThreads bounds the thread count defensively, the same way the
// teacher's worker pool bounds its worker count, to keep buffer and
// slice-capacity arithmetic from overflowing.
const MaxThreads = math.MaxInt / 2

// Driver runs the DFS engine across a fixed pool of goroutines, each
// draining a contiguous slice of the seed tasks against one shared
// BestCell.
type Driver struct {
	threads int
}

// NewDriver returns a Driver sized to run threads goroutines in
// parallel. threads <= 0 is treated as 1.
func NewDriver(threads int) (*Driver, error) {
	if threads <= 0 {
		threads = 1
	}
	if threads > MaxThreads {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyThreads, threads, MaxThreads)
	}
	return &Driver{threads: threads}, nil
}

// Threads reports the configured thread count.
func (d *Driver) Threads() int {
	return d.threads
}

// Report is a worker's contribution to the distributed reduction: its
// local best tour and the search statistics across all of its threads.
type Report struct {
	Stats    search.Stats
	BestCost int
	BestPath []int
	Err      error
}

// Run partitions seeds into contiguous, balanced ranges (one per
// thread), runs the DFS engine over each range in its own goroutine
// against a shared BestCell, and blocks until every goroutine has
// drained its range. A panicking search goroutine is recovered and
// reported through Report.Err rather than crashing the worker, mirroring
// the teacher's worker-pool panic recovery.
func (d *Driver) Run(seeds []search.Task, m *distance.Matrix, oracle bound.Oracle, maxStack int) Report {
	cell := search.NewBestCell()
	ranges := partitionContiguous(len(seeds), d.threads)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var combined search.Stats
	var firstErr error

	for _, r := range ranges {
		if r.start == r.end {
			continue
		}
		part := seeds[r.start:r.end]
		wg.Add(1)
		go func(part []search.Task) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("search thread panic: %v", rec)
					}
					mu.Unlock()
				}
			}()

			stats, err := search.Run(part, cell, m, oracle, maxStack)

			mu.Lock()
			combined.Add(stats)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}(part)
	}
	wg.Wait()

	cost, path := cell.Snapshot()
	return Report{Stats: combined, BestCost: cost, BestPath: path, Err: firstErr}
}

type seedRange struct{ start, end int }

// partitionContiguous splits n seeds into up to threads contiguous,
// balanced ranges: the first n%threads ranges get one extra seed. This
// is the same balanced range split the distributed coordinator uses to
// divide seeds across ranks, reused here one level down to divide a
// rank's seeds across its threads.
func partitionContiguous(n, threads int) []seedRange {
	if threads > n {
		threads = n
	}
	if threads <= 0 {
		return nil
	}
	base := n / threads
	extra := n % threads

	ranges := make([]seedRange, 0, threads)
	start := 0
	for i := 0; i < threads; i++ {
		size := base
		if i < extra {
			size++
		}
		ranges = append(ranges, seedRange{start: start, end: start + size})
		start += size
	}
	return ranges
}
