package search

import (
	"math"
	"sync"
	"sync/atomic"
)

// BestCell is the shared best-known-tour cell a DFS engine prunes
// against: spec.md §4.4. Reads of the cost are lock-free and may race
// with a concurrent commit (a stale read only costs a missed prune, it
// never admits an unsafe one, since a commit only ever lowers the
// value). Writes are serialized and re-check the cost under the lock
// before committing, so a slower goroutine with a worse tour can never
// clobber a better one that landed first.
type BestCell struct {
	cost atomic.Int64
	mu   sync.Mutex
	path []int
}

// NewBestCell returns a cell with no tour recorded yet.
func NewBestCell() *BestCell {
	c := &BestCell{}
	c.cost.Store(math.MaxInt64)
	return c
}

// Peek returns the current best cost without locking. math.MaxInt64
// means no tour has been committed yet.
func (c *BestCell) Peek() int {
	return int(c.cost.Load())
}

// TryCommit records (cost, path) if cost strictly improves on whatever
// is currently held, re-checking under the lock. Returns whether the
// commit took effect.
func (c *BestCell) TryCommit(cost int, path []int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int64(cost) >= c.cost.Load() {
		return false
	}
	p := make([]int, len(path))
	copy(p, path)
	c.path = p
	c.cost.Store(int64(cost))
	return true
}

// Snapshot returns a consistent (cost, path) pair. A nil path means no
// tour was ever committed.
func (c *BestCell) Snapshot() (int, []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.path == nil {
		return int(c.cost.Load()), nil
	}
	p := make([]int, len(c.path))
	copy(p, c.path)
	return int(c.cost.Load()), p
}
