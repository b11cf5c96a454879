package search

import (
	"math/bits"
	"testing"

	"github.com/tspbb/solver/internal/bound"
	"github.com/tspbb/solver/internal/distance"
)

// seedsFor builds the depth-2 first-hop seeds a coordinator would hand to
// a worker: one task per city reachable from 0, per spec.md §4.5.
func seedsFor(m *distance.Matrix, oracle bound.Oracle) []Task {
	n := m.N()
	seeds := make([]Task, 0, n-1)
	for c := 1; c < n; c++ {
		cost := m.At(0, c)
		mask := 1 | (1 << c)
		seeds = append(seeds, Task{
			Depth:       2,
			Cost:        cost,
			LastCity:    c,
			VisitedMask: mask,
			Path:        []int{0, c},
			LB:          oracle.FromScratch(cost, mask),
		})
	}
	return seeds
}

// bruteForceOptimalTour exhaustively enumerates every permutation of
// 1..N-1 to find the true optimal closed-tour cost, as a ground-truth
// oracle for the optimality property spec.md §8 requires.
func bruteForceOptimalTour(m *distance.Matrix) int {
	n := m.N()
	if n <= 1 {
		return 0
	}
	rest := make([]int, 0, n-1)
	for c := 1; c < n; c++ {
		rest = append(rest, c)
	}

	best := -1
	var permute func(prefix []int, remaining []int)
	permute = func(prefix []int, remaining []int) {
		if len(remaining) == 0 {
			cost := 0
			last := 0
			for _, c := range prefix {
				cost += m.At(last, c)
				last = c
			}
			cost += m.At(last, 0)
			if best == -1 || cost < best {
				best = cost
			}
			return
		}
		for i, c := range remaining {
			next := make([]int, 0, len(remaining)-1)
			next = append(next, remaining[:i]...)
			next = append(next, remaining[i+1:]...)
			permute(append(append([]int{}, prefix...), c), next)
		}
	}
	permute(nil, rest)
	return best
}

func runToCompletion(t *testing.T, m *distance.Matrix, scheme bound.Scheme) (int, []int, Stats) {
	t.Helper()
	oracle := bound.New(scheme, m)
	cell := NewBestCell()
	seeds := seedsFor(m, oracle)
	stats, err := Run(seeds, cell, m, oracle, 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	cost, path := cell.Snapshot()
	return cost, path, stats
}

func assertValidTour(t *testing.T, m *distance.Matrix, path []int) {
	t.Helper()
	n := m.N()
	if len(path) != n+1 {
		t.Fatalf("path length = %d, want %d", len(path), n+1)
	}
	if path[0] != 0 || path[n] != 0 {
		t.Fatalf("path does not start and end at 0: %v", path)
	}
	seen := 0
	for _, c := range path[:n] {
		bit := 1 << c
		if seen&bit != 0 {
			t.Fatalf("city %d repeated in path %v", c, path)
		}
		seen |= bit
	}
	if bits.OnesCount(uint(seen)) != n {
		t.Fatalf("path %v does not visit all %d cities", path, n)
	}
}

func threeCityMatrix(t *testing.T) *distance.Matrix {
	t.Helper()
	m, err := distance.New(3, []int{0, 1, 2, 1, 0, 3, 2, 3, 0})
	if err != nil {
		t.Fatalf("distance.New() error = %v", err)
	}
	return m
}

func fourCityMatrix(t *testing.T) *distance.Matrix {
	t.Helper()
	m, err := distance.New(4, []int{
		0, 10, 15, 20,
		10, 0, 35, 25,
		15, 35, 0, 30,
		20, 25, 30, 0,
	})
	if err != nil {
		t.Fatalf("distance.New() error = %v", err)
	}
	return m
}

func fiveCityMatrix(t *testing.T) *distance.Matrix {
	t.Helper()
	m, err := distance.New(5, []int{
		0, 2, 9, 10, 7,
		2, 0, 6, 4, 3,
		9, 6, 0, 8, 5,
		10, 4, 8, 0, 6,
		7, 3, 5, 6, 0,
	})
	if err != nil {
		t.Fatalf("distance.New() error = %v", err)
	}
	return m
}

func TestOptimalityAgainstBruteForce(t *testing.T) {
	matrices := map[string]*distance.Matrix{
		"3city": threeCityMatrix(t),
		"4city": fourCityMatrix(t),
		"5city": fiveCityMatrix(t),
	}
	for name, m := range matrices {
		want := bruteForceOptimalTour(m)
		for _, scheme := range []bound.Scheme{bound.SchemeA, bound.SchemeB} {
			cost, path, _ := runToCompletion(t, m, scheme)
			if cost != want {
				t.Errorf("%s scheme=%s: cost = %d, want %d", name, scheme, cost, want)
			}
			assertValidTour(t, m, path)
		}
	}
}

func TestDegenerateTwoCities(t *testing.T) {
	m, err := distance.New(2, []int{0, 7, 7, 0})
	if err != nil {
		t.Fatalf("distance.New() error = %v", err)
	}
	cost, path, _ := runToCompletion(t, m, bound.SchemeB)
	if cost != 14 {
		t.Errorf("cost = %d, want 14", cost)
	}
	assertValidTour(t, m, path)
}

func TestAllEqualDistances(t *testing.T) {
	n := 6
	values := make([]int, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				values[i*n+j] = 5
			}
		}
	}
	m, err := distance.New(n, values)
	if err != nil {
		t.Fatalf("distance.New() error = %v", err)
	}
	cost, path, _ := runToCompletion(t, m, bound.SchemeA)
	if cost != 5*n {
		t.Errorf("cost = %d, want %d", cost, 5*n)
	}
	assertValidTour(t, m, path)
}

func TestStatsRecordedByExhaustiveRun(t *testing.T) {
	m := fiveCityMatrix(t)
	_, _, stats := runToCompletion(t, m, bound.SchemeB)
	if stats.NodesPopped == 0 {
		t.Fatal("NodesPopped = 0, want > 0")
	}
	if stats.ToursCompleted == 0 {
		t.Fatal("ToursCompleted = 0, want > 0 for an exhaustive run")
	}
	if stats.StackHighWater == 0 {
		t.Fatal("StackHighWater = 0, want > 0")
	}
}

func TestResourceExhaustedWhenStackCapExceeded(t *testing.T) {
	m := fiveCityMatrix(t)
	oracle := bound.New(bound.SchemeB, m)
	cell := NewBestCell()
	seeds := seedsFor(m, oracle)
	if _, err := Run(seeds, cell, m, oracle, 1); err == nil {
		t.Fatal("Run() error = nil, want ErrResourceExhausted with maxStack=1")
	}
}

func TestStatsAdd(t *testing.T) {
	var total Stats
	total.Add(Stats{NodesPopped: 3, StackHighWater: 5})
	total.Add(Stats{NodesPopped: 2, StackHighWater: 9})
	if total.NodesPopped != 5 {
		t.Errorf("NodesPopped = %d, want 5", total.NodesPopped)
	}
	if total.StackHighWater != 9 {
		t.Errorf("StackHighWater = %d, want 9 (max, not sum)", total.StackHighWater)
	}
}

func TestBestCellTryCommitOnlyImproves(t *testing.T) {
	cell := NewBestCell()
	if !cell.TryCommit(10, []int{0, 1, 0}) {
		t.Fatal("first commit should succeed")
	}
	if cell.TryCommit(10, []int{0, 2, 0}) {
		t.Fatal("equal-cost commit should not replace the incumbent")
	}
	if cell.TryCommit(11, []int{0, 3, 0}) {
		t.Fatal("worse-cost commit should not replace the incumbent")
	}
	if !cell.TryCommit(4, []int{0, 1, 2, 0}) {
		t.Fatal("strictly better commit should succeed")
	}
	cost, path := cell.Snapshot()
	if cost != 4 {
		t.Errorf("cost = %d, want 4", cost)
	}
	if len(path) != 4 {
		t.Errorf("path = %v, want length 4", path)
	}
}
