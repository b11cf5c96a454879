package coordinator

import (
	"errors"
	"sync"
	"testing"

	"github.com/tspbb/solver/internal/config"
	"github.com/tspbb/solver/internal/distance"
	"github.com/tspbb/solver/internal/solvererr"
	"github.com/tspbb/solver/internal/transport"
)

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

// runDistributed drives one full distributed run with worldSize ranks
// sharing a single in-memory transport, and returns rank 0's Result.
func runDistributed(t *testing.T, m *distance.Matrix, worldSize, threads int) Result {
	t.Helper()
	factory := transport.NewMemoryFactory()
	addrs := transport.DefaultAddresses()

	var wg sync.WaitGroup
	results := make([]Result, worldSize)
	errs := make([]error, worldSize)

	for rank := 0; rank < worldSize; rank++ {
		cfg := config.DefaultConfig()
		cfg.WorldSize = worldSize
		cfg.Rank = rank
		cfg.Threads = threads
		cfg.MatrixAddr = addrs.MatrixAddr
		cfg.ResultAddr = addrs.ResultAddr

		coord := New(cfg, factory, nil, nil)

		wg.Add(1)
		go func(rank int, coord *Coordinator) {
			defer wg.Done()
			var local *distance.Matrix
			if rank == 0 {
				local = m
			}
			res, err := coord.Run(local)
			results[rank] = res
			errs[rank] = err
		}(rank, coord)
	}
	wg.Wait()

	if errs[0] != nil {
		t.Fatalf("rank 0 Run() error = %v", errs[0])
	}
	return results[0]
}

func TestWorldSizeIndependence(t *testing.T) {
	m := fiveCityMatrix(t)

	var want int
	for i, worldSize := range []int{1, 2, 4} {
		res := runDistributed(t, m, worldSize, 2)
		if i == 0 {
			want = res.Cost
			continue
		}
		if res.Cost != want {
			t.Errorf("world_size=%d: Cost = %d, want %d (world-size independence)", worldSize, res.Cost, want)
		}
	}
}

func TestSingleRankMatchesFiveCityOptimum(t *testing.T) {
	m := fiveCityMatrix(t)
	res := runDistributed(t, m, 1, 1)
	if res.Cost != 26 {
		t.Errorf("Cost = %d, want 26", res.Cost)
	}
	if len(res.Path) != 6 || res.Path[0] != 0 || res.Path[5] != 0 {
		t.Errorf("Path = %v, want a 6-element closed tour", res.Path)
	}
}

func TestDegenerateSingleCity(t *testing.T) {
	m, err := distance.New(1, []int{0})
	if err != nil {
		t.Fatalf("distance.New() error = %v", err)
	}
	res := runDistributed(t, m, 1, 1)
	if res.Cost != 0 || len(res.Path) != 2 || res.Path[0] != 0 || res.Path[1] != 0 {
		t.Errorf("Result = %+v, want cost 0 and path [0 0]", res)
	}
}

func TestMoreRanksThanCities(t *testing.T) {
	m := fiveCityMatrix(t)
	res := runDistributed(t, m, 8, 1)
	if res.Cost != 26 {
		t.Errorf("Cost = %d, want 26 (world_size > N-1 cities)", res.Cost)
	}
}

func TestResourceExhaustedPropagatesAsError(t *testing.T) {
	m := fiveCityMatrix(t)
	factory := transport.NewMemoryFactory()
	cfg := config.DefaultConfig()
	cfg.MaxStackDepth = 1

	coord := New(cfg, factory, nil, nil)
	_, err := coord.Run(m)
	if !errors.Is(err, solvererr.ErrResourceExhausted) {
		t.Errorf("Run() error = %v, want ErrResourceExhausted", err)
	}
}

func TestRankRangeCoversEveryCityExactlyOnce(t *testing.T) {
	total, parts := 11, 4
	covered := make([]bool, total)
	for idx := 0; idx < parts; idx++ {
		start, end := rankRange(total, parts, idx)
		for i := start; i < end; i++ {
			if covered[i] {
				t.Fatalf("index %d covered by more than one rank", i)
			}
			covered[i] = true
		}
	}
	for i, ok := range covered {
		if !ok {
			t.Errorf("index %d never covered", i)
		}
	}
}

func TestPickBetterPrefersLowerCostThenLowerRank(t *testing.T) {
	a := reduction{Rank: 2, Cost: 10}
	b := reduction{Rank: 1, Cost: 10}
	if got := pickBetter(a, b); got.Rank != 1 {
		t.Errorf("pickBetter() = rank %d, want 1 (tie broken by lower rank)", got.Rank)
	}

	c := reduction{Rank: 3, Cost: 5}
	if got := pickBetter(a, c); got.Rank != 3 {
		t.Errorf("pickBetter() = rank %d, want 3 (strictly lower cost)", got.Rank)
	}

	noSolution := reduction{Rank: 0, NoSolution: true}
	if got := pickBetter(noSolution, a); got.Rank != 2 {
		t.Errorf("pickBetter() = rank %d, want 2 (any tour beats no solution)", got.Rank)
	}
}
