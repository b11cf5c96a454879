// Command tspbench sweeps world size and thread count over one fixed
// distance-matrix instance and prints the resulting cost/latency table,
// the measurement counterpart to spec.md §8's rank/thread-independence
// scenario. It is not part of the core solver's external contract.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tspbb/solver/internal/config"
	"github.com/tspbb/solver/internal/coordinator"
	"github.com/tspbb/solver/internal/distance"
	"github.com/tspbb/solver/internal/solverlog"
	"github.com/tspbb/solver/internal/transport"
)

var worldSizes = []int{1, 2, 4, 8}
var threadCounts = []int{1, 2, 4}

func main() {
	path := flag.String("file", "", "Path to a distance-matrix file")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "tspbench: -file is required")
		os.Exit(1)
	}

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tspbench: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	mat, err := distance.ParseFile(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tspbench: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rank/thread independence sweep\n")
	fmt.Printf("===============================\n")
	fmt.Printf("Instance: %s (%d cities)\n\n", *path, mat.N())
	fmt.Printf("%-10s %-10s %-10s %-12s\n", "world_size", "threads", "cost", "wall_time")

	var wantCost int
	first := true
	mismatch := false

	for _, w := range worldSizes {
		for _, th := range threadCounts {
			cost, elapsed := sweepOne(mat, w, th)
			fmt.Printf("%-10d %-10d %-10d %-12s\n", w, th, cost, elapsed.Round(time.Millisecond))
			if first {
				wantCost = cost
				first = false
				continue
			}
			if cost != wantCost {
				mismatch = true
			}
		}
	}

	fmt.Println()
	if mismatch {
		fmt.Println("FAIL: cost varied across world_size/threads combinations")
		os.Exit(1)
	}
	fmt.Printf("OK: every combination agrees on cost %d\n", wantCost)
}

// sweepOne runs one (worldSize, threads) combination in-process, one
// goroutine per simulated rank sharing an in-memory transport, and
// returns rank 0's cost and the wall-clock time for the slowest rank.
func sweepOne(mat *distance.Matrix, worldSize, threads int) (cost int, elapsed time.Duration) {
	factory := transport.NewMemoryFactory()
	addrs := transport.DefaultAddresses()

	var wg sync.WaitGroup
	results := make([]coordinator.Result, worldSize)

	start := time.Now()
	for rank := 0; rank < worldSize; rank++ {
		cfg := config.DefaultConfig()
		cfg.WorldSize = worldSize
		cfg.Rank = rank
		cfg.Threads = threads
		cfg.MatrixAddr = addrs.MatrixAddr
		cfg.ResultAddr = addrs.ResultAddr

		coord := coordinator.New(cfg, factory, solverlog.NewNopLogger(), nil)

		wg.Add(1)
		go func(rank int, coord *coordinator.Coordinator) {
			defer wg.Done()
			var local *distance.Matrix
			if rank == 0 {
				local = mat
			}
			res, err := coord.Run(local)
			if err == nil {
				results[rank] = res
			}
		}(rank, coord)
	}
	wg.Wait()

	return results[0].Cost, time.Since(start)
}
