// Command tspsolve is the exact symmetric-TSP branch-and-bound solver
// described in spec.md §6: one positional argument, the path to a
// distance file, and two lines of output from rank 0 on success.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/tspbb/solver/internal/config"
	"github.com/tspbb/solver/internal/coordinator"
	"github.com/tspbb/solver/internal/distance"
	"github.com/tspbb/solver/internal/metrics"
	"github.com/tspbb/solver/internal/solverlog"
	"github.com/tspbb/solver/internal/solvererr"
	"github.com/tspbb/solver/internal/transport"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	path, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := solverlog.NewDefaultLogger()
	logger.SetLevel(solverlog.InfoLevel)

	var reg *metrics.Registry
	if cfg.MetricsAddr != "" {
		reg = metrics.NewRegistry()
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	var mat *distance.Matrix
	if cfg.Rank == 0 {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(stderr, "tspsolve: %v\n", err)
			return exitCodeFor(solvererr.ErrUsage)
		}
		defer f.Close()

		mat, err = distance.ParseFile(f)
		if err != nil {
			fmt.Fprintf(stderr, "tspsolve: %v\n", err)
			return exitCodeFor(err)
		}
	}

	coord := coordinator.New(cfg, transport.Default(), logger, reg)
	result, err := coord.Run(mat)
	if err != nil && !errors.Is(err, solvererr.ErrNoSolution) {
		fmt.Fprintf(stderr, "tspsolve: %v\n", err)
		return exitCodeFor(err)
	}

	if cfg.Rank != 0 {
		return 0
	}

	if errors.Is(err, solvererr.ErrNoSolution) || result.NoSolution {
		fmt.Fprintln(stdout, "No solution found!")
		return 0
	}

	fmt.Fprintf(stdout, "Optimal tour cost: %d   time: %.3f s   ranks: %d\n",
		result.Cost, result.Elapsed.Seconds(), result.WorldSize)
	fmt.Fprintf(stdout, "Optimal path:")
	for _, city := range result.Path {
		fmt.Fprintf(stdout, " %d", city)
	}
	fmt.Fprintln(stdout)
	return 0
}

// parseArgs enforces spec.md §6's one-positional-argument contract.
func parseArgs(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: usage: tspsolve <distance-file>", solvererr.ErrUsage)
	}
	return args[0], nil
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, solvererr.ErrUsage):
		return 1
	case errors.Is(err, solvererr.ErrMalformedMatrix):
		return 2
	case errors.Is(err, solvererr.ErrResourceExhausted):
		return 3
	default:
		return 1
	}
}

func serveMetrics(addr string, reg *metrics.Registry, log solverlog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics listener stopped", solverlog.Error(err))
	}
}
