// Package coordinator implements the distributed half of spec.md §4.5's
// two-level concurrency model: owner-computes seed partitioning across
// ranks, a broadcast of the distance matrix, one Parallel Driver
// invocation per rank, and a survey-based reduction to a single global
// optimum.
package coordinator

import (
	"time"

	"github.com/google/uuid"

	"github.com/tspbb/solver/internal/bound"
	"github.com/tspbb/solver/internal/config"
	"github.com/tspbb/solver/internal/distance"
	"github.com/tspbb/solver/internal/metrics"
	"github.com/tspbb/solver/internal/parallel"
	"github.com/tspbb/solver/internal/search"
	"github.com/tspbb/solver/internal/solverlog"
	"github.com/tspbb/solver/internal/transport"
)

// Coordinator runs one rank's share of a distributed solve: obtaining
// the distance matrix, running its local Parallel Driver, and reducing
// every rank's local best tour to a single global one.
type Coordinator struct {
	cfg     config.Config
	factory transport.SocketFactory
	logger  solverlog.Logger
	metrics *metrics.Registry
}

// New builds a Coordinator for one rank. logger and reg may be nil (a
// NopLogger and no metrics recording are used, respectively).
func New(cfg config.Config, factory transport.SocketFactory, logger solverlog.Logger, reg *metrics.Registry) *Coordinator {
	if logger == nil {
		logger = solverlog.NewNopLogger()
	}
	return &Coordinator{cfg: cfg, factory: factory, logger: logger, metrics: reg}
}

// Run solves the instance this rank owns. Rank 0 must pass the parsed
// matrix; every other rank passes nil and receives it via the matrix
// broadcast.
func (c *Coordinator) Run(local *distance.Matrix) (Result, error) {
	traceID := uuid.New().String()
	log := c.logger.With(
		solverlog.TraceID(traceID),
		solverlog.Rank(c.cfg.Rank),
		solverlog.WorldSize(c.cfg.WorldSize),
	)
	start := time.Now()

	mat, err := c.obtainMatrix(local)
	if err != nil {
		log.Error("failed to obtain distance matrix", solverlog.Error(err))
		return Result{}, err
	}
	log.Info("matrix ready", solverlog.Int("n", mat.N()), solverlog.Uint64("checksum", mat.Checksum()))

	if mat.N() == 1 {
		return c.finalizeTrivial(start)
	}

	oracle := bound.New(c.cfg.Scheme(), mat)
	seeds := c.localSeeds(mat, oracle)
	log.Debug("seeded local search", solverlog.Int("seed_count", len(seeds)))

	driver, err := parallel.NewDriver(c.cfg.Threads)
	if err != nil {
		return Result{}, err
	}

	searchStart := time.Now()
	report := driver.Run(seeds, mat, oracle, c.cfg.MaxStackDepth)
	searchElapsed := time.Since(searchStart)

	if c.metrics != nil {
		c.metrics.RecordSearch(c.cfg.Rank, report.Stats, report.BestCost, searchElapsed)
	}
	log.Info("local search complete",
		solverlog.NodesPopped(report.Stats.NodesPopped),
		solverlog.NodesPruned(report.Stats.NodesPrunedByBound+report.Stats.NodesPrunedByCost),
		solverlog.ToursCompleted(report.Stats.ToursCompleted),
		solverlog.Latency(searchElapsed))

	return c.reduce(report, start, log)
}

// localSeeds builds this rank's depth-2 first-hop seed tasks: the
// balanced, contiguous slice of cities 1..N-1 this rank owns, per
// spec.md §4.5's owner-computes partitioning.
func (c *Coordinator) localSeeds(mat *distance.Matrix, oracle bound.Oracle) []search.Task {
	n := mat.N()
	cities := make([]int, 0, n-1)
	for city := 1; city < n; city++ {
		cities = append(cities, city)
	}

	start, end := rankRange(len(cities), c.cfg.WorldSize, c.cfg.Rank)
	mine := cities[start:end]

	seeds := make([]search.Task, 0, len(mine))
	for _, city := range mine {
		cost := mat.At(0, city)
		mask := 1 | (1 << city)
		seeds = append(seeds, search.Task{
			Depth:       2,
			Cost:        cost,
			LastCity:    city,
			VisitedMask: mask,
			Path:        []int{0, city},
			LB:          oracle.FromScratch(cost, mask),
		})
	}
	return seeds
}

// rankRange computes the balanced, contiguous [start, end) range of the
// total seed-index space this rank owns: the first total%parts ranks
// get one extra item, exactly as internal/parallel partitions seeds
// across threads one level down.
func rankRange(total, parts, idx int) (start, end int) {
	if parts > total {
		parts = total
	}
	if parts <= 0 || idx >= parts {
		return 0, 0
	}
	base := total / parts
	extra := total % parts

	lesser := idx
	if lesser > extra {
		lesser = extra
	}
	start = idx*base + lesser

	size := base
	if idx < extra {
		size++
	}
	return start, start + size
}

// finalizeTrivial handles N=1: there is no first city to seed, and the
// only tour is the zero-length loop back to the start.
func (c *Coordinator) finalizeTrivial(start time.Time) (Result, error) {
	if c.metrics != nil {
		c.metrics.RecordReduction("optimal")
	}
	if c.cfg.Rank != 0 {
		return Result{}, nil
	}
	return Result{Cost: 0, Path: []int{0, 0}, Elapsed: time.Since(start), WorldSize: c.cfg.WorldSize}, nil
}
