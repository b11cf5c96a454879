package coordinator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tspbb/solver/internal/parallel"
	"github.com/tspbb/solver/internal/solverlog"
	"github.com/tspbb/solver/internal/solvererr"
)

// The reduction survey retries on the same bounded, periodic-retry
// shape as the matrix broadcast: rank 0 resurveys until every other
// rank has replied at least once or the overall deadline passes.
const (
	resultSurveyRoundTimeout    = 30 * time.Millisecond
	resultReduceOverallDeadline = 2 * time.Second
	resultRespondentPollTimeout = 30 * time.Millisecond
)

// reduction is the wire message each rank sends into the survey: its
// own local best tour, or a flag marking it as errored or empty.
type reduction struct {
	Rank       int   `json:"rank"`
	Cost       int   `json:"cost"`
	Path       []int `json:"path"`
	NoSolution bool  `json:"no_solution"`
	Errored    bool  `json:"errored"`
}

func (c *Coordinator) reduce(report parallel.Report, start time.Time, log solverlog.Logger) (Result, error) {
	local := reduction{Rank: c.cfg.Rank}
	if report.Err != nil {
		local.Errored = true
	} else {
		local.Cost = report.BestCost
		local.Path = report.BestPath
		local.NoSolution = report.BestPath == nil
	}

	if c.cfg.WorldSize <= 1 {
		if local.Errored {
			return Result{Elapsed: time.Since(start), WorldSize: c.cfg.WorldSize}, solvererr.ErrResourceExhausted
		}
		return c.finalize(local, start, log)
	}
	if c.cfg.Rank == 0 {
		return c.reduceAsSurveyor(local, start, log)
	}
	return c.reduceAsRespondent(local)
}

func (c *Coordinator) reduceAsSurveyor(local reduction, start time.Time, log solverlog.Logger) (Result, error) {
	surveyor, err := c.factory.NewSurveyorSocket()
	if err != nil {
		return Result{}, err
	}
	defer surveyor.Close()
	if err := surveyor.Listen(c.cfg.ResultAddr); err != nil {
		return Result{}, err
	}
	_ = surveyor.SetSurveyTime(resultSurveyRoundTimeout)

	best := local
	anyErrored := local.Errored
	seen := map[int]bool{local.Rank: true}
	target := c.cfg.WorldSize
	deadline := time.Now().Add(resultReduceOverallDeadline)

	for len(seen) < target && time.Now().Before(deadline) {
		if err := surveyor.Send([]byte("reduce")); err != nil {
			return Result{}, err
		}
		for {
			data, err := surveyor.Recv()
			if err != nil {
				break
			}
			var r reduction
			if err := json.Unmarshal(data, &r); err != nil {
				continue
			}
			if seen[r.Rank] {
				continue
			}
			seen[r.Rank] = true
			if r.Errored {
				anyErrored = true
				continue
			}
			best = pickBetter(best, r)
		}
	}

	if len(seen) < target {
		return Result{}, fmt.Errorf("coordinator: only %d/%d ranks responded to the reduction survey", len(seen), target)
	}
	log.Debug("reduction complete", solverlog.Count(len(seen)))
	if anyErrored {
		return Result{Elapsed: time.Since(start), WorldSize: target}, solvererr.ErrResourceExhausted
	}
	return c.finalize(best, start, log)
}

func (c *Coordinator) reduceAsRespondent(local reduction) (Result, error) {
	respondent, err := c.factory.NewRespondentSocket()
	if err != nil {
		return Result{}, err
	}
	defer respondent.Close()
	if err := respondent.Dial(c.cfg.ResultAddr); err != nil {
		return Result{}, err
	}
	_ = respondent.SetRecvDeadline(resultRespondentPollTimeout)

	data, err := json.Marshal(local)
	if err != nil {
		return Result{}, err
	}

	deadline := time.Now().Add(resultReduceOverallDeadline)
	replied := false
	for time.Now().Before(deadline) {
		if _, err := respondent.Recv(); err != nil {
			if replied {
				break
			}
			continue
		}
		if err := respondent.Send(data); err != nil {
			return Result{}, err
		}
		replied = true
	}
	if !replied {
		return Result{}, fmt.Errorf("coordinator: rank %d never received a reduction survey", c.cfg.Rank)
	}

	if local.Errored {
		return Result{}, solvererr.ErrResourceExhausted
	}
	return Result{Cost: local.Cost, Path: local.Path, NoSolution: local.NoSolution}, nil
}

func (c *Coordinator) finalize(best reduction, start time.Time, log solverlog.Logger) (Result, error) {
	elapsed := time.Since(start)
	if best.NoSolution {
		if c.metrics != nil {
			c.metrics.RecordReduction("no_solution")
		}
		log.Warn("no solution found")
		return Result{NoSolution: true, Elapsed: elapsed, WorldSize: c.cfg.WorldSize}, solvererr.ErrNoSolution
	}
	if c.metrics != nil {
		c.metrics.RecordReduction("optimal")
	}
	log.Info("global optimum found", solverlog.BestCost(best.Cost), solverlog.Latency(elapsed))
	return Result{Cost: best.Cost, Path: best.Path, Elapsed: elapsed, WorldSize: c.cfg.WorldSize}, nil
}

// pickBetter returns whichever reduction has the lower cost, breaking
// ties toward the lower rank so every rank that recomputes the
// reduction (there is only one, rank 0, but the rule must still be
// deterministic) picks the same winner.
func pickBetter(a, b reduction) reduction {
	if a.NoSolution && b.NoSolution {
		if b.Rank < a.Rank {
			return b
		}
		return a
	}
	if a.NoSolution {
		return b
	}
	if b.NoSolution {
		return a
	}
	if b.Cost < a.Cost {
		return b
	}
	if b.Cost == a.Cost && b.Rank < a.Rank {
		return b
	}
	return a
}
