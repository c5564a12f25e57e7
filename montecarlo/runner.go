// Package montecarlo replicates a random trial over a pool of workers and
// reduces the outcomes to percentile statistics.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Trial runs one independent replication and returns its interference in
// dBm. rng is private to the call.
type Trial func(ctx context.Context, index int, rng *rand.Rand) (float64, error)

// Runner executes trials in parallel. Trial i always receives a generator
// seeded by TrialSeed(Seed, i), so results do not depend on Workers or on
// scheduling.
type Runner struct {
	Seed    uint64
	Workers int
	Metrics *Metrics
	Log     log.FieldLogger
}

// NewRunner returns a Runner logging to the standard logger. workers < 1
// means one per CPU.
func NewRunner(seed uint64, workers int) *Runner {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Runner{Seed: seed, Workers: workers, Log: log.StandardLogger()}
}

// WithSeed returns a copy of r using seed.
func (r *Runner) WithSeed(seed uint64) *Runner {
	result := *r
	result.Seed = seed
	return &result
}

// Rand returns the generator of trial index.
func (r *Runner) Rand(index int) *rand.Rand {
	return NewRand(TrialSeed(r.Seed, uint64(index)))
}

func (r *Runner) logger() log.FieldLogger {
	if r.Log == nil {
		return log.StandardLogger()
	}
	return r.Log
}

// ForEach calls fn for indices 0..n-1 on the worker pool. The first error
// cancels the remaining calls. A cancelled ctx is an error even when no call
// was scheduled.
func (r *Runner) ForEach(ctx context.Context, n int, fn func(ctx context.Context, index int, rng *rand.Rand) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i, r.Rand(i))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Simulate runs trial n times and reduces the outcomes at percentile. A
// failing trial fails the whole run.
func (r *Runner) Simulate(ctx context.Context, trial Trial, n int, percentile float64) (*Result, error) {
	if n < 1 {
		return nil, fmt.Errorf("montecarlo: %d trials, want >= 1", n)
	}
	samples := make([]float64, n)
	err := r.ForEach(ctx, n, func(ctx context.Context, i int, rng *rand.Rand) error {
		start := time.Now()
		v, err := trial(ctx, i, rng)
		r.Metrics.observeTrial(start, err)
		if err != nil {
			return fmt.Errorf("trial %d: %w", i, err)
		}
		samples[i] = v
		r.logger().WithFields(log.Fields{
			"trial":            i,
			"interference_dbm": v,
		}).Info("trial done")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Summarize(samples, percentile), nil
}

// CurveTrial runs one replication and returns its interference at every
// point of a grid.
type CurveTrial func(ctx context.Context, index int, rng *rand.Rand) ([]float64, error)

// SimulateCurves runs trial n times and keeps every curve, indexed by trial.
// Summarize one grid point with SummarizeAt.
func (r *Runner) SimulateCurves(ctx context.Context, trial CurveTrial, n int) ([][]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("montecarlo: %d trials, want >= 1", n)
	}
	curves := make([][]float64, n)
	err := r.ForEach(ctx, n, func(ctx context.Context, i int, rng *rand.Rand) error {
		start := time.Now()
		curve, err := trial(ctx, i, rng)
		r.Metrics.observeTrial(start, err)
		if err != nil {
			return fmt.Errorf("trial %d: %w", i, err)
		}
		if len(curve) == 0 {
			return fmt.Errorf("trial %d: empty curve", i)
		}
		curves[i] = curve
		r.logger().WithFields(log.Fields{
			"trial":            i,
			"interference_dbm": curve[0],
			"points":           len(curve),
		}).Info("trial done")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return curves, nil
}
