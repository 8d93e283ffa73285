package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/recgemm/internal/gemm"
	"github.com/samcharles93/recgemm/internal/logger"
	"github.com/samcharles93/recgemm/internal/matrix"
)

// DefaultRuns is the number of timed runs per routine.
const DefaultRuns = 100

var ErrInvalidOptions = errors.New("bench: invalid options")

// Options describes one benchmark.
type Options struct {
	// Dimension is the size of the square matrices.
	Dimension int
	// Runs is the number of timed calls per routine.
	Runs int
	// Warmup calls run before timing and write to throwaway outputs.
	Warmup int
	// Tolerance defaults to DefaultTolerance when zero.
	Tolerance float64
}

func (o Options) validate() error {
	if o.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidOptions, o.Dimension)
	}
	if o.Runs <= 0 {
		return fmt.Errorf("%w: runs must be positive, got %d", ErrInvalidOptions, o.Runs)
	}
	if o.Warmup < 0 {
		return fmt.Errorf("%w: warmup must not be negative, got %d", ErrInvalidOptions, o.Warmup)
	}
	if o.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must not be negative, got %g", ErrInvalidOptions, o.Tolerance)
	}
	return nil
}

// Runner times the engine against a reference routine.
type Runner struct {
	Config    gemm.Config
	Reference Reference

	// Tuner, when set, picks the engine configuration for the benchmark
	// shape before timing starts.
	Tuner *gemm.Autotuner
}

// Run builds the inputs, times opts.Runs reference calls and opts.Runs engine
// calls, and compares the results. Both outputs start at zero and accumulate
// across all timed runs, so they hold Runs*A*B when compared. ctx is checked
// between runs; a started multiply always completes.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = DefaultTolerance
	}
	ref := r.Reference
	if ref == nil {
		ref = Gonum{}
	}
	log := logger.FromContext(ctx).With("component", "bench")

	n := opts.Dimension
	a, b := SinCosInputs(n, n, n)

	cfg := r.Config
	autotuned := false
	if r.Tuner != nil {
		cfg = r.Tuner.Tune(gemm.Shape{M: n, P: n, N: n}, cfg, func(c gemm.Config) float64 {
			return measure(c, a, b)
		})
		autotuned = true
		log.Info("autotuned config", "config", cfg.String())
	}
	engine, err := gemm.New(cfg)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Dimension: n,
		Config:    cfg,
		Workers:   engine.Workers(),
		Autotuned: autotuned,
		Reference: ref.Name(),
		System:    DetectSystem(),
		Tolerance: opts.Tolerance,
	}
	log = log.With("run_id", report.RunID)
	log.Info("starting benchmark", "dimension", n, "runs", opts.Runs, "reference", ref.Name(), "config", cfg.String())

	if opts.Warmup > 0 {
		scratch := matrix.New(n, n)
		for i := range opts.Warmup {
			log.Debug("warmup run", "run", i+1)
			ref.MultiplyAccumulate(a, b, scratch)
			if err := engine.MultiplyAccumulate(a, b, scratch); err != nil {
				return nil, fmt.Errorf("warmup run %d: %w", i+1, err)
			}
		}
	}

	cRef := matrix.New(n, n)
	refTimes, err := timeRuns(ctx, opts.Runs, func() error {
		ref.MultiplyAccumulate(a, b, cRef)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reference runs: %w", err)
	}
	report.ReferenceStats = ComputeStats(refTimes)
	log.Debug("reference done", "mean", report.ReferenceStats.Mean)

	cOpt := matrix.New(n, n)
	optTimes, err := timeRuns(ctx, opts.Runs, func() error {
		return engine.MultiplyAccumulate(a, b, cOpt)
	})
	if err != nil {
		return nil, fmt.Errorf("engine runs: %w", err)
	}
	report.EngineStats = ComputeStats(optTimes)
	log.Debug("engine done", "mean", report.EngineStats.Mean)

	report.MaxRelativeError, err = MaxRelativeError(cOpt, cRef)
	if err != nil {
		return nil, err
	}
	log.Info("benchmark finished",
		"max_relative_error", report.MaxRelativeError,
		"passed", report.Passed(),
		"speedup", report.Speedup())
	return report, nil
}

func timeRuns(ctx context.Context, runs int, fn func() error) ([]time.Duration, error) {
	times := make([]time.Duration, 0, runs)
	for i := range runs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		if err := fn(); err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		times = append(times, time.Since(start))
	}
	return times, nil
}

// measure returns the throughput of one engine call with cfg in flops per
// second. Invalid configurations score 0.
func measure(cfg gemm.Config, a, b matrix.Matrix) float64 {
	e, err := gemm.New(cfg)
	if err != nil {
		return 0
	}
	c := matrix.New(a.Rows, b.Cols)
	start := time.Now()
	if err := e.MultiplyAccumulate(a, b, c); err != nil {
		return 0
	}
	elapsed := time.Since(start)
	if elapsed <= 0 {
		return 0
	}
	return FLOPs(a.Rows, a.Cols, b.Cols) / elapsed.Seconds()
}
