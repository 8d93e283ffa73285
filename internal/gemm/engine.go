// Package gemm computes C += A*B for dense float64 matrices.
//
// Large problems are split recursively into output quadrants that run in
// parallel; small ones are handled by a cache-blocked kernel that stages
// tiles of A, B and C in contiguous scratch buffers. Concurrent tasks always
// write disjoint regions of C, so the engine needs no locks.
package gemm

import (
	"sync"

	"github.com/samcharles93/recgemm/internal/forkjoin"
	"github.com/samcharles93/recgemm/internal/matrix"
)

// Engine is a configured multiply engine. It is safe for concurrent use as
// long as concurrent calls do not write overlapping regions of C.
type Engine struct {
	cfg     Config
	sched   *forkjoin.Scheduler
	scratch sync.Pool
}

// New validates cfg and returns an Engine using it.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:   cfg,
		sched: forkjoin.New(cfg.Workers),
	}
	e.scratch.New = func() any { return newScratch(cfg) }
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Workers returns the resolved parallelism budget.
func (e *Engine) Workers() int {
	return e.sched.Workers()
}

// MultiplyAccumulate computes c += a*b.
//
// Shapes are checked before any element is read or written; incompatible
// operands yield a *ShapeError and leave c untouched. c must not overlap a or
// b. An empty problem is a no-op.
func (e *Engine) MultiplyAccumulate(a, b, c matrix.Matrix) error {
	if err := CheckShapes(a, b, c); err != nil {
		return err
	}
	e.multiply(a, b, c)
	return nil
}

// Multiply returns a newly allocated a*b.
func (e *Engine) Multiply(a, b matrix.Matrix) (matrix.Matrix, error) {
	c := matrix.New(a.Rows, b.Cols)
	if err := e.MultiplyAccumulate(a, b, c); err != nil {
		return matrix.Matrix{}, err
	}
	return c, nil
}

var defaultEngine = sync.OnceValue(func() *Engine {
	e, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return e
})

// MultiplyAccumulate computes c += a*b with the default configuration.
func MultiplyAccumulate(a, b, c matrix.Matrix) error {
	return defaultEngine().MultiplyAccumulate(a, b, c)
}
