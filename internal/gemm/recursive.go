package gemm

import "github.com/samcharles93/recgemm/internal/matrix"

// multiply accumulates a*b into c. Shapes must already be compatible.
//
// Outputs wider or taller than the threshold are split at the half points of
// all three dimensions. Each C quadrant receives two contributions, one per
// half of the shared dimension. The four quadrants are disjoint, so the
// contributions of one half run as a single fork-join wave; the second wave
// starts only after the first has joined, since both write the same
// quadrants.
func (e *Engine) multiply(a, b, c matrix.Matrix) {
	if c.Empty() || a.Cols == 0 {
		return
	}
	if max(c.Rows, c.Cols) <= e.cfg.Threshold {
		e.base(a, b, c)
		return
	}

	m2 := matrix.Half(c.Rows)
	n2 := matrix.Half(c.Cols)
	p2 := matrix.Half(a.Cols)

	c11, c12, c21, c22 := c.Quadrants(m2, n2)
	a11, a12, a21, a22 := a.Quadrants(m2, p2)
	b11, b12, b21, b22 := b.Quadrants(p2, n2)

	e.sched.Run(
		func() { e.multiply(a11, b11, c11) },
		func() { e.multiply(a11, b12, c12) },
		func() { e.multiply(a21, b11, c21) },
		func() { e.multiply(a21, b12, c22) },
	)
	e.sched.Run(
		func() { e.multiply(a12, b21, c11) },
		func() { e.multiply(a12, b22, c12) },
		func() { e.multiply(a22, b21, c21) },
		func() { e.multiply(a22, b22, c22) },
	)
}

func (e *Engine) base(a, b, c matrix.Matrix) {
	s := e.scratch.Get().(*scratch)
	baseKernel(e.cfg, a, b, c, s)
	e.scratch.Put(s)
}
