// Package bench times the gemm engine against a trusted reference routine
// and reports how far apart their results are.
package bench

import (
	"math"

	"github.com/samcharles93/recgemm/internal/matrix"
)

// SinCosInputs returns A (m x p) with A(i,j) = sin(i+j)+2 and B (p x n) with
// B(i,j) = cos(i+j)+2. Every element lies in [1, 3], so products never
// cancel to zero and relative errors stay well defined.
func SinCosInputs(m, p, n int) (a, b matrix.Matrix) {
	a = matrix.FromFunc(m, p, func(i, j int) float64 {
		return math.Sin(float64(i+j)) + 2
	})
	b = matrix.FromFunc(p, n, func(i, j int) float64 {
		return math.Cos(float64(i+j)) + 2
	})
	return a, b
}

// FLOPs returns the floating-point operation count of one (m x p) * (p x n)
// multiply-accumulate.
func FLOPs(m, p, n int) float64 {
	return 2 * float64(m) * float64(p) * float64(n)
}
