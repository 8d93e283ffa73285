package gemm

import (
	"errors"
	"fmt"

	"github.com/samcharles93/recgemm/internal/matrix"
)

var (
	ErrShapeMismatch = errors.New("gemm: shape mismatch")
	ErrInvalidConfig = errors.New("gemm: invalid config")
)

// ShapeError describes operands that cannot form C += A*B.
type ShapeError struct {
	A, B, C [2]int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("gemm: shape mismatch: A is %dx%d, B is %dx%d, C is %dx%d",
		e.A[0], e.A[1], e.B[0], e.B[1], e.C[0], e.C[1])
}

func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// CheckShapes returns a *ShapeError unless a.Cols == b.Rows,
// a.Rows == c.Rows and b.Cols == c.Cols.
func CheckShapes(a, b, c matrix.Matrix) error {
	if a.Cols == b.Rows && a.Rows == c.Rows && b.Cols == c.Cols {
		return nil
	}
	return &ShapeError{
		A: [2]int{a.Rows, a.Cols},
		B: [2]int{b.Rows, b.Cols},
		C: [2]int{c.Rows, c.Cols},
	}
}
