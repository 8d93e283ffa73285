package bench

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/samcharles93/recgemm/internal/matrix"
)

// Reference is an independently trusted C += A*B routine. Callers guarantee
// compatible shapes.
type Reference interface {
	Name() string
	MultiplyAccumulate(a, b, c matrix.Matrix)
}

// Gonum delegates to the BLAS implementation registered with gonum's blas64
// package (pure Go by default, netlib when a cgo build registers it).
type Gonum struct{}

func (Gonum) Name() string { return "gonum" }

func (Gonum) MultiplyAccumulate(a, b, c matrix.Matrix) {
	// blas64 rejects zero strides, which empty matrices may carry.
	if c.Empty() || a.Cols == 0 {
		return
	}
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, a.General(), b.General(), 1, c.General())
}

// Naive is the textbook i-j-k triple loop.
type Naive struct{}

func (Naive) Name() string { return "naive" }

func (Naive) MultiplyAccumulate(a, b, c matrix.Matrix) {
	for i := 0; i < c.Rows; i++ {
		cRow := c.Row(i)
		aRow := a.Row(i)
		for j := range cRow {
			sum := cRow[j]
			for k, aik := range aRow {
				sum += aik * b.Data[k*b.Stride+j]
			}
			cRow[j] = sum
		}
	}
}

// ReferenceNames lists the names accepted by ReferenceByName.
var ReferenceNames = []string{"gonum", "naive"}

// ReferenceByName returns the reference routine with the given name.
func ReferenceByName(name string) (Reference, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gonum", "blas", "":
		return Gonum{}, nil
	case "naive":
		return Naive{}, nil
	default:
		return nil, fmt.Errorf("unknown reference %q (want one of %s)", name, strings.Join(ReferenceNames, ", "))
	}
}
