package matrix

import (
	"math/rand"

	"gonum.org/v1/gonum/blas/blas64"
)

// Matrix is a dense row-major region of float64 values.
//
// Rows and Cols give the extent of the region. Stride is the number of
// elements between the starts of two consecutive rows in the backing
// storage, so a Matrix can describe a sub-region of a larger matrix without
// copying. Data[0] is element (0, 0) and element (i, j) lives at
// Data[i*Stride+j].
//
// A Matrix is a value: copying it copies the descriptor, never the elements.
// The matrix returned by New owns its storage; every view derived from it
// (View, SplitRows, SplitCols, Quadrants) shares that storage.
type Matrix struct {
	Rows, Cols int
	Stride     int
	Data       []float64
}

// New allocates a zeroed rows x cols matrix with Stride == cols.
func New(rows, cols int) Matrix {
	if rows < 0 || cols < 0 {
		panic("matrix: negative dimension")
	}
	return Matrix{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   make([]float64, rows*cols),
	}
}

// FromData wraps data as a rows x cols matrix. len(data) must be rows*cols.
func FromData(rows, cols int, data []float64) Matrix {
	if rows < 0 || cols < 0 {
		panic("matrix: negative dimension")
	}
	if rows*cols != len(data) {
		panic("matrix: data length mismatch")
	}
	return Matrix{
		Rows:   rows,
		Cols:   cols,
		Stride: cols,
		Data:   data,
	}
}

// FromFunc builds a rows x cols matrix whose element (i, j) is f(i, j).
func FromFunc(rows, cols int, f func(i, j int) float64) Matrix {
	m := New(rows, cols)
	for i := 0; i < rows; i++ {
		row := m.Row(i)
		for j := range row {
			row[j] = f(i, j)
		}
	}
	return m
}

// FillRand fills the region with reproducible pseudo-random values in [1, 2).
// Values are kept strictly positive so relative-error checks against a
// reference stay meaningful.
func FillRand(m Matrix, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < m.Rows; i++ {
		row := m.Row(i)
		for j := range row {
			row[j] = 1 + rng.Float64()
		}
	}
}

// Empty reports whether the region has no elements.
func (m Matrix) Empty() bool {
	return m.Rows == 0 || m.Cols == 0
}

// Size returns the number of elements in the region.
func (m Matrix) Size() int {
	return m.Rows * m.Cols
}

// At returns element (i, j).
func (m Matrix) At(i, j int) float64 {
	m.checkIndex(i, j)
	return m.Data[i*m.Stride+j]
}

// Set stores v at element (i, j).
func (m Matrix) Set(i, j int, v float64) {
	m.checkIndex(i, j)
	m.Data[i*m.Stride+j] = v
}

func (m Matrix) checkIndex(i, j int) {
	if i < 0 || i >= m.Rows || j < 0 || j >= m.Cols {
		panic("matrix: index out of range")
	}
}

// Row returns row i as a stride-1 slice of length Cols. Writes through the
// slice update the matrix.
func (m Matrix) Row(i int) []float64 {
	if i < 0 || i >= m.Rows {
		panic("matrix: row index out of range")
	}
	if m.Cols == 0 {
		return nil
	}
	start := i * m.Stride
	return m.Data[start : start+m.Cols : start+m.Cols]
}

// Zero clears every element of the region. Storage outside the region, such
// as the gap between the end of one row and the start of the next, is left
// alone.
func (m Matrix) Zero() {
	for i := 0; i < m.Rows; i++ {
		clear(m.Row(i))
	}
}

// Clone returns a compact copy of the region that owns its storage.
func (m Matrix) Clone() Matrix {
	out := New(m.Rows, m.Cols)
	for i := 0; i < m.Rows; i++ {
		copy(out.Row(i), m.Row(i))
	}
	return out
}

// General returns the region as a gonum blas64.General sharing the same
// storage.
func (m Matrix) General() blas64.General {
	return blas64.General{
		Rows:   m.Rows,
		Cols:   m.Cols,
		Stride: m.Stride,
		Data:   m.Data,
	}
}
