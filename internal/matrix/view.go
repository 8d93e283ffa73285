package matrix

// View returns the sub-region rows [i0, i1) x cols [j0, j1) of m. The view
// shares storage with m and keeps its stride. A view with zero rows or zero
// columns has no addressable elements.
func (m Matrix) View(i0, i1, j0, j1 int) Matrix {
	if i0 < 0 || i0 > i1 || i1 > m.Rows || j0 < 0 || j0 > j1 || j1 > m.Cols {
		panic("matrix: view bounds out of range")
	}
	v := Matrix{
		Rows:   i1 - i0,
		Cols:   j1 - j0,
		Stride: m.Stride,
	}
	if v.Empty() {
		return v
	}
	start := i0*m.Stride + j0
	end := (i1-1)*m.Stride + j1
	v.Data = m.Data[start:end:end]
	return v
}

// Half returns the split point of a dimension of size n. An odd n puts the
// extra element in the second half.
func Half(n int) int {
	return n / 2
}

// SplitRows splits m into rows [0, at) and [at, Rows).
func (m Matrix) SplitRows(at int) (top, bottom Matrix) {
	return m.View(0, at, 0, m.Cols), m.View(at, m.Rows, 0, m.Cols)
}

// SplitCols splits m into cols [0, at) and [at, Cols).
func (m Matrix) SplitCols(at int) (left, right Matrix) {
	return m.View(0, m.Rows, 0, at), m.View(0, m.Rows, at, m.Cols)
}

// Quadrants splits m at (rowAt, colAt) into its top-left, top-right,
// bottom-left and bottom-right regions. The four regions are pairwise
// disjoint and together cover m exactly.
func (m Matrix) Quadrants(rowAt, colAt int) (tl, tr, bl, br Matrix) {
	top, bottom := m.SplitRows(rowAt)
	tl, tr = top.SplitCols(colAt)
	bl, br = bottom.SplitCols(colAt)
	return tl, tr, bl, br
}
