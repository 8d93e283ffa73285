package gemm

import "github.com/samcharles93/recgemm/internal/matrix"

// scratch holds the contiguous copies of one A tile, one B tile and the C
// tile being accumulated. A scratch block is used by one goroutine at a time.
type scratch struct {
	a, b, c []float64
}

func newScratch(cfg Config) *scratch {
	return &scratch{
		a: make([]float64, cfg.TileRows*cfg.TileDepth),
		b: make([]float64, cfg.TileDepth*cfg.TileCols),
		c: make([]float64, cfg.TileRows*cfg.TileCols),
	}
}

// baseKernel accumulates a*b into c, tile by tile. It never zeroes c.
//
// A full (row, col) tile is staged: the C tile is copied into s.c once, every
// full depth tile copies its A and B tiles into s.a and s.b and runs the
// stride-1 micro kernel, and s.c is written back after the last depth tile.
// A clipped depth tile accumulates into s.c straight from the strided
// operands. A (row, col) tile clipped by the matrix boundary skips staging
// altogether.
func baseKernel(cfg Config, a, b, c matrix.Matrix, s *scratch) {
	m := c.Rows
	n := c.Cols
	p := a.Cols
	if m == 0 || n == 0 || p == 0 {
		return
	}

	tr := cfg.TileRows
	tc := cfg.TileCols
	td := cfg.TileDepth

	for i0 := 0; i0 < m; i0 += tr {
		iMax := min(i0+tr, m)
		for j0 := 0; j0 < n; j0 += tc {
			jMax := min(j0+tc, n)
			if iMax-i0 < tr || jMax-j0 < tc {
				blockUpdateDirect(a, b, c, i0, iMax, j0, jMax, 0, p)
				continue
			}

			loadTile(s.c, c, i0, j0, tr, tc)
			for k0 := 0; k0 < p; k0 += td {
				kMax := min(k0+td, p)
				if kMax-k0 < td {
					blockUpdateClippedDepth(s.c, a, b, i0, j0, tr, tc, k0, kMax)
					continue
				}
				loadTile(s.a, a, i0, k0, tr, td)
				loadTile(s.b, b, k0, j0, td, tc)
				microKernel(s.c, s.a, s.b, tr, tc, td)
			}
			storeTile(c, s.c, i0, j0, tr, tc)
		}
	}
}

// loadTile copies the rows x cols tile of src at (i0, j0) into dst, packed
// with stride cols.
func loadTile(dst []float64, src matrix.Matrix, i0, j0, rows, cols int) {
	stride := src.Stride
	for r := 0; r < rows; r++ {
		off := (i0+r)*stride + j0
		copy(dst[r*cols:(r+1)*cols], src.Data[off:off+cols])
	}
}

// storeTile is the inverse of loadTile.
func storeTile(dst matrix.Matrix, src []float64, i0, j0, rows, cols int) {
	stride := dst.Stride
	for r := 0; r < rows; r++ {
		off := (i0+r)*stride + j0
		copy(dst.Data[off:off+cols], src[r*cols:(r+1)*cols])
	}
}

// microKernel computes cs += as*bs on packed tiles. as is rows x depth, bs is
// depth x cols and cs is rows x cols, all with unit column stride.
func microKernel(cs, as, bs []float64, rows, cols, depth int) {
	for i := 0; i < rows; i++ {
		cRow := cs[i*cols : (i+1)*cols]
		aRow := as[i*depth : (i+1)*depth]
		for k, aik := range aRow {
			axpy(aik, bs[k*cols:(k+1)*cols], cRow)
		}
	}
}

// blockUpdateClippedDepth accumulates the depth range [k0, kMax) of a full
// (row, col) tile into the packed C tile cs without staging A or B.
func blockUpdateClippedDepth(cs []float64, a, b matrix.Matrix, i0, j0, rows, cols, k0, kMax int) {
	aStride := a.Stride
	bStride := b.Stride
	for i := 0; i < rows; i++ {
		cRow := cs[i*cols : (i+1)*cols]
		aOff := (i0 + i) * aStride
		for kk := k0; kk < kMax; kk++ {
			bOff := kk*bStride + j0
			axpy(a.Data[aOff+kk], b.Data[bOff:bOff+cols], cRow)
		}
	}
}

// blockUpdateDirect accumulates rows [i0, iMax) x cols [j0, jMax) of a*b over
// the depth range [k0, kMax) straight into c, in i-k-j order.
func blockUpdateDirect(a, b, c matrix.Matrix, i0, iMax, j0, jMax, k0, kMax int) {
	aStride := a.Stride
	bStride := b.Stride
	cStride := c.Stride
	width := jMax - j0
	for i := i0; i < iMax; i++ {
		cOff := i*cStride + j0
		cRow := c.Data[cOff : cOff+width]
		aOff := i * aStride
		for kk := k0; kk < kMax; kk++ {
			bOff := kk*bStride + j0
			axpy(a.Data[aOff+kk], b.Data[bOff:bOff+width], cRow)
		}
	}
}

// axpy computes y += alpha*x. len(y) must not exceed len(x).
func axpy(alpha float64, x, y []float64) {
	x = x[:len(y)]
	j := 0
	for ; j+3 < len(y); j += 4 {
		y[j+0] += alpha * x[j+0]
		y[j+1] += alpha * x[j+1]
		y[j+2] += alpha * x[j+2]
		y[j+3] += alpha * x[j+3]
	}
	for ; j < len(y); j++ {
		y[j] += alpha * x[j]
	}
}
