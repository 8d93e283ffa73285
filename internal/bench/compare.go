package bench

import (
	"fmt"
	"math"

	"github.com/samcharles93/recgemm/internal/matrix"
)

// MaxRelativeError returns the largest |x-y| / min(|x|, |y|) over all element
// pairs. Equal elements contribute 0, so two zeros do not produce NaN; a zero
// paired with a non-zero gives +Inf.
func MaxRelativeError(x, y matrix.Matrix) (float64, error) {
	if x.Rows != y.Rows || x.Cols != y.Cols {
		return 0, fmt.Errorf("compare %dx%d with %dx%d: shape mismatch", x.Rows, x.Cols, y.Rows, y.Cols)
	}
	var worst float64
	for i := 0; i < x.Rows; i++ {
		xRow := x.Row(i)
		yRow := y.Row(i)
		for j, xv := range xRow {
			yv := yRow[j]
			if xv == yv {
				continue
			}
			rel := math.Abs(xv-yv) / math.Min(math.Abs(xv), math.Abs(yv))
			if rel > worst || math.IsNaN(rel) {
				worst = rel
			}
		}
	}
	return worst, nil
}
