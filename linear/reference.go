package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/core/parallel"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// LeastSquares は閉形式の最小二乗解を返します。
// 正規方程式 (A^T A) w = A^T b を解き、SCD の収束先の基準として使います。
// バイアス項はデータセットの列として含まれている前提です。
func LeastSquares(ds *dataset.Dataset) ([]float32, error) {
	if err := ds.Validate("linear.LeastSquares"); err != nil {
		return nil, err
	}
	n, f := ds.NumSamples(), ds.NumFeatures()
	if n < f {
		return nil, errors.NewDimensionError("linear.LeastSquares", f, n, 0)
	}

	A := ds.Dense()
	b := ds.LabelVec()

	// 並列処理の閾値（この値以下の特徴量数では逐次処理を使用）
	const parallelThreshold = 64

	// A^T A を列ペアごとに計算する
	ATA := mat.NewSymDense(f, nil)
	parallel.ParallelizeWithThreshold(f, parallelThreshold, func(start, end int) {
		for j := start; j < end; j++ {
			cj := A.ColView(j)
			for k := j; k < f; k++ {
				ATA.SetSym(j, k, mat.Dot(cj, A.ColView(k)))
			}
		}
	})

	var ATb mat.VecDense
	ATb.MulVec(A.T(), b)

	var w mat.VecDense
	if err := w.SolveVec(ATA, &ATb); err != nil {
		// mat.Condition still comes with a usable solution.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 0) {
			return nil, errors.NewModelError("linear.LeastSquares", "singular matrix", errors.ErrSingularMatrix)
		}
		errors.Warn(errors.Wrap(err, "linear.LeastSquares"))
	}

	out := make([]float32, f)
	for j := range out {
		out[j] = float32(w.AtVec(j))
	}
	return out, nil
}
