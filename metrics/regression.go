// Package metrics は回帰の評価指標を float32 の予測値に対して計算します。
// 集計は float64 で行います。
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// Regression は回帰指標の組です。
type Regression struct {
	MSE  float64
	RMSE float64
	MAE  float64
	R2   float64
}

func check(op string, yTrue, yPred []float32) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float32) (float64, error) {
	if err := check("MSE", yTrue, yPred); err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i, y := range yTrue {
		diff := float64(y) - float64(yPred[i])
		sum += diff * diff
	}
	return sum / float64(len(yTrue)), nil
}

// RMSE は平均二乗誤差の平方根を計算する
func RMSE(yTrue, yPred []float32) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float32) (float64, error) {
	if err := check("MAE", yTrue, yPred); err != nil {
		return 0, err
	}
	var sum float64
	for i, y := range yTrue {
		sum += math.Abs(float64(y) - float64(yPred[i]))
	}
	return sum / float64(len(yTrue)), nil
}

// R2Score は決定係数を計算する
// 正解値の分散が0の場合は定義できないためエラーを返す
func R2Score(yTrue, yPred []float32) (float64, error) {
	if err := check("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}
	values := toFloat64(yTrue)
	if len(values) < 2 || stat.Variance(values, nil) == 0 {
		return 0, errors.NewValueError("R2Score", "R² is undefined for constant targets")
	}
	return stat.RSquaredFrom(toFloat64(yPred), values, nil), nil
}

// Evaluate はすべての回帰指標をまとめて計算する
func Evaluate(yTrue, yPred []float32) (Regression, error) {
	var r Regression
	var err error
	if r.MSE, err = MSE(yTrue, yPred); err != nil {
		return Regression{}, err
	}
	r.RMSE = math.Sqrt(r.MSE)
	if r.MAE, err = MAE(yTrue, yPred); err != nil {
		return Regression{}, err
	}
	if r.R2, err = R2Score(yTrue, yPred); err != nil {
		return Regression{}, err
	}
	return r, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
