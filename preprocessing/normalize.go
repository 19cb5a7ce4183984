// Package preprocessing はデータセットの特徴量とラベルを学習前に整形します。
// 変換はデータセットをその場で書き換え、逆変換に必要な情報を
// データセット自身に記録します。
package preprocessing

import (
	"strings"

	"github.com/viterin/vek/vek32"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/core/parallel"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// Axis は特徴量の min-max 正規化の方向です。
type Axis int

const (
	// ColumnWise は特徴量（列）ごとに正規化します。列0（バイアス）は対象外です。
	ColumnWise Axis = iota
	// RowWise はサンプル（行）ごとに全特徴量を正規化します。
	RowWise
)

func (a Axis) String() string {
	if a == RowWise {
		return "row"
	}
	return "column"
}

// ParseAxis は "column" / "row"（または "c" / "r"）を Axis に変換します。
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "column", "col", "c", "":
		return ColumnWise, nil
	case "row", "r":
		return RowWise, nil
	default:
		return 0, errors.NewValidationError("normalization axis", "must be column or row", s)
	}
}

// 並列処理の閾値（この値以下の列数では逐次処理を使用）
const parallelThreshold = 32

// NormalizeFeatures は特徴量を min-max 正規化します。
//
// パラメータ:
//   - ds: 対象のデータセット（その場で書き換えられます）
//   - toMinus1: true なら [-1,1]、false なら [0,1] に写像します
//   - axis: ColumnWise または RowWise
//
// 値がすべて等しい列（行）は変更しません。
func NormalizeFeatures(ds *dataset.Dataset, toMinus1 bool, axis Axis) error {
	if err := ds.Validate("preprocessing.NormalizeFeatures"); err != nil {
		return err
	}

	switch axis {
	case ColumnWise:
		parallel.ParallelizeWithThreshold(ds.NumFeatures()-1, parallelThreshold, func(start, end int) {
			for j := start + 1; j < end+1; j++ {
				minMax(ds.Column(j), toMinus1)
			}
		})
	case RowWise:
		parallel.ParallelizeWithThreshold(ds.NumSamples(), parallelThreshold*64, func(start, end int) {
			row := make([]float32, ds.NumFeatures())
			for i := start; i < end; i++ {
				row = ds.Row(i, row)
				minMax(row, toMinus1)
				for j, v := range row {
					ds.Set(i, j, v)
				}
			}
		})
	default:
		return errors.NewValidationError("normalization axis", "must be column or row", int(axis))
	}

	ds.FeaturesNormalized = true
	ds.FeaturesToMinus1 = toMinus1
	return nil
}

// minMax maps v onto [0,1] or [-1,1] and returns its original min and range.
// A constant vector is left as is and reported with range 0.
func minMax(v []float32, toMinus1 bool) (lo, span float32) {
	lo, hi := vek32.Min(v), vek32.Max(v)
	span = hi - lo
	if span <= 0 {
		return lo, 0
	}
	// vek32.DivNumber_Inplace multiplies by 1/span on AVX2, which can leave
	// the maximum one ulp below 1.
	vek32.SubNumber_Inplace(v, lo)
	for i := range v {
		v[i] /= span
	}
	if toMinus1 {
		vek32.MulNumber_Inplace(v, 2)
		vek32.SubNumber_Inplace(v, 1)
	}
	return lo, span
}

// NormalizeLabels はラベルを min-max 正規化し、元の最小値と幅を記録します。
// ラベルがすべて等しい場合は何も変更しません。
func NormalizeLabels(ds *dataset.Dataset, toMinus1 bool) error {
	if err := ds.Validate("preprocessing.NormalizeLabels"); err != nil {
		return err
	}
	lo, span := minMax(ds.Labels(), toMinus1)
	if span == 0 {
		return nil
	}
	ds.LabelsNormalized = true
	ds.LabelsToMinus1 = toMinus1
	ds.LabelMin = lo
	ds.LabelRange = span
	return nil
}

// BinarizeLabels はラベルが target と等しければ 1、それ以外を -1 にします。
func BinarizeLabels(ds *dataset.Dataset, target float32) error {
	if err := ds.Validate("preprocessing.BinarizeLabels"); err != nil {
		return err
	}
	labels := ds.Labels()
	for i, b := range labels {
		if b == target {
			labels[i] = 1
		} else {
			labels[i] = -1
		}
	}
	ds.LabelsNormalized = true
	ds.LabelsToMinus1 = true
	ds.LabelMin = -1
	ds.LabelRange = 2
	return nil
}

// InverseLabels は正規化後のスケールの値を元のラベルスケールに戻した新しいスライスを返します。
func InverseLabels(ds *dataset.Dataset, values []float32) []float32 {
	t := ds.LabelTransform()
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = t.Invert(v)
	}
	return out
}

// Options はまとめて適用する前処理の設定です。
type Options struct {
	Features         bool
	FeaturesToMinus1 bool
	Axis             Axis

	Labels         bool
	LabelsToMinus1 bool
	Binarize       bool
	BinarizeTarget float32
}

// Apply は Options に従って特徴量、次にラベルを変換します。
// Binarize が有効な場合は Labels より優先されます。
func Apply(ds *dataset.Dataset, opts Options) error {
	if opts.Features {
		if err := NormalizeFeatures(ds, opts.FeaturesToMinus1, opts.Axis); err != nil {
			return err
		}
	}
	switch {
	case opts.Binarize:
		return BinarizeLabels(ds, opts.BinarizeTarget)
	case opts.Labels:
		return NormalizeLabels(ds, opts.LabelsToMinus1)
	}
	return nil
}
