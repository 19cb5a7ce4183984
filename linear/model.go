package linear

import (
	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// Model は学習済みの重みベクトルです。
type Model struct {
	Weights   []float32 // 特徴量ごとの重み（バイアス列を含む）
	Trainer   string    // 学習に使ったトレーナー名
	Epochs    int       // 完了したエポック数
	FinalLoss float32   // 学習終了時の損失

	labels dataset.LabelTransform
}

// Predict は各サンプルの予測値 x·a_i を返します。
// 値は学習時のラベルと同じ（正規化後の）スケールです。
func (m *Model) Predict(ds *dataset.Dataset) ([]float32, error) {
	if m == nil || len(m.Weights) == 0 {
		return nil, errors.NewNotFittedError("linear.Model", "Predict")
	}
	return dot(ds, m.Weights, "Model.Predict")
}

// PredictOriginalScale は予測値を学習データの元のラベルスケールに戻して返します。
func (m *Model) PredictOriginalScale(ds *dataset.Dataset) ([]float32, error) {
	if m == nil || len(m.Weights) == 0 {
		return nil, errors.NewNotFittedError("linear.Model", "PredictOriginalScale")
	}
	pred, err := m.Predict(ds)
	if err != nil {
		return nil, err
	}
	for i, v := range pred {
		pred[i] = m.labels.Invert(v)
	}
	return pred, nil
}

// LabelTransform は学習データのラベル正規化情報を返します。
func (m *Model) LabelTransform() dataset.LabelTransform {
	return m.labels
}
