// Package linear は最小二乗線形回帰をミニバッチ座標降下法 (SCD) で学習します。
//
// 同じ更新則を持つ3つの実装があります。
//
//   - ScalarTrainer: スカラーの参照実装
//   - VectorTrainer: 8レーンのカーネルを使う単一スレッド実装
//   - ParallelTrainer: 座標をワーカー間で分割し、バリアで同期する実装
//
// いずれも Trainer インターフェースを満たし、同じデータ・同じパラメータに
// 対して浮動小数点の加算順序による誤差の範囲で同じ重みを返します。
//
// 残差はミニバッチ間で持ち越されます。各ミニバッチの誤差は前のエポックで
// 同じミニバッチを処理した時点の重みから計算されるため、全内積を座標ごとに
// 再計算しません。
package linear
