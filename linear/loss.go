package linear

import (
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// Loss returns sum over samples of (x·a_i - b_i)^2 / (2n).
// Dot products accumulate in ascending coordinate order, in float32.
func Loss(ds *dataset.Dataset, x []float32) (float32, error) {
	pred, err := dot(ds, x, "linear.Loss")
	if err != nil {
		return 0, err
	}
	labels := ds.Labels()
	var sum float32
	for i, p := range pred {
		d := p - labels[i]
		sum += d * d
	}
	return sum / (2 * float32(ds.NumSamples())), nil
}

// dot returns A·x for every sample, accumulating column by column.
func dot(ds *dataset.Dataset, x []float32, op string) ([]float32, error) {
	if err := ds.Validate(op); err != nil {
		return nil, err
	}
	if len(x) != ds.NumFeatures() {
		return nil, errors.NewDimensionError(op, ds.NumFeatures(), len(x), 1)
	}
	n := ds.NumSamples()
	out := blas32.Vector{N: n, Inc: 1, Data: make([]float32, n)}
	for j, w := range x {
		col := blas32.Vector{N: n, Inc: 1, Data: ds.Column(j)}
		blas32.Axpy(w, col, out)
	}
	return out.Data, nil
}
