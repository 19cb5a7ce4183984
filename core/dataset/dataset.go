// Package dataset holds the in-memory training data: a dense column-major
// feature matrix and a label vector, both float32.
//
// All columns live in one contiguous arena. Column j starts at j*Stride
// and every column start, as well as the label vector, is aligned to
// Alignment bytes so 8-lane kernels always begin on a vector boundary.
package dataset

import (
	"fmt"
	"strings"
	"unsafe"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/goscd/pkg/errors"
)

const (
	// Alignment is the byte alignment of every column and of the labels.
	Alignment = 64

	// floatsPerAlignment is the number of float32 values in one aligned block.
	floatsPerAlignment = Alignment / 4

	// DefaultIntegerScaler converts normalized values to fixed point for inspection.
	DefaultIntegerScaler = 0x00800000
)

// Dataset is a column-major float32 feature matrix with labels.
// Shape is fixed at allocation. The feature matrix and labels are mutated
// only by loaders and normalizers; trainers treat them as read-only.
type Dataset struct {
	arena  []float32 // aligned view over backing
	labels []float32

	stride      int
	numSamples  int
	numFeatures int
	released    bool

	// FeaturesNormalized records that features were min-max normalized.
	FeaturesNormalized bool
	// FeaturesToMinus1 is true when features were mapped to [-1,1] rather than [0,1].
	FeaturesToMinus1 bool
	// LabelsNormalized records that labels were min-max normalized or binarized.
	LabelsNormalized bool
	// LabelsToMinus1 is true when labels were mapped to [-1,1].
	LabelsToMinus1 bool
	// LabelMin and LabelRange invert the label transform, see LabelTransform.
	LabelMin   float32
	LabelRange float32
	// IntegerScaler is the fixed-point scale used by ToFixed.
	IntegerScaler uint32
}

// New allocates a zero-valued dataset with numSamples rows and numFeatures columns.
func New(numSamples, numFeatures int) (*Dataset, error) {
	if numSamples <= 0 {
		return nil, errors.NewValidationError("number of samples", "must be positive", numSamples)
	}
	if numFeatures <= 0 {
		return nil, errors.NewValidationError("number of features", "must be positive", numFeatures)
	}

	stride := roundUp(numSamples, floatsPerAlignment)
	return &Dataset{
		arena:         AlignedFloat32s(stride * numFeatures),
		labels:        AlignedFloat32s(numSamples),
		stride:        stride,
		numSamples:    numSamples,
		numFeatures:   numFeatures,
		LabelRange:    1,
		IntegerScaler: DefaultIntegerScaler,
	}, nil
}

// FromColumns builds a dataset from feature columns and labels.
// All columns must have len(labels) entries.
func FromColumns(columns [][]float32, labels []float32) (*Dataset, error) {
	if len(columns) == 0 || len(labels) == 0 {
		return nil, errors.NewModelError("dataset.FromColumns", "empty data", errors.ErrEmptyData)
	}
	ds, err := New(len(labels), len(columns))
	if err != nil {
		return nil, err
	}
	for j, col := range columns {
		if len(col) != len(labels) {
			return nil, errors.NewDimensionError("dataset.FromColumns", len(labels), len(col), 0)
		}
		copy(ds.Column(j), col)
	}
	copy(ds.labels, labels)
	return ds, nil
}

// FromRows builds a dataset from sample rows and labels.
func FromRows(rows [][]float32, labels []float32) (*Dataset, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.NewModelError("dataset.FromRows", "empty data", errors.ErrEmptyData)
	}
	if len(rows) != len(labels) {
		return nil, errors.NewDimensionError("dataset.FromRows", len(rows), len(labels), 0)
	}
	ds, err := New(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != ds.numFeatures {
			return nil, errors.NewDimensionError("dataset.FromRows", ds.numFeatures, len(row), 1)
		}
		for j, v := range row {
			ds.arena[j*ds.stride+i] = v
		}
	}
	copy(ds.labels, labels)
	return ds, nil
}

// AlignedFloat32s returns a zeroed slice of length n whose first element is
// Alignment-byte aligned.
func AlignedFloat32s(n int) []float32 {
	if n == 0 {
		return []float32{}
	}
	backing := make([]float32, n+floatsPerAlignment)
	addr := uintptr(unsafe.Pointer(&backing[0]))
	offset := 0
	if rem := addr % Alignment; rem != 0 {
		offset = int((Alignment - rem) / 4)
	}
	return backing[offset : offset+n : offset+n]
}

// IsAligned reports whether the first element of s is Alignment-byte aligned.
func IsAligned(s []float32) bool {
	if len(s) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&s[0]))%Alignment == 0
}

func roundUp(n, multiple int) int {
	return (n + multiple - 1) / multiple * multiple
}

// NumSamples returns the number of samples (rows).
func (d *Dataset) NumSamples() int { return d.numSamples }

// NumFeatures returns the number of features (columns), bias included.
func (d *Dataset) NumFeatures() int { return d.numFeatures }

// Stride returns the distance in float32 values between column starts.
func (d *Dataset) Stride() int { return d.stride }

// Column returns feature column j as a view into the arena.
// The view's capacity is clipped so appends cannot spill into column j+1.
func (d *Dataset) Column(j int) []float32 {
	start := j * d.stride
	end := start + d.numSamples
	return d.arena[start:end:end]
}

// Labels returns the label vector.
func (d *Dataset) Labels() []float32 { return d.labels }

// At returns feature j of sample i.
func (d *Dataset) At(i, j int) float32 { return d.arena[j*d.stride+i] }

// Set sets feature j of sample i.
func (d *Dataset) Set(i, j int, v float32) { d.arena[j*d.stride+i] = v }

// Row copies the features of sample i into dst, allocating when dst is too short.
func (d *Dataset) Row(i int, dst []float32) []float32 {
	if cap(dst) < d.numFeatures {
		dst = make([]float32, d.numFeatures)
	}
	dst = dst[:d.numFeatures]
	for j := range dst {
		dst[j] = d.arena[j*d.stride+i]
	}
	return dst
}

// Validate returns an error if the dataset cannot be trained on.
func (d *Dataset) Validate(op string) error {
	if d == nil {
		return errors.NewModelError(op, "nil dataset", errors.ErrEmptyData)
	}
	if d.released {
		return errors.NewModelError(op, "released dataset", errors.ErrReleased)
	}
	if d.numSamples == 0 || d.numFeatures == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	return nil
}

// Release drops the arena. A released dataset fails Validate.
func (d *Dataset) Release() {
	d.arena = nil
	d.labels = nil
	d.released = true
}

// Released reports whether Release was called.
func (d *Dataset) Released() bool { return d.released }

// Dense returns a float64 samples×features copy for gonum-based consumers.
func (d *Dataset) Dense() *mat.Dense {
	m := mat.NewDense(d.numSamples, d.numFeatures, nil)
	for j := 0; j < d.numFeatures; j++ {
		col := d.Column(j)
		for i, v := range col {
			m.Set(i, j, float64(v))
		}
	}
	return m
}

// LabelVec returns the labels as a float64 gonum vector.
func (d *Dataset) LabelVec() *mat.VecDense {
	v := mat.NewVecDense(d.numSamples, nil)
	for i, b := range d.labels {
		v.SetVec(i, float64(b))
	}
	return v
}

// ToFixed converts a normalized value to the dataset's fixed-point scale.
func (d *Dataset) ToFixed(v float32) int32 {
	return int32(v * float32(d.IntegerScaler))
}

// Samples renders the first n samples, one feature row and label per sample.
func (d *Dataset) Samples(n int) string {
	if n > d.numSamples {
		n = d.numSamples
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "a%d:", i)
		for j := 0; j < d.numFeatures; j++ {
			fmt.Fprintf(&sb, " %g", d.At(i, j))
		}
		fmt.Fprintf(&sb, "\nb%d: %g\n", i, d.labels[i])
	}
	return sb.String()
}

// String returns a short description of the dataset shape.
func (d *Dataset) String() string {
	if d.released {
		return "Dataset(released)"
	}
	return fmt.Sprintf("Dataset(samples=%d, features=%d)", d.numSamples, d.numFeatures)
}

// LabelTransform is the record needed to map normalized labels, or values
// predicted against them, back to the original label scale.
type LabelTransform struct {
	Normalized bool
	ToMinus1   bool
	Min        float32
	Range      float32
}

// LabelTransform returns the dataset's current label normalization record.
func (d *Dataset) LabelTransform() LabelTransform {
	return LabelTransform{
		Normalized: d.LabelsNormalized,
		ToMinus1:   d.LabelsToMinus1,
		Min:        d.LabelMin,
		Range:      d.LabelRange,
	}
}

// Invert maps v back to the original label scale. Values of a dataset whose
// labels were never normalized are returned unchanged.
func (t LabelTransform) Invert(v float32) float32 {
	if !t.Normalized {
		return v
	}
	u := v
	if t.ToMinus1 {
		u = (v + 1) / 2
	}
	return t.Min + u*t.Range
}
