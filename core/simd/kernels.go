package simd

import (
	"github.com/viterin/vek/vek32"
)

// Lanes is the vector width in float32 elements.
const Lanes = 8

// Residual computes err = inference - labels, then zeroes inference.
func Residual(err, inference, labels []float32) {
	vek32.Sub_Into(err, inference, labels)
	clear(inference)
}

// GradientInference performs the fused per-coordinate step over one
// minibatch: it returns sum(column[i]*err[i]) and adds column[i]*w to
// inference[i]. Gradient lanes are reduced in order 0..7.
func GradientInference(column, err, inference []float32, w float32) float32 {
	n := len(column)
	err = err[:n]
	inference = inference[:n]

	var g0, g1, g2, g3, g4, g5, g6, g7 float32
	for i := 0; i < n; i += Lanes {
		a := column[i : i+Lanes : i+Lanes]
		e := err[i : i+Lanes : i+Lanes]
		inf := inference[i : i+Lanes : i+Lanes]

		g0 += a[0] * e[0]
		g1 += a[1] * e[1]
		g2 += a[2] * e[2]
		g3 += a[3] * e[3]
		g4 += a[4] * e[4]
		g5 += a[5] * e[5]
		g6 += a[6] * e[6]
		g7 += a[7] * e[7]

		inf[0] += a[0] * w
		inf[1] += a[1] * w
		inf[2] += a[2] * w
		inf[3] += a[3] * w
		inf[4] += a[4] * w
		inf[5] += a[5] * w
		inf[6] += a[6] * w
		inf[7] += a[7] * w
	}
	return g0 + g1 + g2 + g3 + g4 + g5 + g6 + g7
}

// Accumulate adds partial into acc and zeroes partial.
func Accumulate(acc, partial []float32) {
	vek32.Add_Inplace(acc, partial)
	clear(partial)
}

// IsMultiple reports whether n is a positive multiple of Lanes.
func IsMultiple(n int) bool {
	return n > 0 && n%Lanes == 0
}
