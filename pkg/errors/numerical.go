package errors

import (
	"math"
)

// CheckScalar checks a single float32 value for NaN or Inf.
func CheckScalar(operation string, value float32, iteration int) error {
	v := float64(value)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NewNumericalInstabilityError(operation, []float64{v}, iteration)
	}
	return nil
}

// CheckVector checks values for NaN or Inf. At most ten offending values
// are kept in the returned error.
func CheckVector(operation string, values []float32, iteration int) error {
	var unstable []float64
	for _, value := range values {
		v := float64(value)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			unstable = append(unstable, v)
			if len(unstable) >= 10 {
				break
			}
		}
	}
	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, unstable, iteration)
	}
	return nil
}
