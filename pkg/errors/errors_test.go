package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Train",
			kind:    "empty data",
			err:     fmt.Errorf("no samples"),
			wantMsg: "scd: Train: empty data: no samples",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not trained",
			wantMsg: "scd: Predict: not trained",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("minibatch size", "must be a multiple of 8", 12)

	want := "scd: invalid minibatch size: must be a multiple of 8 (got: 12)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Fatal("Error should be castable to *ValidationError")
	}
	if valErr.Value != 12 {
		t.Errorf("Value = %v, want 12", valErr.Value)
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Loss", 3, 2, 1)

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if !strings.Contains(err.Error(), "features") {
		t.Errorf("Error() = %q, want axis name 'features'", err.Error())
	}
}

func TestNewInputError(t *testing.T) {
	cause := fmt.Errorf("invalid syntax")
	err := NewInputError("data.svm", 17, "malformed value", cause)

	if got, want := err.Error(), "scd: read data.svm:17: malformed value: invalid syntax"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, cause) {
		t.Error("InputError should unwrap to its cause")
	}

	fileErr := NewInputError("data.svm", 0, "file not found", nil)
	if got, want := fileErr.Error(), "scd: read data.svm: file not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNewResourceError(t *testing.T) {
	err := NewResourceError("ParallelTrainer.Train", "cpu affinity", ErrBarrierBroken)

	if !Is(err, ErrBarrierBroken) {
		t.Error("ResourceError should unwrap to its cause")
	}
	var resErr *ResourceError
	if !As(err, &resErr) {
		t.Fatal("Error should be castable to *ResourceError")
	}
	if resErr.Resource != "cpu affinity" {
		t.Errorf("Resource = %q", resErr.Resource)
	}
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	valErr := &ValidationError{ParamName: "step size", Reason: "must be positive", Value: -1}
	logger.Error().Object("error", valErr).Msg("rejected")

	out := buf.String()
	for _, want := range []string{`"param_name":"step size"`, `"type":"ValidationError"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %s missing %s", out, want)
		}
	}
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "load")
	if !Is(wrapped, ErrEmptyData) {
		t.Error("Wrap should preserve the sentinel")
	}
	wrappedf := Wrapf(ErrReleased, "epoch %d", 3)
	if !Is(wrappedf, ErrReleased) {
		t.Error("Wrapf should preserve the sentinel")
	}
	if !strings.Contains(wrappedf.Error(), "epoch 3") {
		t.Errorf("Wrapf message = %q", wrappedf.Error())
	}
}

func TestCheckScalar(t *testing.T) {
	if err := CheckScalar("loss", 0.5, 1); err != nil {
		t.Errorf("finite value should pass, got %v", err)
	}

	err := CheckScalar("loss", float32(math.Inf(1)), 4)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if numErr.Iteration != 4 {
		t.Errorf("Iteration = %d, want 4", numErr.Iteration)
	}
}

func TestCheckVector(t *testing.T) {
	values := []float32{1, float32(math.NaN()), 2}
	if err := CheckVector("weights", values, 0); err == nil {
		t.Error("NaN should be reported")
	}
	if err := CheckVector("weights", []float32{1, 2, 3}, 0); err != nil {
		t.Errorf("finite vector should pass, got %v", err)
	}
}
