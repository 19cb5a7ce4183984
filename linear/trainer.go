package linear

import (
	"context"
	"strings"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// Trainer runs minibatched coordinate descent on a dataset.
//
// When history is non-nil it must hold at least Epochs*NumFeatures values;
// the weights are copied into it at the end of every epoch and no per-epoch
// loss is computed. Otherwise the loss is reported to the sink every epoch.
type Trainer interface {
	Name() string
	Train(ctx context.Context, ds *dataset.Dataset, p Params, history []float32) (*Model, error)
}

// Trainer kinds accepted by NewTrainer.
const (
	KindScalar   = "scalar"
	KindVector   = "vector"
	KindParallel = "parallel"
)

// Kinds lists the accepted trainer kinds.
func Kinds() []string {
	return []string{KindScalar, KindVector, KindParallel}
}

// NewTrainer creates the trainer of the given kind.
func NewTrainer(kind string, opts ...Option) (Trainer, error) {
	switch strings.ToLower(kind) {
	case KindScalar:
		return NewScalarTrainer(opts...), nil
	case KindVector:
		return NewVectorTrainer(opts...), nil
	case KindParallel:
		return NewParallelTrainer(opts...), nil
	default:
		return nil, errors.NewValidationError("trainer", "must be one of "+strings.Join(Kinds(), ", "), kind)
	}
}
