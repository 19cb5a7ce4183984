package parallel

import (
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// Range is the half-open interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Start }

// Partition splits [0, n) into workers contiguous ranges of n/workers
// indices each; the last range absorbs the remainder. Every range is
// non-empty, so workers must not exceed n.
func Partition(n, workers int) ([]Range, error) {
	if workers < 1 {
		return nil, errors.NewValidationError("worker count", "must be at least 1", workers)
	}
	if workers > n {
		return nil, errors.NewValidationError("worker count",
			"must not exceed the number of coordinates", workers)
	}

	size := n / workers
	ranges := make([]Range, workers)
	start := 0
	for w := range ranges {
		end := start + size
		if w == workers-1 {
			end = n
		}
		ranges[w] = Range{Start: start, End: end}
		start = end
	}
	return ranges, nil
}
