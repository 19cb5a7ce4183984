package datasets

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 64 << 20

// LoadLibSVM reads numSamples rows of "label idx:value ..." from path.
// Indices are 1-based; the returned dataset has numFeatures+1 columns and
// column 0 is the bias term, set to 1. Missing indices are zero.
func LoadLibSVM(path string, numSamples, numFeatures int) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputError(path, 0, "open", err)
	}
	defer f.Close()
	return ReadLibSVM(f, path, numSamples, numFeatures)
}

// ReadLibSVM is LoadLibSVM over a reader; name is used in errors.
func ReadLibSVM(r io.Reader, name string, numSamples, numFeatures int) (*dataset.Dataset, error) {
	ds, err := dataset.New(numSamples, numFeatures+1)
	if err != nil {
		return nil, err
	}
	labels := ds.Labels()

	err = scanRows(r, name, numSamples, func(row, line int, fields []string) error {
		label, err := strconv.ParseFloat(fields[0], 32)
		if err != nil {
			return errors.NewInputError(name, line, "malformed label "+strconv.Quote(fields[0]), err)
		}
		labels[row] = float32(label)

		for _, tok := range fields[1:] {
			idxStr, valStr, ok := strings.Cut(tok, ":")
			if !ok {
				return errors.NewInputError(name, line, "malformed feature "+strconv.Quote(tok), nil)
			}
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return errors.NewInputError(name, line, "malformed feature index "+strconv.Quote(idxStr), err)
			}
			if idx < 1 || idx > numFeatures {
				return errors.NewInputError(name, line, "feature index "+idxStr+" out of range [1, "+strconv.Itoa(numFeatures)+"]", nil)
			}
			val, err := strconv.ParseFloat(valStr, 32)
			if err != nil {
				return errors.NewInputError(name, line, "malformed feature value "+strconv.Quote(valStr), err)
			}
			ds.Set(row, idx, float32(val))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bias := ds.Column(0)
	for i := range bias {
		bias[i] = 1
	}
	return ds, nil
}

// scanRows calls fn for the first rows non-blank lines of r. Blank lines
// are skipped. Fewer lines than rows is an error.
func scanRows(r io.Reader, name string, rows int, fn func(row, line int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	row, line := 0, 0
	for row < rows && sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if err := fn(row, line, fields); err != nil {
			return err
		}
		row++
	}
	if err := sc.Err(); err != nil {
		return errors.NewInputError(name, line, "read", err)
	}
	if row < rows {
		return errors.NewInputError(name, line,
			"expected "+strconv.Itoa(rows)+" samples, found "+strconv.Itoa(row), nil)
	}
	return nil
}
