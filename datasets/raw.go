package datasets

import (
	"io"
	"os"
	"strconv"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// LoadRaw reads numSamples dense rows of "label f1 ... fF" from path,
// with F equal to numFeatures. No bias column is added.
func LoadRaw(path string, numSamples, numFeatures int) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputError(path, 0, "open", err)
	}
	defer f.Close()
	return ReadRaw(f, path, numSamples, numFeatures)
}

// ReadRaw is LoadRaw over a reader; name is used in errors.
func ReadRaw(r io.Reader, name string, numSamples, numFeatures int) (*dataset.Dataset, error) {
	ds, err := dataset.New(numSamples, numFeatures)
	if err != nil {
		return nil, err
	}
	labels := ds.Labels()

	err = scanRows(r, name, numSamples, func(row, line int, fields []string) error {
		if len(fields) != numFeatures+1 {
			return errors.NewInputError(name, line,
				"expected "+strconv.Itoa(numFeatures+1)+" values, found "+strconv.Itoa(len(fields)), nil)
		}
		for k, tok := range fields {
			v, err := strconv.ParseFloat(tok, 32)
			if err != nil {
				return errors.NewInputError(name, line, "malformed value "+strconv.Quote(tok), err)
			}
			if k == 0 {
				labels[row] = float32(v)
			} else {
				ds.Set(row, k-1, float32(v))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// WriteRaw writes ds in the raw dense format read by LoadRaw.
func WriteRaw(w io.Writer, ds *dataset.Dataset) error {
	if err := ds.Validate("datasets.WriteRaw"); err != nil {
		return err
	}
	bw := newFloatWriter(w)
	row := make([]float32, ds.NumFeatures())
	labels := ds.Labels()
	for i := 0; i < ds.NumSamples(); i++ {
		row = ds.Row(i, row)
		bw.writeFloat(labels[i])
		for _, v := range row {
			bw.writeByte(' ')
			bw.writeFloat(v)
		}
		bw.writeByte('\n')
	}
	return bw.flush()
}

// WriteLibSVM writes ds in libsvm format, skipping zero features. When
// bias is true column 0 is taken to be the bias term added by LoadLibSVM
// and is not written; otherwise column j is written as index j+1.
func WriteLibSVM(w io.Writer, ds *dataset.Dataset, bias bool) error {
	if err := ds.Validate("datasets.WriteLibSVM"); err != nil {
		return err
	}
	first, offset := 0, 1
	if bias {
		first, offset = 1, 0
	}
	bw := newFloatWriter(w)
	labels := ds.Labels()
	for i := 0; i < ds.NumSamples(); i++ {
		bw.writeFloat(labels[i])
		for j := first; j < ds.NumFeatures(); j++ {
			v := ds.At(i, j)
			if v == 0 {
				continue
			}
			bw.writeByte(' ')
			bw.writeInt(j + offset)
			bw.writeByte(':')
			bw.writeFloat(v)
		}
		bw.writeByte('\n')
	}
	return bw.flush()
}
