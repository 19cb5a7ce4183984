package datasets

import (
	"bufio"
	"io"
	"strconv"

	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// floatWriter formats float32 values with the shortest exact representation.
type floatWriter struct {
	w   *bufio.Writer
	buf []byte
	err error
}

func newFloatWriter(w io.Writer) *floatWriter {
	return &floatWriter{w: bufio.NewWriter(w), buf: make([]byte, 0, 32)}
}

func (fw *floatWriter) writeFloat(v float32) {
	fw.write(strconv.AppendFloat(fw.buf[:0], float64(v), 'g', -1, 32))
}

func (fw *floatWriter) writeInt(v int) {
	fw.write(strconv.AppendInt(fw.buf[:0], int64(v), 10))
}

func (fw *floatWriter) writeByte(b byte) {
	if fw.err == nil {
		fw.err = fw.w.WriteByte(b)
	}
}

func (fw *floatWriter) write(p []byte) {
	if fw.err == nil {
		_, fw.err = fw.w.Write(p)
	}
}

func (fw *floatWriter) flush() error {
	if fw.err == nil {
		fw.err = fw.w.Flush()
	}
	if fw.err != nil {
		return errors.Wrap(fw.err, "write dataset")
	}
	return nil
}
