package wire

import (
	"bytes"
	"errors"
)

// ErrTrailingBytes reports input left over after a complete value was decoded.
var ErrTrailingBytes = errors.New("wire: trailing bytes after value")

// Encoder is implemented by values with a canonical wire encoding.
type Encoder interface {
	EncodeInto(w *Writer)
}

// Encode renders e into a fresh byte slice.
func Encode(e Encoder) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	e.EncodeInto(w)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExpectEOF fails if the stream holds any further bytes. Strict decoders
// (UnmarshalBinary implementations) call this after reading their value.
func (r *Reader) ExpectEOF() error {
	if r.err != nil {
		return r.err
	}
	var b [1]byte
	if n, _ := r.r.Read(b[:]); n > 0 {
		r.err = ErrTrailingBytes
		return r.err
	}
	return nil
}
