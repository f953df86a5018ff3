// Package wire implements the byte-stream primitives used by the canonical
// binary encodings in this module.
//
// Contract:
//   - Encodings are deterministic: the same value always produces the same bytes.
//   - Integers are unsigned varints (minimal encoding, via go-varint).
//   - Decoders MUST fail with an error on truncated or malformed input; they
//     never panic. Truncation satisfies errors.Is(err, io.ErrUnexpectedEOF).
package wire

import (
	"errors"
	"fmt"
	"io"

	"github.com/multiformats/go-varint"
)

// ErrRange reports a length prefix that exceeds the caller-supplied cap.
var ErrRange = errors.New("wire: length out of range")

// Writer writes binary primitives to an underlying io.Writer.
//
// Errors are sticky: after the first failed write, every subsequent write is
// a no-op and Err returns the original error. This lets encoders chain writes
// without checking each one.
type Writer struct {
	w   io.Writer
	n   int
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRaw writes p with no length prefix.
func (w *Writer) WriteRaw(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.n += n
	w.err = err
}

// WriteUvarint writes v as a minimal unsigned varint.
func (w *Writer) WriteUvarint(v uint64) {
	if w.err != nil {
		return
	}
	buf := make([]byte, varint.UvarintSize(v))
	varint.PutUvarint(buf, v)
	w.WriteRaw(buf)
}

// WriteBytes writes a uvarint length prefix followed by p.
func (w *Writer) WriteBytes(p []byte) {
	w.WriteUvarint(uint64(len(p)))
	w.WriteRaw(p)
}

// BytesWritten returns the number of bytes successfully written.
func (w *Writer) BytesWritten() int { return w.n }

// Err returns the first write error, if any.
func (w *Writer) Err() error { return w.err }

// Reader reads binary primitives from an underlying io.Reader.
//
// Errors are sticky, mirroring Writer. A short read anywhere inside a value
// is reported as io.ErrUnexpectedEOF (wrapped), including at the very first
// byte: callers of this package always expect a complete value.
type Reader struct {
	r   io.Reader
	n   int
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadFull fills p from the stream.
func (r *Reader) ReadFull(p []byte) error {
	if r.err != nil {
		return r.err
	}
	n, err := io.ReadFull(r.r, p)
	r.n += n
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		r.err = fmt.Errorf("wire: truncated input: %w", err)
	}
	return r.err
}

// ReadByte satisfies io.ByteReader for varint decoding.
func (r *Reader) ReadByte() (byte, error) {
	var b [1]byte
	if err := r.ReadFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUvarint reads a minimal unsigned varint.
func (r *Reader) ReadUvarint() (uint64, error) {
	if r.err != nil {
		return 0, r.err
	}
	v, err := varint.ReadUvarint(r)
	if err != nil && r.err == nil {
		// varint reports non-minimal and overflowing encodings itself;
		// short reads were already latched by ReadByte.
		r.err = fmt.Errorf("wire: invalid uvarint: %w", err)
	}
	if r.err != nil {
		return 0, r.err
	}
	return v, nil
}

// ReadBytes reads a uvarint length prefix and then that many bytes.
// Lengths above max fail with ErrRange before any allocation.
func (r *Reader) ReadBytes(max uint64) ([]byte, error) {
	length, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if length > max {
		r.err = fmt.Errorf("wire: %d-byte value exceeds cap %d: %w", length, max, ErrRange)
		return nil, r.err
	}
	if length == 0 {
		return nil, nil
	}
	buf := make([]byte, length)
	if err := r.ReadFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// BytesRead returns the number of bytes successfully consumed.
func (r *Reader) BytesRead() int { return r.n }

// Err returns the first read error, if any.
func (r *Reader) Err() error { return r.err }
