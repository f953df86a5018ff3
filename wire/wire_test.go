package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestUvarint_RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<63 - 1} {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		w.WriteUvarint(v)
		if err := w.Err(); err != nil {
			t.Fatalf("WriteUvarint(%d): %v", v, err)
		}

		r := NewReader(bytes.NewReader(buf.Bytes()))
		got, err := r.ReadUvarint()
		if err != nil {
			t.Fatalf("ReadUvarint(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip: got %d want %d", got, v)
		}
		if r.BytesRead() != buf.Len() {
			t.Fatalf("BytesRead: got %d want %d", r.BytesRead(), buf.Len())
		}
	}
}

func TestBytes_RoundTrip(t *testing.T) {
	for _, payload := range [][]byte{nil, {}, []byte("x"), bytes.Repeat([]byte{0xAB}, 1000)} {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		w.WriteBytes(payload)
		if err := w.Err(); err != nil {
			t.Fatalf("WriteBytes: %v", err)
		}

		r := NewReader(bytes.NewReader(buf.Bytes()))
		got, err := r.ReadBytes(1 << 16)
		if err != nil {
			t.Fatalf("ReadBytes: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("round trip mismatch: got %q want %q", got, payload)
		}
	}
}

func TestReadBytes_RangeCap(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteBytes(bytes.Repeat([]byte{1}, 100))

	r := NewReader(bytes.NewReader(buf.Bytes()))
	_, err := r.ReadBytes(10)
	if !errors.Is(err, ErrRange) {
		t.Fatalf("got err=%v want ErrRange", err)
	}
}

func TestReadFull_Truncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2, 3}))
	buf := make([]byte, 8)
	err := r.ReadFull(buf)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("got err=%v want io.ErrUnexpectedEOF", err)
	}
}

func TestReadFull_EmptyInput(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	buf := make([]byte, 1)
	err := r.ReadFull(buf)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("empty input should be unexpected EOF, got %v", err)
	}
}

func TestReader_StickyError(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x80})) // unterminated varint
	_, err := r.ReadUvarint()
	if err == nil {
		t.Fatalf("expected error for unterminated varint")
	}
	// Every subsequent read must fail with the same latched error.
	if _, err2 := r.ReadUvarint(); err2 != err {
		t.Fatalf("sticky error: got %v want %v", err2, err)
	}
	if err3 := r.ReadFull(make([]byte, 1)); err3 != err {
		t.Fatalf("sticky error: got %v want %v", err3, err)
	}
}

type failWriter struct{ calls int }

func (f *failWriter) Write(p []byte) (int, error) {
	f.calls++
	return 0, errors.New("boom")
}

func TestWriter_StickyError(t *testing.T) {
	fw := &failWriter{}
	w := NewWriter(fw)
	w.WriteUvarint(5)
	w.WriteBytes([]byte("more"))
	w.WriteRaw([]byte("even more"))
	if w.Err() == nil {
		t.Fatalf("expected write error")
	}
	if fw.calls != 1 {
		t.Fatalf("writes after the first error should be suppressed, got %d calls", fw.calls)
	}
}

func TestExpectEOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{7}))
	if _, err := r.ReadUvarint(); err != nil {
		t.Fatalf("ReadUvarint: %v", err)
	}
	if err := r.ExpectEOF(); err != nil {
		t.Fatalf("ExpectEOF at end: %v", err)
	}

	r = NewReader(bytes.NewReader([]byte{7, 8}))
	if _, err := r.ReadUvarint(); err != nil {
		t.Fatalf("ReadUvarint: %v", err)
	}
	if err := r.ExpectEOF(); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("got err=%v want ErrTrailingBytes", err)
	}
}
