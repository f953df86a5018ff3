package hash

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"provenant.dev/mastvm/wire"
)

func TestSum_Deterministic(t *testing.T) {
	a := Sum([]byte("payload"))
	b := Sum([]byte("payload"))
	if a != b {
		t.Fatalf("Sum not deterministic: %s vs %s", a, b)
	}
	if a == Sum([]byte("other payload")) {
		t.Fatalf("distinct inputs produced the same digest")
	}
	if a.IsZero() {
		t.Fatalf("Sum produced the zero digest")
	}
}

func TestMerge_OrderMatters(t *testing.T) {
	a := Sum([]byte("a"))
	b := Sum([]byte("b"))
	if Merge(a, b) == Merge(b, a) {
		t.Fatalf("Merge should depend on operand order")
	}
	if Merge(a, b) != Merge(a, b) {
		t.Fatalf("Merge not deterministic")
	}
}

func TestMerge_DomainSeparatedFromSum(t *testing.T) {
	a := Sum([]byte("a"))
	b := Sum([]byte("b"))
	concat := append(a.Bytes(), b.Bytes()...)
	if Merge(a, b) == Sum(concat) {
		t.Fatalf("interior merge must not collide with a leaf over the concatenated bytes")
	}
}

func TestHex_RoundTrip(t *testing.T) {
	d := Sum([]byte("round trip"))
	got, err := FromHex(d.String())
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	if got != d {
		t.Fatalf("hex round trip mismatch")
	}
}

func TestFromHex_Invalid(t *testing.T) {
	if _, err := FromHex("zz"); err == nil {
		t.Fatalf("expected error for non-hex input")
	}
	if _, err := FromHex("abcd"); err == nil {
		t.Fatalf("expected error for short input")
	}
}

func TestWire_RoundTrip(t *testing.T) {
	d := Sum([]byte("wire"))
	encoded, err := wire.Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) != Size {
		t.Fatalf("encoded length: got %d want %d", len(encoded), Size)
	}

	got, err := DecodeDigest(wire.NewReader(bytes.NewReader(encoded)))
	if err != nil {
		t.Fatalf("DecodeDigest: %v", err)
	}
	if got != d {
		t.Fatalf("wire round trip mismatch")
	}
}

func TestDecodeDigest_Truncated(t *testing.T) {
	d := Sum([]byte("short"))
	encoded, err := wire.Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = DecodeDigest(wire.NewReader(bytes.NewReader(encoded[:Size-1])))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("got err=%v want io.ErrUnexpectedEOF", err)
	}
}

func TestZeroDigest(t *testing.T) {
	var d Digest
	if !d.IsZero() {
		t.Fatalf("zero value should report IsZero")
	}
	encoded, err := d.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var got Digest
	if err := got.UnmarshalBinary(encoded); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if !got.Equal(d) {
		t.Fatalf("zero digest round trip mismatch")
	}
}

func TestUnmarshalBinary_WrongLength(t *testing.T) {
	var d Digest
	if err := d.UnmarshalBinary(make([]byte, Size-1)); err == nil {
		t.Fatalf("expected error for short input")
	}
	if err := d.UnmarshalBinary(make([]byte, Size+1)); err == nil {
		t.Fatalf("expected error for long input")
	}
}
