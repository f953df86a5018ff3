// Package hash defines the fixed-size BLAKE3 digest used as the commitment
// primitive throughout this module.
//
// A Digest is a plain comparable value. The zero value is the all-zero
// digest: it encodes and compares like any other digest but never names real
// content, so callers must not treat it as a legitimate commitment.
package hash

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"

	"provenant.dev/mastvm/wire"
)

// Size is the digest length in bytes.
const Size = 32

// Domain-separation prefixes. Leaf content and interior merges must never
// collide, so each goes through the hash under a distinct first byte.
const (
	domainLeaf  = 0x00
	domainMerge = 0x01
)

// Digest is a 256-bit BLAKE3 commitment.
type Digest [Size]byte

// Sum returns the digest committing to data.
func Sum(data []byte) Digest {
	buf := make([]byte, 1+len(data))
	buf[0] = domainLeaf
	copy(buf[1:], data)
	return Digest(blake3.Sum256(buf))
}

// Merge returns the digest committing to the ordered pair (a, b).
// Merge(a, b) and Merge(b, a) differ unless a == b.
func Merge(a, b Digest) Digest {
	var buf [1 + 2*Size]byte
	buf[0] = domainMerge
	copy(buf[1:], a[:])
	copy(buf[1+Size:], b[:])
	return Digest(blake3.Sum256(buf[:]))
}

// FromHex parses a digest from its 64-character hex form.
func FromHex(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("hash: invalid hex digest: %w", err)
	}
	if len(b) != Size {
		return d, fmt.Errorf("hash: digest must be %d bytes, got %d", Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Bytes returns a copy of the digest bytes.
func (d Digest) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, d[:])
	return out
}

// Equal reports field-wise equality with other.
func (d Digest) Equal(other Digest) bool { return d == other }

// IsZero reports whether d is the all-zero digest.
func (d Digest) IsZero() bool { return d == Digest{} }

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// EncodeInto writes the fixed-size digest bytes, no prefix.
func (d Digest) EncodeInto(w *wire.Writer) {
	w.WriteRaw(d[:])
}

// DecodeDigest reads a fixed-size digest from r.
func DecodeDigest(r *wire.Reader) (Digest, error) {
	var d Digest
	if err := r.ReadFull(d[:]); err != nil {
		return Digest{}, err
	}
	return d, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (d Digest) MarshalBinary() ([]byte, error) {
	return d.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It requires exactly
// Size bytes.
func (d *Digest) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("hash: digest must be %d bytes, got %d", Size, len(data))
	}
	copy(d[:], data)
	return nil
}
