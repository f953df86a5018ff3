// Package kernel models the trusted procedure library a program is compiled
// against: an ordered list of procedure root digests.
//
// Ordering is opaque and preserved verbatim. The kernel neither sorts nor
// de-duplicates procedure roots; two kernels holding the same roots in a
// different order are different kernels.
package kernel

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"provenant.dev/mastvm/hash"
	"provenant.dev/mastvm/wire"
)

// MaxProcedures bounds the number of procedure roots a kernel may hold.
const MaxProcedures = 256

// ErrTooManyProcedures reports a kernel exceeding MaxProcedures, whether
// during construction or while decoding.
var ErrTooManyProcedures = errors.New("kernel: too many procedures")

// Kernel is an immutable ordered collection of procedure root digests.
//
// The zero value is the empty kernel: valid, encodable, and equal only to
// other empty kernels.
type Kernel struct {
	procRoots []hash.Digest
}

// New constructs a kernel from procRoots, keeping the given order. It fails
// only when procRoots exceeds MaxProcedures.
func New(procRoots []hash.Digest) (Kernel, error) {
	if len(procRoots) > MaxProcedures {
		return Kernel{}, fmt.Errorf("%w: %d > %d", ErrTooManyProcedures, len(procRoots), MaxProcedures)
	}
	if len(procRoots) == 0 {
		return Kernel{}, nil
	}
	roots := make([]hash.Digest, len(procRoots))
	copy(roots, procRoots)
	return Kernel{procRoots: roots}, nil
}

// ProcRoots returns the procedure root digests in the kernel's own order.
// The returned slice is shared with the kernel and must not be mutated.
func (k Kernel) ProcRoots() []hash.Digest { return k.procRoots }

// NumProcedures returns the number of procedure roots.
func (k Kernel) NumProcedures() int { return len(k.procRoots) }

// IsEmpty reports whether the kernel holds no procedures.
func (k Kernel) IsEmpty() bool { return len(k.procRoots) == 0 }

// Contains reports whether root is one of the kernel's procedure roots.
func (k Kernel) Contains(root hash.Digest) bool {
	for _, r := range k.procRoots {
		if r == root {
			return true
		}
	}
	return false
}

// Equal reports structural equality: same roots, same order.
func (k Kernel) Equal(other Kernel) bool {
	if len(k.procRoots) != len(other.procRoots) {
		return false
	}
	for i, r := range k.procRoots {
		if r != other.procRoots[i] {
			return false
		}
	}
	return true
}

func (k Kernel) String() string {
	if k.IsEmpty() {
		return "kernel{}"
	}
	var sb strings.Builder
	sb.WriteString("kernel{")
	for i, r := range k.procRoots {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.String())
	}
	sb.WriteString("}")
	return sb.String()
}

// EncodeInto writes the kernel as a uvarint procedure count followed by the
// fixed-size procedure roots in order.
func (k Kernel) EncodeInto(w *wire.Writer) {
	w.WriteUvarint(uint64(len(k.procRoots)))
	for _, r := range k.procRoots {
		r.EncodeInto(w)
	}
}

// DecodeKernel reads a kernel from r. A count above MaxProcedures fails with
// ErrTooManyProcedures before any digest is read.
func DecodeKernel(r *wire.Reader) (Kernel, error) {
	count, err := r.ReadUvarint()
	if err != nil {
		return Kernel{}, err
	}
	if count > MaxProcedures {
		return Kernel{}, fmt.Errorf("%w: %d > %d", ErrTooManyProcedures, count, MaxProcedures)
	}
	if count == 0 {
		return Kernel{}, nil
	}
	roots := make([]hash.Digest, count)
	for i := range roots {
		roots[i], err = hash.DecodeDigest(r)
		if err != nil {
			return Kernel{}, err
		}
	}
	return Kernel{procRoots: roots}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (k Kernel) MarshalBinary() ([]byte, error) {
	return wire.Encode(k)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It rejects trailing
// bytes.
func (k *Kernel) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(bytes.NewReader(data))
	decoded, err := DecodeKernel(r)
	if err != nil {
		return err
	}
	if err := r.ExpectEOF(); err != nil {
		return err
	}
	*k = decoded
	return nil
}
