package program

import (
	"bytes"
	"fmt"

	"provenant.dev/mastvm/hash"
	"provenant.dev/mastvm/kernel"
	"provenant.dev/mastvm/wire"
)

// ProgramInfo binds a program's root commitment to the kernel it was
// compiled against.
//
// It travels as public input alongside a proof, so that verifying the proof
// is verification against exactly this program and exactly this kernel: the
// proof's guarantees extend to the kernel's, and a holder can prove kernel
// procedure membership for a given proof without learning anything else
// about the program.
//
// ProgramInfo is immutable once constructed and safe to share across
// goroutines without synchronization. The zero value (zero digest, empty
// kernel) is valid and encodable but corresponds to no real program; callers
// must never accept it as a verification target.
type ProgramInfo struct {
	programHash hash.Digest
	kernel      kernel.Kernel
}

// NewInfo constructs a ProgramInfo from a program hash and a kernel, stored
// verbatim. It performs no validation beyond what the field types guarantee.
func NewInfo(programHash hash.Digest, k kernel.Kernel) ProgramInfo {
	return ProgramInfo{programHash: programHash, kernel: k}
}

// InfoOf projects a compiled program to its ProgramInfo: the root node's
// commitment plus the kernel, verbatim. The projection is lossy: the code
// tree is discarded and cannot be reconstructed from the result.
func InfoOf(p *Program) ProgramInfo {
	return ProgramInfo{programHash: p.Hash(), kernel: p.Kernel()}
}

// ProgramHash returns the commitment to the program's code tree.
func (pi ProgramInfo) ProgramHash() hash.Digest { return pi.programHash }

// Kernel returns the kernel used during compilation.
func (pi ProgramInfo) Kernel() kernel.Kernel { return pi.kernel }

// KernelProcedures returns the kernel's procedure root digests in the
// kernel's own order, unmodified. The slice is shared with the kernel and
// must not be mutated.
func (pi ProgramInfo) KernelProcedures() []hash.Digest {
	return pi.kernel.ProcRoots()
}

// Equal reports structural equality: both fields equal, nothing else
// participates.
func (pi ProgramInfo) Equal(other ProgramInfo) bool {
	return pi.programHash == other.programHash && pi.kernel.Equal(other.kernel)
}

func (pi ProgramInfo) String() string {
	return fmt.Sprintf("programinfo{hash: %s, %s}", pi.programHash, pi.kernel)
}

// EncodeInto writes the public-input encoding: the fixed-size program hash
// followed by the kernel's self-describing encoding, in that order.
func (pi ProgramInfo) EncodeInto(w *wire.Writer) {
	pi.programHash.EncodeInto(w)
	pi.kernel.EncodeInto(w)
}

// DecodeInfo reads a ProgramInfo from r: program hash first, then kernel.
// It fails on a truncated digest, on a truncated kernel, and on a malformed
// kernel encoding; kernel errors surface unchanged. No further validation is
// performed: any bit pattern yielding a valid digest and kernel decodes,
// including the degenerate all-zero/empty value.
func DecodeInfo(r *wire.Reader) (ProgramInfo, error) {
	programHash, err := hash.DecodeDigest(r)
	if err != nil {
		return ProgramInfo{}, err
	}
	k, err := kernel.DecodeKernel(r)
	if err != nil {
		return ProgramInfo{}, err
	}
	return ProgramInfo{programHash: programHash, kernel: k}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pi ProgramInfo) MarshalBinary() ([]byte, error) {
	return wire.Encode(pi)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It rejects trailing
// bytes.
func (pi *ProgramInfo) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(bytes.NewReader(data))
	decoded, err := DecodeInfo(r)
	if err != nil {
		return err
	}
	if err := r.ExpectEOF(); err != nil {
		return err
	}
	*pi = decoded
	return nil
}
