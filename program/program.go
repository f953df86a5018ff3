package program

import (
	"bytes"
	"errors"

	"provenant.dev/mastvm/hash"
	"provenant.dev/mastvm/kernel"
	"provenant.dev/mastvm/wire"
)

// ErrNilRoot reports an attempt to build a program without a code tree.
var ErrNilRoot = errors.New("program: nil root node")

// Program is a compiled unit: a code tree whose root commits to the whole
// program, and the kernel the program was compiled against.
type Program struct {
	root   Node
	kernel kernel.Kernel
}

// New constructs a program from a root node and a kernel.
func New(root Node, k kernel.Kernel) (*Program, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	return &Program{root: root, kernel: k}, nil
}

// Root returns the root node of the code tree.
func (p *Program) Root() Node { return p.root }

// Kernel returns the kernel the program was compiled against.
func (p *Program) Kernel() kernel.Kernel { return p.kernel }

// Hash returns the program's root commitment, its cryptographic identity.
func (p *Program) Hash() hash.Digest { return p.root.Digest() }

// EncodeInto writes the full code tree followed by the kernel.
func (p *Program) EncodeInto(w *wire.Writer) {
	encodeNode(w, p.root)
	p.kernel.EncodeInto(w)
}

// DecodeProgram reads a program from r. The decoded tree's digests are
// recomputed from content, so the returned program's Hash is authoritative
// for the bytes that were read.
func DecodeProgram(r *wire.Reader) (*Program, error) {
	root, err := decodeNode(r, 0)
	if err != nil {
		return nil, err
	}
	k, err := kernel.DecodeKernel(r)
	if err != nil {
		return nil, err
	}
	return &Program{root: root, kernel: k}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Program) MarshalBinary() ([]byte, error) {
	return wire.Encode(p)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It rejects trailing
// bytes.
func (p *Program) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(bytes.NewReader(data))
	decoded, err := DecodeProgram(r)
	if err != nil {
		return err
	}
	if err := r.ExpectEOF(); err != nil {
		return err
	}
	*p = *decoded
	return nil
}
