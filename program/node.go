package program

import (
	"errors"
	"fmt"

	"provenant.dev/mastvm/hash"
	"provenant.dev/mastvm/wire"
)

// MaxBlockCodeLen bounds the opcode payload of a single block node.
const MaxBlockCodeLen = 1 << 20

// maxTreeDepth bounds decoder recursion over the code tree.
const maxTreeDepth = 64

// ErrMalformedTree reports a code-tree encoding that cannot be decoded.
var ErrMalformedTree = errors.New("program: malformed code tree")

// Node is a node of a program's code tree. Every node carries a digest that
// commits to the whole subtree beneath it; the root node's digest is the
// program's identity.
//
// Nodes are immutable after construction. The interface is sealed: the four
// concrete kinds in this package are the only implementations.
type Node interface {
	// Digest returns the commitment to this subtree.
	Digest() hash.Digest

	kind() nodeKind
	encodeBody(w *wire.Writer)
}

type nodeKind byte

const (
	kindBlock nodeKind = 0x01
	kindJoin  nodeKind = 0x02
	kindSplit nodeKind = 0x03
	kindLoop  nodeKind = 0x04
)

// kindDigest folds the node kind into a child commitment so that, for
// example, a loop over a body and a block holding the body's digest bytes
// cannot collide.
func kindDigest(k nodeKind, d hash.Digest) hash.Digest {
	var tag hash.Digest
	tag[0] = byte(k)
	return hash.Merge(tag, d)
}

// BlockNode is a leaf holding straight-line code.
type BlockNode struct {
	code   []byte
	digest hash.Digest
}

// NewBlock constructs a leaf node over code. The bytes are copied.
func NewBlock(code []byte) *BlockNode {
	c := make([]byte, len(code))
	copy(c, code)
	return &BlockNode{code: c, digest: kindDigest(kindBlock, hash.Sum(c))}
}

// Code returns the block's code bytes. The slice is shared with the node and
// must not be mutated.
func (n *BlockNode) Code() []byte { return n.code }

func (n *BlockNode) Digest() hash.Digest { return n.digest }
func (n *BlockNode) kind() nodeKind { return kindBlock }

func (n *BlockNode) encodeBody(w *wire.Writer) {
	w.WriteBytes(n.code)
}

// JoinNode sequences two subtrees: first runs, then second.
type JoinNode struct {
	first, second Node
	digest        hash.Digest
}

func NewJoin(first, second Node) *JoinNode {
	return &JoinNode{
		first:  first,
		second: second,
		digest: kindDigest(kindJoin, hash.Merge(first.Digest(), second.Digest())),
	}
}

func (n *JoinNode) First() Node { return n.first }
func (n *JoinNode) Second() Node { return n.second }
func (n *JoinNode) Digest() hash.Digest { return n.digest }
func (n *JoinNode) kind() nodeKind { return kindJoin }

func (n *JoinNode) encodeBody(w *wire.Writer) {
	encodeNode(w, n.first)
	encodeNode(w, n.second)
}

// SplitNode selects one of two subtrees on a runtime condition.
type SplitNode struct {
	onTrue, onFalse Node
	digest          hash.Digest
}

func NewSplit(onTrue, onFalse Node) *SplitNode {
	return &SplitNode{
		onTrue:  onTrue,
		onFalse: onFalse,
		digest:  kindDigest(kindSplit, hash.Merge(onTrue.Digest(), onFalse.Digest())),
	}
}

func (n *SplitNode) OnTrue() Node { return n.onTrue }
func (n *SplitNode) OnFalse() Node { return n.onFalse }
func (n *SplitNode) Digest() hash.Digest { return n.digest }
func (n *SplitNode) kind() nodeKind { return kindSplit }

func (n *SplitNode) encodeBody(w *wire.Writer) {
	encodeNode(w, n.onTrue)
	encodeNode(w, n.onFalse)
}

// LoopNode repeats its body while a runtime condition holds.
type LoopNode struct {
	body   Node
	digest hash.Digest
}

func NewLoop(body Node) *LoopNode {
	return &LoopNode{body: body, digest: kindDigest(kindLoop, body.Digest())}
}

func (n *LoopNode) Body() Node { return n.body }
func (n *LoopNode) Digest() hash.Digest { return n.digest }
func (n *LoopNode) kind() nodeKind { return kindLoop }

func (n *LoopNode) encodeBody(w *wire.Writer) {
	encodeNode(w, n.body)
}

// encodeNode writes a node pre-order: kind byte, then the kind's body.
func encodeNode(w *wire.Writer, n Node) {
	w.WriteRaw([]byte{byte(n.kind())})
	n.encodeBody(w)
}

// decodeNode reads one node and, recursively, its subtree. Digests are
// recomputed during decoding, so a decoded tree always carries commitments
// consistent with its own content.
func decodeNode(r *wire.Reader, depth int) (Node, error) {
	if depth > maxTreeDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrMalformedTree, maxTreeDepth)
	}
	k, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch nodeKind(k) {
	case kindBlock:
		code, err := r.ReadBytes(MaxBlockCodeLen)
		if err != nil {
			return nil, err
		}
		return NewBlock(code), nil
	case kindJoin:
		first, err := decodeNode(r, depth+1)
		if err != nil {
			return nil, err
		}
		second, err := decodeNode(r, depth+1)
		if err != nil {
			return nil, err
		}
		return NewJoin(first, second), nil
	case kindSplit:
		onTrue, err := decodeNode(r, depth+1)
		if err != nil {
			return nil, err
		}
		onFalse, err := decodeNode(r, depth+1)
		if err != nil {
			return nil, err
		}
		return NewSplit(onTrue, onFalse), nil
	case kindLoop:
		body, err := decodeNode(r, depth+1)
		if err != nil {
			return nil, err
		}
		return NewLoop(body), nil
	default:
		return nil, fmt.Errorf("%w: unknown node kind 0x%02x", ErrMalformedTree, k)
	}
}
