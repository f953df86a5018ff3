// Package store provides content-addressed storage for canonical program
// objects: encoded programs, program infos, and proof envelopes.
//
// Objects are keyed by CIDv1 (raw codec, blake3 multihash) derived from the
// exact bytes stored, so a stored program's CID commits to its canonical
// encoding the same way its program hash commits to its code tree.
package store

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Store is a minimal content-addressable object store.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written.
// - Get MUST return ErrNotFound when the CID is absent.
type Store interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// CIDFor returns the CIDv1 (raw + blake3) for data.
func CIDFor(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.BLAKE3, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}
