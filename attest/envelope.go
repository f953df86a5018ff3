// Package attest binds proofs to program identities at the verification
// boundary.
//
// An Envelope carries the public input a verifier consumes (a program's
// ProgramInfo, byte-exact), the proof bytes themselves, and an optional
// signature by the party that produced the proof. Supported signature
// schemes are ed25519 and dilithium3 over a sha256, sha512, or sha3-256
// digest of the signed scope.
package attest

import (
	"bytes"

	"provenant.dev/mastvm/program"
	"provenant.dev/mastvm/wire"
)

// MaxProofLen bounds the proof payload accepted by the envelope decoder.
const MaxProofLen = 1 << 26

// maxFieldLen bounds the crypto block's string and signature fields.
const maxFieldLen = 1 << 16

// Signature algorithm names.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

// Hash algorithm names for the signed-scope digest.
const (
	HashSHA256  = "sha256"
	HashSHA512  = "sha512"
	HashSHA3256 = "sha3-256"
)

// Envelope is a proof bound to the ProgramInfo it attests to.
//
// SignatureAlg, HashAlg, ProverKey and Signature form the crypto block; all
// four are empty on an unsigned envelope. ProverKey uses the
// "<alg>:<base64>" form.
type Envelope struct {
	Info  program.ProgramInfo
	Proof []byte

	SignatureAlg string
	HashAlg      string
	ProverKey    string
	Signature    []byte
}

// PublicInput returns the byte sequence the proof-verification boundary
// consumes: the canonical ProgramInfo encoding.
func (e *Envelope) PublicInput() ([]byte, error) {
	return wire.Encode(e.Info)
}

// signedScope returns the bytes a signature covers: the ProgramInfo encoding
// followed by the length-prefixed proof. The crypto block is excluded so
// signing cannot invalidate itself.
func (e *Envelope) signedScope() ([]byte, error) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	e.Info.EncodeInto(w)
	w.WriteBytes(e.Proof)
	if err := w.Err(); err != nil {
		return nil, wrapError(KindEncoding, "MVM-ENC-001", "encoding signed scope failed", err)
	}
	return buf.Bytes(), nil
}

// EncodeInto writes the envelope: signed scope first, then the crypto block.
func (e *Envelope) EncodeInto(w *wire.Writer) {
	e.Info.EncodeInto(w)
	w.WriteBytes(e.Proof)
	w.WriteBytes([]byte(e.SignatureAlg))
	w.WriteBytes([]byte(e.HashAlg))
	w.WriteBytes([]byte(e.ProverKey))
	w.WriteBytes(e.Signature)
}

// DecodeEnvelope reads an envelope from r.
func DecodeEnvelope(r *wire.Reader) (*Envelope, error) {
	info, err := program.DecodeInfo(r)
	if err != nil {
		return nil, wrapError(KindEncoding, "MVM-ENC-101", "decoding program info failed", err)
	}
	proof, err := r.ReadBytes(MaxProofLen)
	if err != nil {
		return nil, wrapError(KindEncoding, "MVM-ENC-102", "decoding proof failed", err)
	}
	sigAlg, err := r.ReadBytes(maxFieldLen)
	if err != nil {
		return nil, wrapError(KindEncoding, "MVM-ENC-103", "decoding signature alg failed", err)
	}
	hashAlg, err := r.ReadBytes(maxFieldLen)
	if err != nil {
		return nil, wrapError(KindEncoding, "MVM-ENC-104", "decoding hash alg failed", err)
	}
	proverKey, err := r.ReadBytes(maxFieldLen)
	if err != nil {
		return nil, wrapError(KindEncoding, "MVM-ENC-105", "decoding prover key failed", err)
	}
	sig, err := r.ReadBytes(maxFieldLen)
	if err != nil {
		return nil, wrapError(KindEncoding, "MVM-ENC-106", "decoding signature failed", err)
	}
	return &Envelope{
		Info:         info,
		Proof:        proof,
		SignatureAlg: string(sigAlg),
		HashAlg:      string(hashAlg),
		ProverKey:    string(proverKey),
		Signature:    sig,
	}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e *Envelope) MarshalBinary() ([]byte, error) {
	return wire.Encode(e)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It rejects trailing
// bytes.
func (e *Envelope) UnmarshalBinary(data []byte) error {
	r := wire.NewReader(bytes.NewReader(data))
	decoded, err := DecodeEnvelope(r)
	if err != nil {
		return err
	}
	if err := r.ExpectEOF(); err != nil {
		return wrapError(KindEncoding, "MVM-ENC-107", "trailing bytes after envelope", err)
	}
	*e = *decoded
	return nil
}
