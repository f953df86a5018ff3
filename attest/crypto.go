package attest

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"io"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case HashSHA256:
		s := sha256.Sum256(message)
		return s[:], nil
	case HashSHA512:
		s := sha512.Sum512(message)
		return s[:], nil
	case HashSHA3256:
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, newError(KindCrypto, "MVM-CRYPTO-201", "unsupported hash alg")
	}
}

// FormatProverKey renders raw public key bytes in the "<alg>:<base64>" form.
func FormatProverKey(alg string, pub []byte) string {
	return alg + ":" + base64.StdEncoding.EncodeToString(pub)
}

// proverKeyBytes parses the "<alg>:<base64>" form and validates the key
// against the named scheme.
func proverKeyBytes(key string) (alg string, pub []byte, err error) {
	alg, enc, ok := strings.Cut(key, ":")
	if !ok {
		return "", nil, newError(KindCrypto, "MVM-CRYPTO-111", "invalid prover key encoding")
	}
	pub, err = decodeBase64(enc)
	if err != nil {
		return "", nil, wrapError(KindCrypto, "MVM-CRYPTO-113", "invalid prover key base64", err)
	}
	switch alg {
	case AlgEd25519:
		if len(pub) != ed25519.PublicKeySize {
			return "", nil, newError(KindCrypto, "MVM-CRYPTO-114", "invalid ed25519 public key length")
		}
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return "", nil, wrapError(KindCrypto, "MVM-CRYPTO-115", "invalid dilithium3 public key", err)
		}
	default:
		return "", nil, newError(KindCrypto, "MVM-CRYPTO-112", "unsupported prover key encoding")
	}
	return alg, pub, nil
}

// SignEd25519 signs the envelope's scope with priv over a hashAlg digest and
// fills in the crypto block.
func SignEd25519(e *Envelope, priv ed25519.PrivateKey, hashAlg string) error {
	scope, err := e.signedScope()
	if err != nil {
		return err
	}
	digest, err := digestFor(hashAlg, scope)
	if err != nil {
		return err
	}
	pub := priv.Public().(ed25519.PublicKey)
	e.SignatureAlg = AlgEd25519
	e.HashAlg = hashAlg
	e.ProverKey = FormatProverKey(AlgEd25519, pub)
	e.Signature = ed25519.Sign(priv, digest)
	return nil
}

// SignDilithium3 signs the envelope's scope with priv over a hashAlg digest
// and fills in the crypto block.
func SignDilithium3(e *Envelope, priv *mode3.PrivateKey, hashAlg string) error {
	if priv == nil {
		return newError(KindCrypto, "MVM-CRYPTO-501", "missing private key")
	}
	scope, err := e.signedScope()
	if err != nil {
		return err
	}
	digest, err := digestFor(hashAlg, scope)
	if err != nil {
		return err
	}
	pub := priv.Public().(*mode3.PublicKey)
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return wrapError(KindCrypto, "MVM-CRYPTO-502", "encoding dilithium3 public key failed", err)
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(priv, digest, sig)
	e.SignatureAlg = AlgDilithium3
	e.HashAlg = hashAlg
	e.ProverKey = FormatProverKey(AlgDilithium3, pubBytes)
	e.Signature = sig
	return nil
}

// GenerateDilithium3Keypair returns a new dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}

// Verify checks the envelope's signature over its signed scope.
//
// An unsigned envelope (empty crypto block) fails verification: the caller
// asked for an attested proof and there is none.
func (e *Envelope) Verify() error {
	if e == nil {
		return newError(KindVerify, "MVM-VERIFY-001", "nil envelope")
	}
	if e.SignatureAlg == "" {
		return newError(KindVerify, "MVM-VERIFY-101", "missing signature alg")
	}
	if e.HashAlg == "" {
		return newError(KindVerify, "MVM-VERIFY-102", "missing hash alg")
	}
	if e.ProverKey == "" {
		return newError(KindVerify, "MVM-VERIFY-103", "missing prover key")
	}
	keyAlg, pub, err := proverKeyBytes(e.ProverKey)
	if err != nil {
		return err
	}
	if keyAlg != e.SignatureAlg {
		return newError(KindVerify, "MVM-VERIFY-121", "prover key alg does not match signature alg")
	}
	scope, err := e.signedScope()
	if err != nil {
		return err
	}
	digest, err := digestFor(e.HashAlg, scope)
	if err != nil {
		return err
	}
	switch e.SignatureAlg {
	case AlgEd25519:
		if len(e.Signature) != ed25519.SignatureSize {
			return newError(KindVerify, "MVM-VERIFY-132", "invalid ed25519 signature length")
		}
		if !ed25519.Verify(ed25519.PublicKey(pub), digest, e.Signature) {
			return newError(KindVerify, "MVM-VERIFY-401", "signature invalid")
		}
		return nil
	case AlgDilithium3:
		if len(e.Signature) != mode3.SignatureSize {
			return newError(KindVerify, "MVM-VERIFY-133", "invalid dilithium3 signature length")
		}
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return wrapError(KindVerify, "MVM-VERIFY-115", "invalid dilithium3 public key", err)
		}
		if !mode3.Verify(&pk, digest, e.Signature) {
			return newError(KindVerify, "MVM-VERIFY-401", "signature invalid")
		}
		return nil
	default:
		return newError(KindVerify, "MVM-VERIFY-301", "unsupported signature alg")
	}
}

func decodeBase64(s string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
