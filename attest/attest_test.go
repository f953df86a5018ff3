package attest

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"provenant.dev/mastvm/hash"
	"provenant.dev/mastvm/kernel"
	"provenant.dev/mastvm/program"
	"provenant.dev/mastvm/wire"
)

func testInfo(t *testing.T) program.ProgramInfo {
	t.Helper()
	k, err := kernel.New([]hash.Digest{hash.Sum([]byte("syscall.1")), hash.Sum([]byte("syscall.2"))})
	if err != nil {
		t.Fatalf("kernel.New: %v", err)
	}
	return program.NewInfo(hash.Sum([]byte("program")), k)
}

func testSeed(b byte) ed25519.PrivateKey {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return ed25519.NewKeyFromSeed(seed)
}

func TestEnvelope_Codec_RoundTrip(t *testing.T) {
	env := &Envelope{Info: testInfo(t), Proof: []byte("proof bytes")}
	if err := SignEd25519(env, testSeed(0x11), HashSHA256); err != nil {
		t.Fatalf("SignEd25519: %v", err)
	}
	encoded, err := env.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	var got Envelope
	if err := got.UnmarshalBinary(encoded); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if !got.Info.Equal(env.Info) {
		t.Fatalf("info mismatch after round trip")
	}
	if string(got.Proof) != string(env.Proof) {
		t.Fatalf("proof mismatch after round trip")
	}
	if got.ProverKey != env.ProverKey || got.SignatureAlg != env.SignatureAlg {
		t.Fatalf("crypto block mismatch after round trip")
	}
	if err := got.Verify(); err != nil {
		t.Fatalf("decoded envelope must verify: %v", err)
	}
}

func TestSignEd25519_VerifyAllHashAlgs(t *testing.T) {
	for _, alg := range []string{HashSHA256, HashSHA512, HashSHA3256} {
		t.Run(alg, func(t *testing.T) {
			env := &Envelope{Info: testInfo(t), Proof: []byte("p")}
			if err := SignEd25519(env, testSeed(0x22), alg); err != nil {
				t.Fatalf("SignEd25519: %v", err)
			}
			if err := env.Verify(); err != nil {
				t.Fatalf("Verify: %v", err)
			}
		})
	}
}

func TestSignEd25519_UnsupportedHashAlg(t *testing.T) {
	env := &Envelope{Info: testInfo(t)}
	err := SignEd25519(env, testSeed(0x33), "md5")
	if !IsKind(err, KindCrypto) {
		t.Fatalf("got err=%v want KindCrypto", err)
	}
}

func TestSignDilithium3_Verify(t *testing.T) {
	_, priv, err := GenerateDilithium3Keypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateDilithium3Keypair: %v", err)
	}
	env := &Envelope{Info: testInfo(t), Proof: []byte("pq proof")}
	if err := SignDilithium3(env, priv, HashSHA3256); err != nil {
		t.Fatalf("SignDilithium3: %v", err)
	}
	if err := env.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_TamperedProofFails(t *testing.T) {
	env := &Envelope{Info: testInfo(t), Proof: []byte("honest proof")}
	if err := SignEd25519(env, testSeed(0x44), HashSHA256); err != nil {
		t.Fatalf("SignEd25519: %v", err)
	}
	env.Proof[0] ^= 0x01
	err := env.Verify()
	if err == nil {
		t.Fatalf("tampered proof must not verify")
	}
	if RuleID(err) != "MVM-VERIFY-401" {
		t.Fatalf("got rule %q want MVM-VERIFY-401 (err=%v)", RuleID(err), err)
	}
}

func TestVerify_TamperedInfoFails(t *testing.T) {
	env := &Envelope{Info: testInfo(t), Proof: []byte("proof")}
	if err := SignEd25519(env, testSeed(0x55), HashSHA256); err != nil {
		t.Fatalf("SignEd25519: %v", err)
	}
	// Rebind the proof to a different program identity.
	env.Info = program.NewInfo(hash.Sum([]byte("other program")), env.Info.Kernel())
	if err := env.Verify(); err == nil {
		t.Fatalf("a rebound envelope must not verify")
	}
}

func TestVerify_UnsignedFails(t *testing.T) {
	env := &Envelope{Info: testInfo(t), Proof: []byte("proof")}
	err := env.Verify()
	if !IsKind(err, KindVerify) {
		t.Fatalf("got err=%v want KindVerify", err)
	}
}

func TestVerify_KeyAlgMismatchFails(t *testing.T) {
	env := &Envelope{Info: testInfo(t), Proof: []byte("proof")}
	if err := SignEd25519(env, testSeed(0x66), HashSHA256); err != nil {
		t.Fatalf("SignEd25519: %v", err)
	}
	env.SignatureAlg = AlgDilithium3
	err := env.Verify()
	if RuleID(err) != "MVM-VERIFY-121" {
		t.Fatalf("got rule %q want MVM-VERIFY-121 (err=%v)", RuleID(err), err)
	}
}

func TestPublicInput_IsInfoEncoding(t *testing.T) {
	env := &Envelope{Info: testInfo(t)}
	got, err := env.PublicInput()
	if err != nil {
		t.Fatalf("PublicInput: %v", err)
	}
	want, err := env.Info.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("public input must be the canonical ProgramInfo encoding")
	}
}

func TestDecodeEnvelope_Truncated(t *testing.T) {
	env := &Envelope{Info: testInfo(t), Proof: []byte("proof")}
	if err := SignEd25519(env, testSeed(0x77), HashSHA256); err != nil {
		t.Fatalf("SignEd25519: %v", err)
	}
	encoded, err := env.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	var got Envelope
	err = got.UnmarshalBinary(encoded[:len(encoded)-3])
	if err == nil {
		t.Fatalf("truncated envelope must not decode")
	}
	if !IsKind(err, KindEncoding) {
		t.Fatalf("got err=%v want KindEncoding", err)
	}
}

func TestDecodeEnvelope_TrailingBytes(t *testing.T) {
	env := &Envelope{Info: testInfo(t), Proof: []byte("proof")}
	encoded, err := env.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var got Envelope
	err = got.UnmarshalBinary(append(encoded, 0x00))
	if !errors.Is(err, wire.ErrTrailingBytes) {
		t.Fatalf("got err=%v want ErrTrailingBytes", err)
	}
}
