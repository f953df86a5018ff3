package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ipfs/go-cid"

	"provenant.dev/mastvm/attest"
	"provenant.dev/mastvm/hash"
	"provenant.dev/mastvm/program"
	"provenant.dev/mastvm/store"
	"provenant.dev/mastvm/store/grpcstore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "hash":
		return cmdHash(args[1:], out, errOut)
	case "info":
		return cmdInfo(args[1:], out, errOut)
	case "decode-info":
		return cmdDecodeInfo(args[1:], out, errOut)
	case "put":
		return cmdPut(args[1:], out, errOut)
	case "get":
		return cmdGet(args[1:], out, errOut)
	case "attest":
		return cmdAttest(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "mastvm: program identity and proof-binding CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mastvm hash <file>")
	fmt.Fprintln(w, "  mastvm info <program-file>")
	fmt.Fprintln(w, "  mastvm decode-info <info-file>")
	fmt.Fprintln(w, "  mastvm put (--root <dir> | --target <addr>) <file>")
	fmt.Fprintln(w, "  mastvm get (--root <dir> | --target <addr>) <cid>")
	fmt.Fprintln(w, "  mastvm attest --program <file> --proof <file> --seed-hex <64hex> [--hash-alg <alg>]")
	fmt.Fprintln(w, "  mastvm verify <envelope-file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - program/info/envelope files hold canonical binary encodings")
	fmt.Fprintln(w, "  - attest writes the signed envelope to stdout")
	fmt.Fprintln(w, "  - get writes the object bytes to stdout")
}

func cmdHash(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "usage: mastvm hash <file>")
		return 2
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, hash.Sum(b))
	return 0
}

func cmdInfo(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "usage: mastvm info <program-file>")
		return 2
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	var p program.Program
	if err := p.UnmarshalBinary(b); err != nil {
		fmt.Fprintf(errOut, "decoding program: %v\n", err)
		return 1
	}
	info := program.InfoOf(&p)
	encoded, err := info.MarshalBinary()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	id, err := store.CIDFor(encoded)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "program-hash: %s\n", info.ProgramHash())
	fmt.Fprintf(out, "kernel-procedures: %d\n", info.Kernel().NumProcedures())
	for _, r := range info.KernelProcedures() {
		fmt.Fprintf(out, "  %s\n", r)
	}
	fmt.Fprintf(out, "public-input: %s\n", hex.EncodeToString(encoded))
	fmt.Fprintf(out, "cid: %s\n", id)
	return 0
}

func cmdDecodeInfo(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "usage: mastvm decode-info <info-file>")
		return 2
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	var info program.ProgramInfo
	if err := info.UnmarshalBinary(b); err != nil {
		fmt.Fprintf(errOut, "decoding program info: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "program-hash: %s\n", info.ProgramHash())
	fmt.Fprintf(out, "kernel-procedures: %d\n", info.Kernel().NumProcedures())
	for _, r := range info.KernelProcedures() {
		fmt.Fprintf(out, "  %s\n", r)
	}
	return 0
}

// openStore picks the filesystem or gRPC backend from flags. Exactly one of
// root/target must be set.
func openStore(root, target string) (store.Store, func(), error) {
	switch {
	case root != "" && target != "":
		return nil, nil, fmt.Errorf("use either --root or --target, not both")
	case root != "":
		s, err := store.NewFS(root)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case target != "":
		c, err := grpcstore.Dial(target, grpcstore.DialOptions{})
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("one of --root or --target is required")
	}
}

func cmdPut(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	fs.SetOutput(errOut)
	root := fs.String("root", "", "filesystem store root")
	target := fs.String("target", "", "gRPC store address")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: mastvm put (--root <dir> | --target <addr>) <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	s, closeFn, err := openStore(*root, *target)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	defer closeFn()
	id, err := s.Put(b)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, id)
	return 0
}

func cmdGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	root := fs.String("root", "", "filesystem store root")
	target := fs.String("target", "", "gRPC store address")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: mastvm get (--root <dir> | --target <addr>) <cid>")
		return 2
	}
	id, err := cid.Decode(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "invalid cid: %v\n", err)
		return 2
	}
	s, closeFn, err := openStore(*root, *target)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	defer closeFn()
	b, err := s.Get(id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if _, err := out.Write(b); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdAttest(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("attest", flag.ContinueOnError)
	fs.SetOutput(errOut)
	programPath := fs.String("program", "", "canonical program file")
	proofPath := fs.String("proof", "", "proof bytes file")
	seedHex := fs.String("seed-hex", "", "ed25519 seed (64 hex chars)")
	hashAlg := fs.String("hash-alg", attest.HashSHA256, "signed-scope hash alg (sha256, sha512, sha3-256)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *programPath == "" || *proofPath == "" || *seedHex == "" {
		fmt.Fprintln(errOut, "usage: mastvm attest --program <file> --proof <file> --seed-hex <64hex> [--hash-alg <alg>]")
		return 2
	}
	seed, err := hex.DecodeString(*seedHex)
	if err != nil || len(seed) != ed25519.SeedSize {
		fmt.Fprintln(errOut, "--seed-hex must be 32 bytes (64 hex chars)")
		return 2
	}
	programBytes, err := os.ReadFile(*programPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	proof, err := os.ReadFile(*proofPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	var p program.Program
	if err := p.UnmarshalBinary(programBytes); err != nil {
		fmt.Fprintf(errOut, "decoding program: %v\n", err)
		return 1
	}

	env := &attest.Envelope{Info: program.InfoOf(&p), Proof: proof}
	if err := attest.SignEd25519(env, ed25519.NewKeyFromSeed(seed), *hashAlg); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	encoded, err := env.MarshalBinary()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if _, err := out.Write(encoded); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "usage: mastvm verify <envelope-file>")
		return 2
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	var env attest.Envelope
	if err := env.UnmarshalBinary(b); err != nil {
		fmt.Fprintf(errOut, "decoding envelope: %v\n", err)
		return 1
	}
	if err := env.Verify(); err != nil {
		fmt.Fprintf(errOut, "verification failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "ok\nprogram-hash: %s\nkernel-procedures: %d\nprover-key: %s\n",
		env.Info.ProgramHash(), env.Info.Kernel().NumProcedures(), env.ProverKey)
	return 0
}
