// Package program models compiled units for the proving VM.
//
// A Program is a MAST-style code tree plus the kernel it was compiled
// against; the root node's digest is the program's cryptographic identity.
// ProgramInfo is the public-input projection of a program: root commitment
// and kernel only, with a byte-exact canonical encoding consumed at the
// proof-verification boundary.
package program
