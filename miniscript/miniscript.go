// Package miniscript defines the contract between the descriptor realizer
// and a miniscript compiler. The realizer never inspects miniscript itself:
// it hands over fragments whose keys have already been replaced by opaque
// placeholders (@0, @1, ...) and receives script assembly back, with the
// placeholders carried through verbatim.
package miniscript

// Compilation is the result of compiling a miniscript fragment to script
// assembly. Key placeholders appear in the assembly as <@i> or <HASH160(@i)>
// tokens; numeric arguments appear as bare decimal integers.
type Compilation struct {
	Asm    string
	IsSane bool
}

// Satisfaction is a single unlocking template for a compiled fragment.
// Signature placeholders appear as <sig(@i)> tokens, preimage placeholders
// as <sha256_preimage(...)>, <hash256_preimage(...)>, <ripemd160_preimage(...)>
// and <hash160_preimage(...)> tokens.
type Satisfaction struct {
	Asm string
}

// Satisfactions groups the unlocking templates the satisfier found for a
// fragment. NonMalleableSats is ordered by the satisfier's own preference;
// the realizer picks the first entry.
type Satisfactions struct {
	NonMalleableSats []Satisfaction
}

// Compiler compiles and satisfies miniscript fragments. Implementations must
// be pure: same fragment in, same assembly out, no side effects. The
// descriptor package calls Compile and Satisfy with fragments containing only
// @i key placeholders, so implementations never see real public keys.
type Compiler interface {
	// Compile translates the fragment to locking-script assembly and
	// reports whether the fragment is sane (consensus and standardness
	// valid, non-malleable).
	Compile(fragment string) (Compilation, error)

	// Satisfy returns the known unlocking templates for the fragment.
	// Elements of unknowns name the placeholders whose signatures or
	// preimages must not be assumed available.
	Satisfy(fragment string, unknowns []string) (Satisfactions, error)
}
