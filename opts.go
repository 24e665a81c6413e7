package descriptors

import (
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/arkade-os/go-descriptors/miniscript"
)

// Option is a functional option for configuring descriptor realization.
type Option func(*options)

type options struct {
	index                 int
	hasIndex              bool
	checksumRequired      bool
	allowMiniscriptInP2SH bool
	unknowns              []string
	network               *chaincfg.Params
	compiler              miniscript.Compiler
}

func newDefaultOptions() *options {
	return &options{
		index:   -1,
		network: &chaincfg.MainNetParams,
	}
}

// WithIndex materializes a ranged descriptor at the given child index. Every
// * wildcard in the expression resolves to this same index.
func WithIndex(index int) Option {
	return func(o *options) {
		o.index = index
		o.hasIndex = true
	}
}

// WithChecksumRequired rejects expressions without a trailing #checksum.
// Default: a missing checksum is accepted, a present one is always verified.
func WithChecksumRequired() Option {
	return func(o *options) {
		o.checksumRequired = true
	}
}

// WithMiniscriptInP2SH lifts the restriction that sh() may only wrap the
// standard single-key and multisig forms. Scripts beyond those forms may
// still be rejected by the network even though they realize here.
func WithMiniscriptInP2SH() Option {
	return func(o *options) {
		o.allowMiniscriptInP2SH = true
	}
}

// WithUnknowns names the placeholders whose signatures or preimages the
// satisfier must not assume available. Default: everything is available.
func WithUnknowns(unknowns []string) Option {
	return func(o *options) {
		o.unknowns = unknowns
	}
}

// WithNetwork selects the network the descriptor belongs to.
// Default: mainnet.
func WithNetwork(network *chaincfg.Params) Option {
	return func(o *options) {
		if network != nil {
			o.network = network
		}
	}
}

// WithCompiler provides the miniscript compiler used for sh() and wsh()
// script expressions. Descriptors without miniscript never need one.
func WithCompiler(compiler miniscript.Compiler) Option {
	return func(o *options) {
		o.compiler = compiler
	}
}
