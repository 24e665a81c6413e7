// Package descriptors parses and realizes Bitcoin output descriptors,
// including miniscript inside sh() and wsh(). A realized Descriptor exposes
// the scriptPubKey, the address when one exists, the redeem and witness
// scripts of wrapped forms, and the satisfaction assembly template that a
// signing layer instantiates into an unlocking witness.
package descriptors

import (
	"crypto/sha256"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/arkade-os/go-descriptors/internal/scriptasm"
)

// Kind discriminates the envelope a descriptor expression matched.
type Kind int

const (
	KindAddr Kind = iota
	KindPk
	KindPkh
	KindWpkh
	KindShWpkh
	KindShMiniscript
	KindWshMiniscript
	KindShWshMiniscript
)

func (k Kind) String() string {
	switch k {
	case KindAddr:
		return "addr"
	case KindPk:
		return "pk"
	case KindPkh:
		return "pkh"
	case KindWpkh:
		return "wpkh"
	case KindShWpkh:
		return "sh(wpkh)"
	case KindShMiniscript:
		return "sh(miniscript)"
	case KindWshMiniscript:
		return "wsh(miniscript)"
	case KindShWshMiniscript:
		return "sh(wsh(miniscript))"
	default:
		return "unknown"
	}
}

const (
	// maxP2SHRedeemSize is the consensus limit on a P2SH redeem script.
	maxP2SHRedeemSize = 520

	// maxP2WSHWitnessSize is the standardness limit on a P2WSH witness
	// script.
	maxP2WSHWitnessSize = 3600
)

// p2shMiniscriptHeads are the only script expressions allowed inside a bare
// sh() unless WithMiniscriptInP2SH is set.
var p2shMiniscriptHeads = []string{
	"pk(", "pkh(", "wpkh(", "combo(",
	"multi(", "sortedmulti(", "multi_a(", "sortedmulti_a(",
}

// Payment is the realized output of a descriptor. Fields are populated
// according to the envelope: only addressable envelopes carry an Address,
// only sh-wrapped ones a RedeemScript, only wsh ones a WitnessScript.
type Payment struct {
	Address       string
	ScriptPubKey  []byte
	RedeemScript  []byte
	WitnessScript []byte
}

// Descriptor is a realized output descriptor. It is built in one shot by
// NewDescriptor from validated inputs and never mutated afterwards.
type Descriptor struct {
	kind         Kind
	expression   string
	network      *chaincfg.Params
	payment      Payment
	satisfaction string
	keyMap       map[string]string
}

// NewDescriptor realizes a descriptor expression. A trailing #checksum is
// verified when present and, with WithChecksumRequired, demanded. Ranged
// expressions need WithIndex; expressions containing miniscript need
// WithCompiler.
func NewDescriptor(expression string, opts ...Option) (*Descriptor, error) {
	o := newDefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	bare, err := isolate(expression, o.index, o.hasIndex, o.checksumRequired)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{expression: bare, network: o.network}
	if m := reAddrEnvelope.FindStringSubmatch(bare); m != nil {
		err = d.realizeAddr(m[1])
	} else if m := rePkEnvelope.FindStringSubmatch(bare); m != nil {
		err = d.realizeKey(m[1], KindPk)
	} else if m := rePkhEnvelope.FindStringSubmatch(bare); m != nil {
		err = d.realizeKey(m[1], KindPkh)
	} else if m := reShWpkhEnvelope.FindStringSubmatch(bare); m != nil {
		err = d.realizeKey(m[1], KindShWpkh)
	} else if m := reWpkhEnvelope.FindStringSubmatch(bare); m != nil {
		err = d.realizeKey(m[1], KindWpkh)
	} else if m := reShWshEnvelope.FindStringSubmatch(bare); m != nil {
		err = d.realizeMiniscript(m[1], KindShWshMiniscript, o)
	} else if m := reShEnvelope.FindStringSubmatch(bare); m != nil {
		err = d.realizeMiniscript(m[1], KindShMiniscript, o)
	} else if m := reWshEnvelope.FindStringSubmatch(bare); m != nil {
		err = d.realizeMiniscript(m[1], KindWshMiniscript, o)
	} else {
		return nil, ParseError{Expression: expression}
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Kind returns the envelope the descriptor matched.
func (d *Descriptor) Kind() Kind { return d.kind }

// String returns the isolated expression: checksum stripped, wildcards
// materialized.
func (d *Descriptor) String() string { return d.expression }

// Network returns the network the descriptor was realized for.
func (d *Descriptor) Network() *chaincfg.Params { return d.network }

// Payment returns the realized payment record.
func (d *Descriptor) Payment() Payment {
	return Payment{
		Address:       d.payment.Address,
		ScriptPubKey:  cloneBytes(d.payment.ScriptPubKey),
		RedeemScript:  cloneBytes(d.payment.RedeemScript),
		WitnessScript: cloneBytes(d.payment.WitnessScript),
	}
}

// Address returns the descriptor's address. pk() outputs have none.
func (d *Descriptor) Address() (string, error) {
	if d.payment.Address == "" {
		return "", ErrNoAddress
	}
	return d.payment.Address, nil
}

// ScriptPubKey returns the locking script of the realized output.
func (d *Descriptor) ScriptPubKey() []byte { return cloneBytes(d.payment.ScriptPubKey) }

// RedeemScript returns the P2SH redeem script, or nil for unwrapped forms.
func (d *Descriptor) RedeemScript() []byte { return cloneBytes(d.payment.RedeemScript) }

// WitnessScript returns the P2WSH witness script, or nil for non-wsh forms.
func (d *Descriptor) WitnessScript() []byte { return cloneBytes(d.payment.WitnessScript) }

// SatisfactionAsm returns the unlocking template for miniscript
// descriptors: signature placeholders are keyed by public key as
// sig(<hex>), preimage placeholders are carried through for the signing
// layer to resolve. Empty for non-miniscript descriptors.
func (d *Descriptor) SatisfactionAsm() string { return d.satisfaction }

// KeyMap returns the placeholder-to-pubkey mapping of a miniscript
// descriptor, in @0, @1, ... order of appearance. Nil for non-miniscript
// descriptors.
func (d *Descriptor) KeyMap() map[string]string {
	if d.keyMap == nil {
		return nil
	}
	keyMap := make(map[string]string, len(d.keyMap))
	for placeholder, pubKey := range d.keyMap {
		keyMap[placeholder] = pubKey
	}
	return keyMap
}

func (d *Descriptor) realizeAddr(addr string) error {
	d.kind = KindAddr
	decoded, err := btcutil.DecodeAddress(addr, d.network)
	if err != nil || !decoded.IsForNet(d.network) {
		return AddressError{Address: addr}
	}
	script, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return AddressError{Address: addr}
	}
	d.payment = Payment{Address: addr, ScriptPubKey: script}
	return nil
}

func (d *Descriptor) realizeKey(keyExpr string, kind Kind) error {
	d.kind = kind
	segwit := kind == KindWpkh || kind == KindShWpkh
	pubKey, err := KeyExpressionToPubKey(keyExpr, d.network, segwit)
	if err != nil {
		return err
	}

	switch kind {
	case KindPk:
		script, err := txscript.NewScriptBuilder().
			AddData(pubKey).AddOp(txscript.OP_CHECKSIG).Script()
		if err != nil {
			return err
		}
		d.payment = Payment{ScriptPubKey: script}
		return nil

	case KindPkh:
		addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pubKey), d.network)
		if err != nil {
			return err
		}
		return d.payToAddr(addr, nil, nil)

	case KindWpkh:
		addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pubKey), d.network)
		if err != nil {
			return err
		}
		return d.payToAddr(addr, nil, nil)

	case KindShWpkh:
		witnessAddr, err := btcutil.NewAddressWitnessPubKeyHash(
			btcutil.Hash160(pubKey), d.network,
		)
		if err != nil {
			return err
		}
		redeem, err := txscript.PayToAddrScript(witnessAddr)
		if err != nil {
			return err
		}
		shAddr, err := btcutil.NewAddressScriptHash(redeem, d.network)
		if err != nil {
			return err
		}
		return d.payToAddr(shAddr, redeem, nil)
	}
	return ParseError{Expression: d.expression}
}

func (d *Descriptor) realizeMiniscript(ms string, kind Kind, o *options) error {
	d.kind = kind
	segwit := kind != KindShMiniscript

	if kind == KindShMiniscript && !o.allowMiniscriptInP2SH {
		allowed := false
		for _, head := range p2shMiniscriptHeads {
			if strings.HasPrefix(ms, head) {
				allowed = true
				break
			}
		}
		if !allowed {
			return P2SHMiniscriptError{Miniscript: ms}
		}
	}

	sol, err := solveMiniscript(ms, segwit, o.unknowns, d.network, o.compiler)
	if err != nil {
		return err
	}

	if segwit {
		if len(sol.script) > maxP2WSHWitnessSize {
			return ScriptTooLargeError{
				Kind: "P2WSH", Size: len(sol.script), Limit: maxP2WSHWitnessSize,
			}
		}
	} else if len(sol.script) > maxP2SHRedeemSize {
		return ScriptTooLargeError{
			Kind: "P2SH", Size: len(sol.script), Limit: maxP2SHRedeemSize,
		}
	}
	opCount, err := scriptasm.CountNonPushOps(sol.script)
	if err != nil {
		return err
	}
	if opCount > scriptasm.MaxNonPushOps {
		return TooManyOpsError{Count: opCount, Limit: scriptasm.MaxNonPushOps}
	}

	d.satisfaction = sol.satisfaction
	d.keyMap = sol.keyMap

	switch kind {
	case KindShMiniscript:
		shAddr, err := btcutil.NewAddressScriptHash(sol.script, d.network)
		if err != nil {
			return err
		}
		return d.payToAddr(shAddr, sol.script, nil)

	case KindWshMiniscript:
		witnessProgram := sha256.Sum256(sol.script)
		addr, err := btcutil.NewAddressWitnessScriptHash(witnessProgram[:], d.network)
		if err != nil {
			return err
		}
		return d.payToAddr(addr, nil, sol.script)

	case KindShWshMiniscript:
		witnessProgram := sha256.Sum256(sol.script)
		wshAddr, err := btcutil.NewAddressWitnessScriptHash(witnessProgram[:], d.network)
		if err != nil {
			return err
		}
		redeem, err := txscript.PayToAddrScript(wshAddr)
		if err != nil {
			return err
		}
		shAddr, err := btcutil.NewAddressScriptHash(redeem, d.network)
		if err != nil {
			return err
		}
		return d.payToAddr(shAddr, redeem, sol.script)
	}
	return ParseError{Expression: d.expression}
}

// payToAddr finalizes the payment record for an addressable envelope.
func (d *Descriptor) payToAddr(addr btcutil.Address, redeem, witness []byte) error {
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return err
	}
	d.payment = Payment{
		Address:       addr.String(),
		ScriptPubKey:  script,
		RedeemScript:  redeem,
		WitnessScript: witness,
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
