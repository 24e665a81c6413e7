package descriptors

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"

	"github.com/arkade-os/go-descriptors/internal/scriptasm"
	"github.com/arkade-os/go-descriptors/miniscript"
)

// solution is the realized form of a miniscript fragment: the serialized
// locking script plus the satisfaction assembly template, with the key
// placeholder map that ties @i tokens back to public keys.
type solution struct {
	script       []byte
	satisfaction string
	keyMap       map[string]string
	placeholders []string
}

// solveMiniscript realizes a miniscript fragment whose keys are still key
// expressions. Keys are swapped for opaque @i placeholders before the
// fragment reaches the compiler, so the compiled template never depends on
// concrete keys and the same fragment compiles identically across range
// indexes. The placeholders are substituted back into both the locking
// assembly and the chosen satisfaction.
func solveMiniscript(
	ms string, segwit bool, unknowns []string,
	network *chaincfg.Params, compiler miniscript.Compiler,
) (*solution, error) {
	if compiler == nil {
		return nil, ErrNoCompiler
	}

	sol := &solution{keyMap: make(map[string]string)}
	var resolveErr error
	next := 0
	bare := reKeyExpGlobal.ReplaceAllStringFunc(ms, func(keyExpr string) string {
		if resolveErr != nil {
			return keyExpr
		}
		pubKey, err := KeyExpressionToPubKey(keyExpr, network, segwit)
		if err != nil {
			resolveErr = err
			return keyExpr
		}
		placeholder := "@" + strconv.Itoa(next)
		next++
		sol.placeholders = append(sol.placeholders, placeholder)
		sol.keyMap[placeholder] = hex.EncodeToString(pubKey)
		return placeholder
	})
	if resolveErr != nil {
		return nil, resolveErr
	}

	seen := make(map[string]struct{}, len(sol.placeholders))
	for _, placeholder := range sol.placeholders {
		pubKey := sol.keyMap[placeholder]
		if _, ok := seen[pubKey]; ok {
			return nil, DuplicateKeyError{PubKey: pubKey}
		}
		seen[pubKey] = struct{}{}
	}

	compiled, err := compiler.Compile(bare)
	if err != nil {
		return nil, fmt.Errorf("compile miniscript %q: %w", ms, err)
	}
	if !compiled.IsSane {
		return nil, UnsaneMiniscriptError{Miniscript: ms}
	}

	asm := compiled.Asm
	for _, placeholder := range sol.placeholders {
		pubKey := sol.keyMap[placeholder]
		asm = strings.ReplaceAll(asm, "<"+placeholder+">", "<"+pubKey+">")
		if strings.Contains(asm, "<HASH160("+placeholder+")>") {
			raw, _ := hex.DecodeString(pubKey)
			asm = strings.ReplaceAll(
				asm,
				"<HASH160("+placeholder+")>",
				"<"+hex.EncodeToString(btcutil.Hash160(raw))+">",
			)
		}
	}

	script, err := assembleLockingScript(asm)
	if err != nil {
		return nil, err
	}
	sol.script = script

	sats, err := compiler.Satisfy(bare, unknowns)
	if err != nil {
		return nil, fmt.Errorf("satisfy miniscript %q: %w", ms, err)
	}
	if len(sats.NonMalleableSats) == 0 {
		return nil, UnsatisfiableError{Miniscript: ms}
	}
	satisfaction := sats.NonMalleableSats[0].Asm
	for _, placeholder := range sol.placeholders {
		pubKey := sol.keyMap[placeholder]
		satisfaction = strings.ReplaceAll(satisfaction, "<"+placeholder+">", "<"+pubKey+">")
		satisfaction = strings.ReplaceAll(
			satisfaction, "<sig("+placeholder+")>", "<sig("+pubKey+")>",
		)
	}
	sol.satisfaction = satisfaction

	log.WithFields(log.Fields{
		"miniscript":   ms,
		"satisfaction": satisfaction,
	}).Trace("solved miniscript")

	return sol, nil
}

// assembleLockingScript normalizes compiled assembly and serializes it:
// whitespace collapses to single spaces, bare decimal integers become
// minimal script numbers, and the <> push markers are dropped so that every
// remaining token is an opcode name or hex data.
func assembleLockingScript(asm string) ([]byte, error) {
	tokens := strings.Fields(asm)
	for i, token := range tokens {
		if strings.HasPrefix(token, "<") {
			continue
		}
		if n, err := strconv.ParseInt(token, 10, 64); err == nil {
			tokens[i] = scriptasm.NumberToken(n)
		}
	}
	cleaned := strings.NewReplacer("<", "", ">", "").Replace(strings.Join(tokens, " "))
	return scriptasm.FromAsm(cleaned)
}
