// Package scriptasm converts between script assembly text and serialized
// Bitcoin scripts on top of btcd's txscript primitives.
package scriptasm

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/txscript"
)

// MaxNonPushOps is the consensus limit on the number of non-push operations
// in a single script.
const MaxNonPushOps = 201

// FromAsm assembles whitespace-separated script assembly into a serialized
// script. Tokens are either opcode names known to txscript or hex-encoded
// push data. Data pushes are minimally encoded, so "05" assembles to OP_5
// and a 33-byte key to a direct push.
func FromAsm(asm string) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	for _, token := range strings.Fields(asm) {
		if opcode, ok := txscript.OpcodeByName[token]; ok {
			builder.AddOp(opcode)
			continue
		}
		data, err := hex.DecodeString(token)
		if err != nil {
			return nil, fmt.Errorf("unknown script token %q", token)
		}
		builder.AddData(data)
	}
	return builder.Script()
}

// CountNonPushOps returns the number of opcodes above OP_16 in the script.
func CountNonPushOps(script []byte) (int, error) {
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	count := 0
	for tokenizer.Next() {
		if tokenizer.Opcode() > txscript.OP_16 {
			count++
		}
	}
	if err := tokenizer.Err(); err != nil {
		return 0, fmt.Errorf("malformed script: %w", err)
	}
	return count, nil
}

// NumberToken encodes an integer the way script assembly represents it:
// OP_0 for zero, otherwise the minimal CScriptNum serialization in hex.
// The sign lives in the high bit of the last byte, with an extra padding
// byte when the magnitude already uses it.
func NumberToken(n int64) string {
	if n == 0 {
		return "OP_0"
	}
	negative := n < 0
	magnitude := uint64(n)
	if negative {
		magnitude = uint64(-n)
	}
	var buf []byte
	for magnitude > 0 {
		buf = append(buf, byte(magnitude&0xff))
		magnitude >>= 8
	}
	if buf[len(buf)-1]&0x80 != 0 {
		extra := byte(0x00)
		if negative {
			extra = 0x80
		}
		buf = append(buf, extra)
	} else if negative {
		buf[len(buf)-1] |= 0x80
	}
	return hex.EncodeToString(buf)
}
