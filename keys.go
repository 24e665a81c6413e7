package descriptors

import (
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ccoveille/go-safecast"
)

// KeyExpressionToPubKey resolves a key expression - a raw public key, a WIF
// encoded private key, or an extended key with optional origin and derivation
// path - to the serialized public key it stands for. In segwit contexts only
// 33-byte compressed keys are accepted; elsewhere uncompressed 65-byte keys
// are valid too. Range wildcards must be materialized before resolution.
func KeyExpressionToPubKey(keyExpr string, network *chaincfg.Params, segwit bool) ([]byte, error) {
	if network == nil {
		network = &chaincfg.MainNetParams
	}
	if !reKeyExpAnchored.MatchString(keyExpr) {
		return nil, KeyExpressionError{KeyExpression: keyExpr}
	}
	key := reOriginPrefix.ReplaceAllString(keyExpr, "")

	switch {
	case rePubKeyAnchored.MatchString(key):
		return resolveRawPubKey(key, segwit)
	case reWIFAnchored.MatchString(key):
		return resolveWif(key, network, segwit)
	case reXpubKeyAnchored.MatchString(key), reXprvKeyAnchored.MatchString(key):
		return resolveExtendedKey(key, network)
	default:
		return nil, KeyExpressionError{KeyExpression: keyExpr}
	}
}

func resolveRawPubKey(keyHex string, segwit bool) ([]byte, error) {
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, PubKeyError{PubKey: keyHex, Reason: "not valid hex"}
	}
	if _, err := btcec.ParsePubKey(raw); err != nil {
		return nil, PubKeyError{PubKey: keyHex, Reason: "not a point on the curve"}
	}
	if segwit && len(raw) != 33 {
		return nil, PubKeyError{PubKey: keyHex, Reason: "uncompressed keys are not allowed in segwit"}
	}
	return raw, nil
}

func resolveWif(wifStr string, network *chaincfg.Params, segwit bool) ([]byte, error) {
	wif, err := btcutil.DecodeWIF(wifStr)
	if err != nil {
		return nil, WifError{Wif: wifStr, Err: err}
	}
	if !wif.IsForNet(network) {
		return nil, WifError{Wif: wifStr, Err: errors.New("wrong network")}
	}
	if segwit && !wif.CompressPubKey {
		return nil, PubKeyError{PubKey: wifStr, Reason: "uncompressed keys are not allowed in segwit"}
	}
	return wif.SerializePubKey(), nil
}

func resolveExtendedKey(key string, network *chaincfg.Params) ([]byte, error) {
	base, path := key, ""
	if i := strings.IndexByte(key, '/'); i >= 0 {
		base, path = key[:i], key[i:]
	}
	node, err := hdkeychain.NewKeyFromString(base)
	if err != nil {
		return nil, ExtendedKeyError{Key: base, Err: err}
	}
	if !node.IsForNet(network) {
		return nil, ExtendedKeyError{Key: base, Err: errors.New("wrong network")}
	}
	if path != "" {
		steps, err := parseDerivationPath(path)
		if err != nil {
			return nil, err
		}
		for _, step := range steps {
			if node, err = node.Derive(step); err != nil {
				return nil, ExtendedKeyError{Key: base, Err: err}
			}
		}
	}
	pub, err := node.ECPubKey()
	if err != nil {
		return nil, ExtendedKeyError{Key: base, Err: err}
	}
	return pub.SerializeCompressed(), nil
}

// parseDerivationPath turns "/44h/0'/1" into child indexes for hdkeychain,
// with hardened levels offset by 2^31.
func parseDerivationPath(path string) ([]uint32, error) {
	normalized := strings.NewReplacer("H", "'", "h", "'").Replace(path)
	normalized = strings.TrimPrefix(normalized, "/")
	elements := strings.Split(normalized, "/")
	steps := make([]uint32, 0, len(elements))
	for _, element := range elements {
		digits, hardened := strings.CutSuffix(element, "'")
		n, err := strconv.ParseUint(digits, 10, 32)
		if err != nil {
			var numErr *strconv.NumError
			if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
				return nil, PathElementOverflowError{Element: element}
			}
			return nil, KeyExpressionError{KeyExpression: path}
		}
		if n >= hdkeychain.HardenedKeyStart {
			return nil, PathElementOverflowError{Element: element}
		}
		step, err := safecast.ToUint32(n)
		if err != nil {
			return nil, PathElementOverflowError{Element: element}
		}
		if hardened {
			step += hdkeychain.HardenedKeyStart
		}
		steps = append(steps, step)
	}
	return steps, nil
}
