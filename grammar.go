package descriptors

import "regexp"

// Textual grammar of key expressions and descriptor envelopes. The fragments
// below are combined by concatenation and anchored at their use sites. Go's
// RE2 engine never backtracks, so the lazy envelope captures stay linear.
const (
	reHardened = `['hH]`
	reLevel    = `\d+` + reHardened + `?`

	// Path component inside an origin or a derivation path: a level
	// followed by a separator, as in "49'/".
	rePathComponent = reLevel + `/`

	// Origin path: "/49'/0'/0'" - at least one level after the slash.
	reOriginPath = `/(` + rePathComponent + `)*` + reLevel

	// Origin: "[d34db33f]" or "[d34db33f/49'/0'/0']".
	reOrigin = `\[[0-9a-fA-F]{8}(` + reOriginPath + `)?\]`

	reCompressedPubKey   = `(02|03)[0-9a-fA-F]{64}`
	reUncompressedPubKey = `04[0-9a-fA-F]{128}`
	rePubKey             = `(` + reCompressedPubKey + `|` + reUncompressedPubKey + `)`

	reWIF = `[5KLc9][1-9A-HJ-NP-Za-km-z]{50,51}`

	reXpub = `[xXtT]pub[1-9A-HJ-NP-Za-km-z]{79,108}`
	reXprv = `[xXtT]prv[1-9A-HJ-NP-Za-km-z]{79,108}`

	// A wildcard level, resolved per index by the range isolator.
	reRangeLevel = `\*` + reHardened + `?`

	// Derivation path after an extended key: "/0/1", "/0/*", "/0h/2'".
	rePath = `/(` + rePathComponent + `)*(` + reRangeLevel + `|` + reLevel + `)`

	reXpubKey = reXpub + `(` + rePath + `)?`
	reXprvKey = reXprv + `(` + rePath + `)?`

	reKeyExp = `(` + reOrigin + `)?(` + reXpubKey + `|` + reXprvKey + `|` + rePubKey + `|` + reWIF + `)`
)

var (
	reOriginPrefix    = regexp.MustCompile(`^` + reOrigin)
	reKeyExpAnchored  = regexp.MustCompile(`^` + reKeyExp + `$`)
	reKeyExpGlobal    = regexp.MustCompile(reKeyExp)
	rePubKeyAnchored  = regexp.MustCompile(`^` + rePubKey + `$`)
	reWIFAnchored     = regexp.MustCompile(`^` + reWIF + `$`)
	reXpubKeyAnchored = regexp.MustCompile(`^` + reXpubKey + `$`)
	reXprvKeyAnchored = regexp.MustCompile(`^` + reXprvKey + `$`)
)

// Envelope patterns, tried in dispatch order by NewDescriptor. The inner
// bodies are captured loosely; key-based envelopes re-validate the body
// against the key grammar and the reconstructed literal, miniscript bodies
// are validated by the compiler.
var (
	reAddrEnvelope   = regexp.MustCompile(`^addr\((.*?)\)$`)
	rePkEnvelope     = regexp.MustCompile(`^pk\((.*?)\)$`)
	rePkhEnvelope    = regexp.MustCompile(`^pkh\((.*?)\)$`)
	reShWpkhEnvelope = regexp.MustCompile(`^sh\(wpkh\((.*?)\)\)$`)
	reWpkhEnvelope   = regexp.MustCompile(`^wpkh\((.*?)\)$`)
	reShWshEnvelope  = regexp.MustCompile(`^sh\(wsh\((.*?)\)\)$`)
	reShEnvelope     = regexp.MustCompile(`^sh\((.*?)\)$`)
	reWshEnvelope    = regexp.MustCompile(`^wsh\((.*?)\)$`)
)
