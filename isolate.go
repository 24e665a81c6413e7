package descriptors

import (
	"strconv"
	"strings"
)

// isolate strips and verifies the checksum of a descriptor expression and
// materializes range wildcards. Every * in the expression is replaced by the
// same index, so multi-key range descriptors derive in lockstep.
func isolate(expression string, index int, hasIndex, checksumRequired bool) (string, error) {
	bare := expression
	if i := strings.LastIndexByte(bare, '#'); i >= 0 {
		if err := ValidateChecksum(bare); err != nil {
			return "", err
		}
		bare = bare[:i]
	} else if checksumRequired {
		return "", MissingChecksumError{Expression: expression}
	}

	if strings.Contains(bare, "*") {
		if !hasIndex || index < 0 {
			return "", InvalidIndexError{Index: index}
		}
		bare = strings.ReplaceAll(bare, "*", strconv.Itoa(index))
	}
	return bare, nil
}
