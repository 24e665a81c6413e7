package descriptors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const rangedExpr = "wpkh(tprv8ZgxMBicQKsPdAQ2QZeTReB2hH2aKXBWGqgnrW1aYbutbC7YfUtPPJm1Nppb6eXy5hnLRrRqwCctBecfZV8HLNsLeivVhKT1BYFBiRbhUES/84'/1'/0'/0/*)"

func TestIsolate(t *testing.T) {
	t.Run("strips valid checksum", func(t *testing.T) {
		bare, err := isolate(rangedExpr+"#pm06dltl", 3, true, false)
		require.NoError(t, err)
		require.NotContains(t, bare, "#")
		require.Contains(t, bare, "/0/3")
	})

	t.Run("rejects invalid checksum", func(t *testing.T) {
		_, err := isolate(rangedExpr+"#pm06dltm", 3, true, false)
		var mismatch ChecksumMismatchError
		require.ErrorAs(t, err, &mismatch)
	})

	t.Run("requires checksum when asked", func(t *testing.T) {
		_, err := isolate(rangedExpr, 3, true, true)
		var missing MissingChecksumError
		require.ErrorAs(t, err, &missing)
	})

	t.Run("bare expressions pass through", func(t *testing.T) {
		expr := "pkh(030003429cd5d23b1a229ec88dba6f2b69fb539fe26cd80229267aa0c992dc26b2)"
		bare, err := isolate(expr, 0, false, false)
		require.NoError(t, err)
		require.Equal(t, expr, bare)
	})

	t.Run("wildcards substitute in lockstep", func(t *testing.T) {
		bare, err := isolate("wsh(multi(2,a/*,b/*))", 7, true, false)
		require.NoError(t, err)
		require.Equal(t, "wsh(multi(2,a/7,b/7))", bare)
	})

	t.Run("ranged without index", func(t *testing.T) {
		_, err := isolate(rangedExpr, 0, false, false)
		var invalid InvalidIndexError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("ranged with negative index", func(t *testing.T) {
		_, err := isolate(rangedExpr, -4, true, false)
		var invalid InvalidIndexError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, -4, invalid.Index)
	})
}
