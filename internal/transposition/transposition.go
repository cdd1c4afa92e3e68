// Package transposition provides capacity-bounded, fingerprint-keyed
// caches for memoizing a (board, depth) pair's already-computed
// sub-tree result, so the same state reached by two different roll
// sequences is only expanded once.
package transposition

import "github.com/GenerallyIntelligent/stockcamel/internal/camel"

// Table memoizes values of type V keyed by a board and the remaining
// search depth at which it was computed: the same board fingerprint at
// two different depths names two different sub-trees and must not
// collide.
type Table[V any] interface {
	Check(board camel.Board, depth int) (V, bool)
	Update(board camel.Board, depth int, value V)
}

// key mixes a board's fingerprint with the remaining depth so that the
// same board visited at different depths (different sub-tree sizes)
// never collides in a way that silently returns the wrong depth's
// result. The multiplier is the standard 64-bit golden-ratio constant
// (2^64/phi, rounded to an odd integer) used by splitmix64-style
// integer hashes to spread a narrow input (here, a small depth) across
// the full 64-bit range before xoring it into the fingerprint.
func key(board camel.Board, depth int) uint64 {
	const mix = 0x9E3779B97F4A7C15
	return board.Fingerprint() ^ (uint64(uint32(depth)) * mix)
}
