// Package odds converts raw accumulator counts into probabilities and
// renders them the way a human operator reads a solve's output.
package odds

import (
	"fmt"
	"strings"

	"github.com/GenerallyIntelligent/stockcamel/internal/accum"
)

// CamelOdds is the probability, for every (camel, rank) pair, that the
// camel finishes in that rank. Row x = camel x, column y = rank y.
type CamelOdds [accum.NumRanks][accum.NumRanks]float64

// TileOdds is, for every tile, the number of rolls that land there during
// the current round, averaged over every way the round can finish (a
// tile landed on twice in one round counts twice).
type TileOdds [accum.NumTiles]float64

// NewCamelOdds divides every cell of acc by numTerminal. numTerminal is
// normally acc.CountTerminal() itself; it is taken as a separate
// parameter so callers that already computed the round-terminal leaf
// count (the scheduler computes it once and shares it with NewTileOdds)
// don't redundantly re-derive it from the accumulator.
func NewCamelOdds(acc accum.PositionAccumulator, numTerminal uint64) CamelOdds {
	var out CamelOdds
	for x := range acc {
		for y := range acc[x] {
			out[x][y] = float64(acc[x][y]) / float64(numTerminal)
		}
	}
	return out
}

// NewTileOdds divides every cell of acc by numTerminal.
func NewTileOdds(acc accum.TileAccumulator, numTerminal uint64) TileOdds {
	var out TileOdds
	for i, v := range acc {
		out[i] = float64(v) / float64(numTerminal)
	}
	return out
}

// String renders a pipe-delimited table, one row per camel, one column
// per rank (1-indexed for the reader).
func (o CamelOdds) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-5s", "Camel")
	for i := 1; i <= accum.NumRanks; i++ {
		fmt.Fprintf(&sb, " | Pos %d", i)
	}
	sb.WriteByte('\n')
	for camel, row := range o {
		fmt.Fprintf(&sb, "%-5d", camel+1)
		for _, p := range row {
			fmt.Fprintf(&sb, " | %.3f", p)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// String renders a pipe-delimited table of per-tile landing odds.
func (o TileOdds) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-5s", "Tile")
	for i := 1; i <= accum.NumTiles; i++ {
		fmt.Fprintf(&sb, " | %-4d", i)
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "%-5s", "Odds")
	for _, p := range o {
		fmt.Fprintf(&sb, " | %.2f", p)
	}
	sb.WriteByte('\n')
	return sb.String()
}
