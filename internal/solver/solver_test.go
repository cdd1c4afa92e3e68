package solver

import (
	"math"
	"testing"

	"github.com/GenerallyIntelligent/stockcamel/internal/accum"
	"github.com/GenerallyIntelligent/stockcamel/internal/camel"
	"github.com/GenerallyIntelligent/stockcamel/internal/odds"
	"github.com/GenerallyIntelligent/stockcamel/internal/transposition"
)

func freshBoard() camel.Board {
	var oasis, desert [camel.TrackSize]bool
	return camel.New([camel.NumCamels]camel.Placement{
		{Tile: 0, Position: 0}, {Tile: 0, Position: 1}, {Tile: 0, Position: 2},
		{Tile: 0, Position: 3}, {Tile: 0, Position: 4},
	}, oasis, desert)
}

func rowsSumToOne(t *testing.T, label string, o odds.CamelOdds) {
	t.Helper()
	for camelID, row := range o {
		var sum float64
		for _, p := range row {
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("%s: camel %d row sums to %f, want 1.0", label, camelID, sum)
		}
	}
}

func TestSolveProbabilitiesOddsSumToOne(t *testing.T) {
	root := freshBoard()
	gameOdds, roundOdds, tileOdds, _, err := SolveProbabilities(root, 3, 2, nil)
	if err != nil {
		t.Fatalf("SolveProbabilities returned %v", err)
	}
	rowsSumToOne(t, "game", gameOdds)
	rowsSumToOne(t, "round", roundOdds)

	var tileSum float64
	for _, p := range tileOdds {
		tileSum += p
	}
	if tileSum <= 0 {
		t.Fatalf("tile odds sum = %f, want > 0", tileSum)
	}
}

func TestSolveProbabilitiesParallelismInvariance(t *testing.T) {
	root := freshBoard()

	game1, round1, tile1, _, err := SolveProbabilities(root, 4, 1, nil)
	if err != nil {
		t.Fatalf("1 worker: %v", err)
	}
	game4, round4, tile4, _, err := SolveProbabilities(root, 4, 5, nil)
	if err != nil {
		t.Fatalf("5 workers: %v", err)
	}

	if game1 != game4 {
		t.Errorf("game odds differ between worker counts:\n1 worker:\n%s\n5 workers:\n%s", game1, game4)
	}
	if round1 != round4 {
		t.Errorf("round odds differ between worker counts:\n1 worker:\n%s\n5 workers:\n%s", round1, round4)
	}
	if tile1 != tile4 {
		t.Errorf("tile odds differ between worker counts:\n1 worker:\n%v\n5 workers:\n%v", tile1, tile4)
	}
}

func TestSolveProbabilitiesWithTranspositionMatchesWithout(t *testing.T) {
	root := freshBoard()

	gameA, roundA, tileA, _, err := SolveProbabilities(root, 4, 3, nil)
	if err != nil {
		t.Fatalf("without tables: %v", err)
	}

	tables := &Tables{
		Round: transposition.NewArrayTable[RoundEntry](4096),
		Game:  transposition.NewArrayTable[accum.PositionAccumulator](4096),
	}
	gameB, roundB, tileB, _, err := SolveProbabilities(root, 4, 3, tables)
	if err != nil {
		t.Fatalf("with tables: %v", err)
	}

	if gameA != gameB || roundA != roundB || tileA != tileB {
		t.Errorf("transposition tables changed the result:\nwithout: %v %v %v\nwith: %v %v %v",
			gameA, roundA, tileA, gameB, roundB, tileB)
	}
}

func TestSolveProbabilitiesTileOddsPositiveAtShallowAndDeepDepths(t *testing.T) {
	root := freshBoard()

	_, _, shallowTile, _, err := SolveProbabilities(root, 1, 2, nil)
	if err != nil {
		t.Fatalf("depth 1: %v", err)
	}
	_, _, deepTile, _, err := SolveProbabilities(root, 3, 2, nil)
	if err != nil {
		t.Fatalf("depth 3: %v", err)
	}

	var shallowTotal, deepTotal float64
	for i := range shallowTile {
		shallowTotal += shallowTile[i]
		deepTotal += deepTile[i]
	}
	if shallowTotal <= 0 || deepTotal <= 0 {
		t.Fatalf("expected positive tile-odds mass at both depths, got %f and %f", shallowTotal, deepTotal)
	}
}

// roundTerminalLeafCount is spec's closed-form round-count law: a round
// from a board with k unrolled camels completes in exactly k! x 3^k
// distinct roll sequences (every ordering of the k camels rolling once,
// each against 3 die faces).
func roundTerminalLeafCount(unrolled int) uint64 {
	count := uint64(1)
	for i := 1; i <= unrolled; i++ {
		count *= uint64(i) * 3
	}
	return count
}

func TestSolveProbabilitiesRoundTerminalLeafCountMatchesClosedForm(t *testing.T) {
	root := freshBoard()
	want := roundTerminalLeafCount(root.NumUnrolled())

	_, _, _, leaves, err := SolveProbabilities(root, camel.NumCamels, 3, nil)
	if err != nil {
		t.Fatalf("SolveProbabilities: %v", err)
	}
	if leaves != want {
		t.Errorf("round-terminal leaves = %d, want %d (= %d! * 3^%d)", leaves, want, root.NumUnrolled(), root.NumUnrolled())
	}
}

// TestSolveProbabilitiesRoundOddsStableOnceTransitionCrossed exercises
// depths both equal to and strictly beyond camel.NumCamels, so that the
// round genuinely finishes (unlike the depth<NumCamels tests above,
// where the round is still only partially rolled when the search bottoms
// out). Once a path crosses camel.NumCamels plies, its round ranking is
// fully decided and must not keep changing as more game-only plies are
// searched beneath it, regardless of how many workers process it or
// whether the shared queue or the recursive fallback handles the
// game-regime tail: a single worker expands a node step-wise each time
// it empties the shared queue and recursively otherwise, so nodes at the
// transition reach both paths, and the step-wise one is exactly where a
// round node could otherwise be double-counted by its own descendants.
func TestSolveProbabilitiesRoundOddsStableOnceTransitionCrossed(t *testing.T) {
	root := freshBoard()
	wantLeaves := roundTerminalLeafCount(root.NumUnrolled())

	type run struct {
		depth, workers int
	}
	runs := []run{
		{depth: camel.NumCamels, workers: 1},
		{depth: camel.NumCamels, workers: 4},
		{depth: camel.NumCamels + 2, workers: 1},
		{depth: camel.NumCamels + 2, workers: 4},
	}

	var baseline odds.CamelOdds
	for i, r := range runs {
		_, roundOdds, _, leaves, err := SolveProbabilities(root, r.depth, r.workers, nil)
		if err != nil {
			t.Fatalf("depth=%d workers=%d: %v", r.depth, r.workers, err)
		}
		if leaves != wantLeaves {
			t.Errorf("depth=%d workers=%d: round-terminal leaves = %d, want %d", r.depth, r.workers, leaves, wantLeaves)
		}
		if i == 0 {
			baseline = roundOdds
			continue
		}
		if roundOdds != baseline {
			t.Errorf("depth=%d workers=%d: round odds diverged from depth=%d workers=%d baseline:\n%s\nvs\n%s",
				r.depth, r.workers, runs[0].depth, runs[0].workers, roundOdds, baseline)
		}
	}
}

func TestSolveProbabilitiesSymmetricBoardGivesSymmetricOdds(t *testing.T) {
	var oasis, desert [camel.TrackSize]bool
	// Camels 0 and 1 share a tile; swapping their identities (and so
	// their stack positions) must swap their odds rows exactly.
	root := camel.New([camel.NumCamels]camel.Placement{
		{Tile: 5, Position: 0}, {Tile: 5, Position: 1},
		{Tile: 2, Position: 0}, {Tile: 8, Position: 0}, {Tile: 9, Position: 0},
	}, oasis, desert)
	swapped := camel.New([camel.NumCamels]camel.Placement{
		{Tile: 5, Position: 1}, {Tile: 5, Position: 0},
		{Tile: 2, Position: 0}, {Tile: 8, Position: 0}, {Tile: 9, Position: 0},
	}, oasis, desert)

	_, roundOdds, _, _, err := SolveProbabilities(root, 2, 2, nil)
	if err != nil {
		t.Fatalf("SolveProbabilities: %v", err)
	}
	_, swappedOdds, _, _, err := SolveProbabilities(swapped, 2, 2, nil)
	if err != nil {
		t.Fatalf("SolveProbabilities (swapped): %v", err)
	}
	if roundOdds[0] != swappedOdds[1] || roundOdds[1] != swappedOdds[0] {
		t.Errorf("swapping stack-mates 0 and 1 should swap their round odds rows, got %v/%v and swapped %v/%v",
			roundOdds[0], roundOdds[1], swappedOdds[0], swappedOdds[1])
	}
}
