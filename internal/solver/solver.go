// Package solver implements the parallel enumerator that walks every
// reachable board up to a fixed depth and folds each leaf into the
// three shared accumulators.
package solver

import (
	"fmt"

	"github.com/GenerallyIntelligent/stockcamel/internal/accum"
	"github.com/GenerallyIntelligent/stockcamel/internal/camel"
	"github.com/GenerallyIntelligent/stockcamel/internal/odds"
	"github.com/GenerallyIntelligent/stockcamel/internal/transposition"
	"golang.org/x/sync/errgroup"
)

// QueueOverflowError reports that the shared work queue rejected a
// push. The queue is sized generously relative to worker count (see
// queueCapacity); hitting this means the caller undersized it or ran
// with pathologically many workers, either way a programmer error
// rather than a condition a caller can recover from mid-solve.
type QueueOverflowError struct {
	WorkerID int
}

func (e *QueueOverflowError) Error() string {
	return fmt.Sprintf("solver: worker %d overflowed the shared queue", e.WorkerID)
}

// RoundEntry is what the round-and-game transposition table memoizes
// for a (board, depth) key: the three partial results a round-regime
// sub-tree contributes.
type RoundEntry struct {
	Game  accum.PositionAccumulator
	Round accum.PositionAccumulator
	Tile  accum.TileAccumulator
}

// Tables bundles the two transposition tables the scheduler consults.
// Either may be nil, in which case that memoization layer is skipped
// entirely (the "off" setting spec.md §9 calls out as the safe
// default when a table isn't worth its memory).
type Tables struct {
	Round transposition.Table[RoundEntry]
	Game  transposition.Table[accum.PositionAccumulator]
}

// queueCapacity mirrors the source's own sizing: at least twice the
// worker count, and never smaller than the number of boards five
// simultaneous round-step expansions could push (15+12+9+6+3+1, the
// largest single fan-out burst the enumerator produces).
func queueCapacity(numWorkers int) uint64 {
	min := 15 + 12 + 9 + 6 + 3 + 1
	c := numWorkers * 2
	if c < min {
		c = min
	}
	// Ring buffer capacity must be a power of two.
	n := 1
	for n < c {
		n <<= 1
	}
	return uint64(n)
}

// stackMinimum is the shared-queue occupancy threshold below which an
// idle-prone worker pushes newly-generated work back onto the shared
// queue for others to steal, rather than continuing to expand it
// privately. A single slot is enough to keep every worker fed without
// flooding the queue with work nobody will claim before another worker
// goes idle.
const stackMinimum = 1

// SolveProbabilities enumerates every board reachable from root within
// depth plies, folding each leaf into position and tile accumulators,
// and returns the resulting odds. If tables is nil, no memoization is
// performed. numWorkers goroutines share the work via a bounded
// lock-free queue; any worker whose push overflows the queue causes
// the whole solve to fail with a *QueueOverflowError.
func SolveProbabilities(root camel.Board, depth, numWorkers int, tables *Tables) (gameOdds, roundOdds odds.CamelOdds, tileOdds odds.TileOdds, roundTerminalLeaves uint64, err error) {
	if tables == nil {
		tables = &Tables{}
	}

	roundPositions := accum.NewAtomicPositionAccumulator()
	gamePositions := accum.NewAtomicPositionAccumulator()
	tileAcc := accum.NewAtomicTileAccumulator()

	queue := newSharedQueue(queueCapacity(numWorkers))
	if !queue.Push(workItem{Board: root, Depth: depth}) {
		return odds.CamelOdds{}, odds.CamelOdds{}, odds.TileOdds{}, 0, &QueueOverflowError{WorkerID: -1}
	}

	transitionDepth := depth - root.NumUnrolled()

	sync := NewWorkerSync(numWorkers)

	g := new(errgroup.Group)
	for id := 0; id < numWorkers; id++ {
		id := id
		g.Go(func() error {
			return runWorker(id, sync, queue, transitionDepth, tables, gamePositions, roundPositions, tileAcc)
		})
	}
	if err := g.Wait(); err != nil {
		return odds.CamelOdds{}, odds.CamelOdds{}, odds.TileOdds{}, 0, err
	}

	roundSnapshot := roundPositions.Snapshot()
	gameSnapshot := gamePositions.Snapshot()
	tileSnapshot := tileAcc.Snapshot()

	roundTerminal := roundSnapshot.CountTerminal()
	roundOdds = odds.NewCamelOdds(roundSnapshot, roundTerminal)
	gameOdds = odds.NewCamelOdds(gameSnapshot, gameSnapshot.CountTerminal())
	tileOdds = odds.NewTileOdds(tileSnapshot, roundTerminal)
	return gameOdds, roundOdds, tileOdds, roundTerminal, nil
}

// runWorker repeatedly pulls work from the shared queue (falling back
// to the idle-flag handshake in nextItem once it finds the queue
// empty) until every worker agrees there is nothing left, folding
// results into private accumulators that are merged into the shared
// ones exactly once, on exit.
func runWorker(
	id int,
	sync *WorkerSync,
	queue *sharedQueue,
	transitionDepth int,
	tables *Tables,
	gamePositions, roundPositions *accum.AtomicPositionAccumulator,
	tileAcc *accum.AtomicTileAccumulator,
) error {
	// A worker leaving early on overflow must not block the others'
	// all-idle exit check.
	defer sync.SetIdle(id, true)

	var privateGame, privateRound accum.PositionAccumulator
	var privateTile accum.TileAccumulator

	for {
		item, ok := nextItem(id, sync, queue)
		if !ok {
			break
		}

		board, depth := item.Board, item.Depth
		queueLen := queue.Len()

		switch {
		case queueLen < stackMinimum && depth > transitionDepth:
			gameAcc, roundAcc, tileDelta, next := calculateRoundStep(board, depth)
			privateGame = privateGame.Add(gameAcc)
			privateRound = privateRound.Add(roundAcc)
			privateTile = privateTile.Merge(tileDelta)
			for _, nb := range next {
				if !queue.Push(workItem{Board: nb, Depth: depth - 1}) {
					return &QueueOverflowError{WorkerID: id}
				}
			}

		case queueLen < stackMinimum && depth <= transitionDepth:
			gameAcc, next := calculateGameStep(board, depth)
			privateGame = privateGame.Add(gameAcc)
			// The round is decided the instant a path first crosses the
			// transition; every descendant of this node is still
			// depth<=transitionDepth and would re-match this same case
			// once dequeued, so only the crossing node itself (depth
			// equal to, not merely at-or-below, transitionDepth) may
			// contribute to the round accumulator.
			if depth == transitionDepth {
				var ranked accum.PositionAccumulator
				ranked.Update(board.CamelOrder())
				privateRound = privateRound.Add(ranked)
			}
			for _, nb := range next {
				if !queue.Push(workItem{Board: nb, Depth: depth - 1}) {
					return &QueueOverflowError{WorkerID: id}
				}
			}

		case queueLen >= stackMinimum && depth > transitionDepth:
			gameAcc, roundAcc, tileDelta := calculateRoundAndGameRecursive(board, depth, transitionDepth, tables)
			privateGame = privateGame.Add(gameAcc)
			privateRound = privateRound.Add(roundAcc)
			privateTile = privateTile.Merge(tileDelta)

		default: // queueLen >= stackMinimum && depth <= transitionDepth
			gameAcc := calculateGameRecursive(board, depth, tables.Game)
			privateGame = privateGame.Add(gameAcc)
			// Same rule as the step-wise case: the crossing node alone
			// contributes its ranking to the round accumulator.
			if depth == transitionDepth {
				var ranked accum.PositionAccumulator
				ranked.Update(board.CamelOrder())
				privateRound = privateRound.Add(ranked)
			}
		}
	}

	gamePositions.Add(privateGame)
	roundPositions.Add(privateRound)
	tileAcc.Merge(privateTile)
	return nil
}

// nextItem pulls from the shared queue, marking this worker idle (and
// re-checking) if it finds the queue momentarily empty, and reports
// false only once every worker agrees the whole enumeration is
// exhausted.
func nextItem(id int, sync *WorkerSync, queue *sharedQueue) (workItem, bool) {
	if item, ok := queue.Pop(); ok {
		return item, true
	}
	sync.SetIdle(id, true)
	for {
		if item, ok := queue.Pop(); ok {
			sync.SetIdle(id, false)
			return item, true
		}
		if sync.AllIdle() {
			return workItem{}, false
		}
	}
}

// calculateRoundStep expands board one ply. At depth zero, or once
// board is terminal, its current ranking is the leaf value for both
// round and game accumulators. Otherwise every potential roll is
// applied, each successor's target-tile contribution is weighted by
// the number of ways its remaining round can finish (so a single
// enumerated successor stands in for the whole still-to-roll
// sub-tree), and the successors are returned for the caller to queue
// or recurse into.
func calculateRoundStep(board camel.Board, depth int) (game, round accum.PositionAccumulator, tile accum.TileAccumulator, next []camel.Board) {
	if depth == 0 || board.IsTerminal() {
		var leaf accum.PositionAccumulator
		leaf.Update(board.CamelOrder())
		return leaf, leaf, accum.TileAccumulator{}, nil
	}

	moves := board.PotentialMoves()
	next = make([]camel.Board, 0, len(moves))
	for _, roll := range moves {
		successor, target := board.UpdateWithTarget(roll)
		tile.Add(target, successor.RoundTerminalStates())
		next = append(next, successor)
	}
	return accum.PositionAccumulator{}, accum.PositionAccumulator{}, tile, next
}

// calculateGameStep is calculateRoundStep's game-regime counterpart:
// once the round-to-game transition depth has been crossed, tile
// landings are no longer tracked (the game odds only care about final
// rank), so successors are generated with the simpler Update.
func calculateGameStep(board camel.Board, depth int) (game accum.PositionAccumulator, next []camel.Board) {
	if depth == 0 || board.IsTerminal() {
		var leaf accum.PositionAccumulator
		leaf.Update(board.CamelOrder())
		return leaf, nil
	}

	moves := board.PotentialMoves()
	next = make([]camel.Board, 0, len(moves))
	for _, roll := range moves {
		next = append(next, board.Update(roll))
	}
	return accum.PositionAccumulator{}, next
}

// calculateGameRecursive fully expands board's game-regime sub-tree in
// process, consulting and then populating the game transposition
// table (if any).
func calculateGameRecursive(board camel.Board, depth int, table transposition.Table[accum.PositionAccumulator]) accum.PositionAccumulator {
	if table != nil {
		if v, ok := table.Check(board, depth); ok {
			return v
		}
	}

	acc, next := calculateGameStep(board, depth)
	for _, nb := range next {
		acc = acc.Add(calculateGameRecursive(nb, depth-1, table))
	}

	if table != nil {
		table.Update(board, depth, acc)
	}
	return acc
}

// calculateRoundAndGameRecursive is calculateGameRecursive's
// round-and-game counterpart: at or below the transition depth it hands
// the game sub-tree to calculateGameRecursive and records the board's
// ranking as its round outcome, and above it expands one round step and
// recurses, caching the combined result under the round table once
// the whole sub-tree is known.
func calculateRoundAndGameRecursive(board camel.Board, depth, transitionDepth int, tables *Tables) (game, round accum.PositionAccumulator, tile accum.TileAccumulator) {
	if tables.Round != nil {
		if v, ok := tables.Round.Check(board, depth); ok {
			return v.Game, v.Round, v.Tile
		}
	}

	if depth <= transitionDepth {
		game = calculateGameRecursive(board, depth, tables.Game)
		round.Update(board.CamelOrder())
		return game, round, accum.TileAccumulator{}
	}

	var next []camel.Board
	game, round, tile, next = calculateRoundStep(board, depth)
	for _, nb := range next {
		g, r, t := calculateRoundAndGameRecursive(nb, depth-1, transitionDepth, tables)
		game = game.Add(g)
		round = round.Add(r)
		tile = tile.Merge(t)
	}

	if tables.Round != nil {
		tables.Round.Update(board, depth, RoundEntry{Game: game, Round: round, Tile: tile})
	}
	return game, round, tile
}
