// Package camel implements the immutable Camel Up board: the 16-tile
// track, the five camels and their stack order, terrain modifiers, and
// the pure update function that applies a single die roll.
package camel

import "fmt"

// NumCamels is the number of camels on the track.
const NumCamels = 5

// TrackSize is the number of playable tiles (0..TrackSize-1).
const TrackSize = 16

// FinishTile is the pseudo-tile camels occupy once they have crossed the
// finish line. Board.positions is sized TrackSize+1 to hold it.
const FinishTile = TrackSize

// MaxDie is the largest face of the three-sided die.
const MaxDie = 3

// Board is a cheaply-copyable, immutable snapshot of one game state.
// Every field is a fixed-size array, so a Board value carries no
// pointers and copying it (as Go does on assignment/return) never
// aliases another Board's state.
type Board struct {
	// positions[tile] holds the camel IDs stacked on that tile, bottom
	// (index 0) to top, left-packed: a zero entry marks "empty" and,
	// by the board's invariant, every nonzero run is contiguous from
	// index 0. Camel IDs are stored as id+1 so 0 can mean "no camel".
	positions [FinishTile + 1][NumCamels]uint8

	// rolled[c] is true once camel c has rolled in the current round.
	rolled [NumCamels]bool

	oasis  [TrackSize]bool
	desert [TrackSize]bool
}

// Placement describes one camel's starting tile and stack position
// (0 = bottom of that tile's stack).
type Placement struct {
	Tile     int
	Position int
}

// Roll is a legal move: camel c rolls die value Die (1..MaxDie).
type Roll struct {
	Camel int
	Die   int
}

// InvariantError reports a violated board invariant. Per the core's
// error model, constructing or updating a board that fails to satisfy
// its invariants is a programmer error: the caller is expected to fail
// fast rather than recover.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "camel: " + e.Msg }

// New constructs a board with all rolled-bits clear. camels[c] gives
// camel c's initial tile and stack position. It panics with an
// *InvariantError if the placement or terrain is malformed: that
// mirrors the teacher's discipline of treating corrupted game state as
// unrecoverable (see internal/engine's DebugMoveValidation checks in
// the teacher this module is derived from).
func New(camels [NumCamels]Placement, oasis, desert [TrackSize]bool) Board {
	var b Board
	b.oasis = oasis
	b.desert = desert

	for tile := 0; tile < TrackSize; tile++ {
		if oasis[tile] && desert[tile] {
			panic(&InvariantError{Msg: fmt.Sprintf("tile %d is both oasis and desert", tile)})
		}
	}

	heights := make([]int, FinishTile+1)
	seen := make([]bool, NumCamels)
	for c, p := range camels {
		if p.Tile < 0 || p.Tile > FinishTile {
			panic(&InvariantError{Msg: fmt.Sprintf("camel %d placed on invalid tile %d", c, p.Tile)})
		}
		if p.Position < 0 || p.Position >= NumCamels || b.positions[p.Tile][p.Position] != 0 {
			panic(&InvariantError{Msg: fmt.Sprintf("camel %d stack position %d on tile %d is out of range or already taken", c, p.Position, p.Tile)})
		}
		b.positions[p.Tile][p.Position] = uint8(c + 1)
		heights[p.Tile]++
		seen[c] = true
	}
	for tile, h := range heights {
		if stackHeight(b.positions[tile]) != h {
			panic(&InvariantError{Msg: fmt.Sprintf("stack positions on tile %d are not contiguous from 0", tile)})
		}
	}
	for c, ok := range seen {
		if !ok {
			panic(&InvariantError{Msg: fmt.Sprintf("camel %d was never placed", c)})
		}
	}
	return b
}

// stackHeight returns the number of camels occupying a tile's slots.
func stackHeight(slots [NumCamels]uint8) int {
	h := 0
	for _, v := range slots {
		if v == 0 {
			break
		}
		h++
	}
	return h
}

// findCamel returns the tile and stack position of camel c.
func (b Board) findCamel(c int) (tile, pos int) {
	want := uint8(c + 1)
	for t := 0; t <= FinishTile; t++ {
		for p, v := range b.positions[t] {
			if v == want {
				return t, p
			}
		}
	}
	panic(&InvariantError{Msg: fmt.Sprintf("camel %d not found on board", c)})
}

// IsTerminal reports whether any camel has crossed the finish line.
func (b Board) IsTerminal() bool {
	return stackHeight(b.positions[FinishTile]) > 0
}

// AllRolled reports whether every camel has rolled this round.
func (b Board) AllRolled() bool {
	for _, r := range b.rolled {
		if !r {
			return false
		}
	}
	return true
}

// NumUnrolled returns how many camels have not yet rolled this round.
func (b Board) NumUnrolled() int {
	n := 0
	for _, r := range b.rolled {
		if !r {
			n++
		}
	}
	return n
}

// PotentialMoves returns the Cartesian product of unrolled camels (or,
// if the round just reset, all camels) with the three die faces.
func (b Board) PotentialMoves() []Roll {
	allRolled := b.AllRolled()
	moves := make([]Roll, 0, NumCamels*MaxDie)
	for c, rolled := range b.rolled {
		if allRolled || !rolled {
			for die := 1; die <= MaxDie; die++ {
				moves = append(moves, Roll{Camel: c, Die: die})
			}
		}
	}
	return moves
}

// CamelOrder returns the current ranking: order[0] is the leading
// camel, order[4] the trailing camel. Ties are impossible once stack
// position is taken into account, since a tile's slots are densely
// ordered.
func (b Board) CamelOrder() [NumCamels]int {
	var scan [NumCamels]int
	n := 0
	for t := 0; t <= FinishTile; t++ {
		for _, v := range b.positions[t] {
			if v > 0 {
				scan[n] = int(v) - 1
				n++
			}
		}
	}
	var order [NumCamels]int
	for i := 0; i < NumCamels; i++ {
		order[i] = scan[NumCamels-1-i]
	}
	return order
}

// Update applies roll and returns the successor board. It is pure: b is
// never mutated. Calling Update on a terminal board is a programmer
// error (the enumerator never does so).
func (b Board) Update(roll Roll) Board {
	nb, _ := b.UpdateWithTarget(roll)
	return nb
}

// UpdateWithTarget is Update, additionally returning the originally
// intended target tile (before any desert back-push), which is the
// tile the landing-bet accumulator is indexed by.
func (b Board) UpdateWithTarget(roll Roll) (Board, int) {
	if b.IsTerminal() {
		panic(&InvariantError{Msg: "Update called on a terminal board"})
	}

	nb := b
	tile, pos := b.findCamel(roll.Camel)
	sourceHeight := stackHeight(b.positions[tile])
	movingHeight := sourceHeight - pos
	var moving [NumCamels]uint8
	copy(moving[:movingHeight], b.positions[tile][pos:sourceHeight])

	original := tile + roll.Die
	if original > FinishTile {
		original = FinishTile
	}
	target := original

	switch {
	case target >= TrackSize:
		// Crossing the finish line: no terrain applies.
		placeOnTop(&nb, b, tile, pos, movingHeight, moving, target)

	case b.desert[target]:
		target--
		placeUnderneath(&nb, b, tile, pos, movingHeight, moving, target)

	default:
		if b.oasis[target] {
			target++
		}
		placeOnTop(&nb, b, tile, pos, movingHeight, moving, target)
	}

	rolled := b.rolled
	rolled[roll.Camel] = true
	if allTrue(rolled) {
		rolled = [NumCamels]bool{}
	}
	nb.rolled = rolled

	return nb, original
}

// placeOnTop stacks the moving substack above whatever already
// occupies target, then clears the vacated slots at the source tile.
func placeOnTop(nb *Board, orig Board, sourceTile, sourcePos, movingHeight int, moving [NumCamels]uint8, target int) {
	destHeight := stackHeight(orig.positions[target])
	var newDest [NumCamels]uint8
	copy(newDest[:destHeight], orig.positions[target][:destHeight])
	copy(newDest[destHeight:destHeight+movingHeight], moving[:movingHeight])
	nb.positions[target] = newDest

	var newSource [NumCamels]uint8
	copy(newSource[:sourcePos], orig.positions[sourceTile][:sourcePos])
	nb.positions[sourceTile] = newSource
}

// placeUnderneath places the moving substack at the bottom of target
// and shifts whatever was already there upward. target may equal
// sourceTile (rolling a 1 onto an adjacent desert tile can push a
// stack back underneath its own stack-mates); that case is handled by
// reading the "already there" portion from below sourcePos rather than
// from target's raw stack height.
func placeUnderneath(nb *Board, orig Board, sourceTile, sourcePos, movingHeight int, moving [NumCamels]uint8, target int) {
	var preexisting [NumCamels]uint8
	var preexistingHeight int
	if target == sourceTile {
		preexistingHeight = sourcePos
		copy(preexisting[:preexistingHeight], orig.positions[sourceTile][:sourcePos])
	} else {
		preexistingHeight = stackHeight(orig.positions[target])
		copy(preexisting[:preexistingHeight], orig.positions[target][:preexistingHeight])
	}

	var newDest [NumCamels]uint8
	copy(newDest[:movingHeight], moving[:movingHeight])
	copy(newDest[movingHeight:movingHeight+preexistingHeight], preexisting[:preexistingHeight])
	nb.positions[target] = newDest

	if target != sourceTile {
		var newSource [NumCamels]uint8
		copy(newSource[:sourcePos], orig.positions[sourceTile][:sourcePos])
		nb.positions[sourceTile] = newSource
	}
}

func allTrue(b [NumCamels]bool) bool {
	for _, v := range b {
		if !v {
			return false
		}
	}
	return true
}

// RoundTerminalStates returns the number of ways a round can legally
// complete from this board's remaining-unrolled count: 3^k * k! for k
// unrolled camels (every order of the k camels, each rolling one of the
// die's 3 faces). Used to weight the landing-tile accumulator instead of
// recursively propagating 16-vectors through the round sub-tree (see
// DESIGN.md, "Round-terminal state table").
func (b Board) RoundTerminalStates() uint64 {
	switch b.NumUnrolled() {
	case 5:
		return 1 // the round just reset; one way to "complete" the roll just made
	case 4:
		return 1944
	case 3:
		return 162
	case 2:
		return 18
	case 1:
		return 3
	default:
		panic(&InvariantError{Msg: "invalid number of unrolled camels"})
	}
}
