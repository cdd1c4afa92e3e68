// Package accum holds the two leaf accumulators the enumerator folds
// terminal boards into: a 5x5 camel-by-rank matrix and a 16-cell
// tile-landing vector, each with a plain and a lock-free atomic
// variant.
package accum

import "sync/atomic"

// NumRanks is the number of finishing ranks (equal to camel.NumCamels,
// restated here so this package has no import-cycle dependency on
// camel for a single constant).
const NumRanks = 5

// PositionAccumulator counts, for every (camel, rank) pair, how many
// terminal leaves ended with that camel finishing in that rank.
// Row x = camel x, column y = rank y (0 = leader).
type PositionAccumulator [NumRanks][NumRanks]uint64

// Update records one terminal leaf's ranking. order[rank] is the camel
// ID occupying that rank, matching camel.Board.CamelOrder's convention.
func (p *PositionAccumulator) Update(order [NumRanks]int) {
	for rank, camelID := range order {
		p[camelID][rank]++
	}
}

// Add folds rhs into p elementwise, returning the sum.
func (p PositionAccumulator) Add(rhs PositionAccumulator) PositionAccumulator {
	var out PositionAccumulator
	for x := range p {
		for y := range p[x] {
			out[x][y] = p[x][y] + rhs[x][y]
		}
	}
	return out
}

// CountTerminal returns the total number of leaves folded into p. Every
// row sums to the same total (each leaf assigns exactly one rank to
// every camel), so row 0 alone carries the count.
func (p PositionAccumulator) CountTerminal() uint64 {
	var total uint64
	for _, count := range p[0] {
		total += count
	}
	return total
}

// cacheLinePad is sized so each counter in an atomic accumulator lands
// on its own cache line, avoiding false sharing between workers that
// update neighbouring cells concurrently.
type cacheLinePad struct {
	_ [56]byte // 64-byte cache line minus the 8-byte atomic.Int64 it pads
}

type paddedCounter struct {
	v atomic.Int64
	_ cacheLinePad
}

// AtomicPositionAccumulator is PositionAccumulator's concurrent-update
// counterpart: every cell is an independently cache-line-padded
// atomic.Int64, updated with Relaxed-equivalent (Go has no weaker mode)
// adds from arbitrarily many goroutines.
type AtomicPositionAccumulator [NumRanks][NumRanks]paddedCounter

// NewAtomicPositionAccumulator returns a zeroed accumulator ready for
// concurrent use.
func NewAtomicPositionAccumulator() *AtomicPositionAccumulator {
	return &AtomicPositionAccumulator{}
}

// Update is PositionAccumulator.Update's concurrency-safe counterpart.
func (p *AtomicPositionAccumulator) Update(order [NumRanks]int) {
	for rank, camelID := range order {
		p[camelID][rank].v.Add(1)
	}
}

// CountTerminal mirrors PositionAccumulator.CountTerminal.
func (p *AtomicPositionAccumulator) CountTerminal() uint64 {
	var total uint64
	for _, c := range p[0] {
		total += uint64(c.v.Load())
	}
	return total
}

// Snapshot is the infallible atomic-to-plain conversion: a point-in-time
// read of every cell. It does not observe a single consistent instant
// across cells if other goroutines are still updating concurrently,
// matching the source's own Relaxed-ordering snapshot semantics.
func (p *AtomicPositionAccumulator) Snapshot() PositionAccumulator {
	var out PositionAccumulator
	for x := range p {
		for y := range p[x] {
			out[x][y] = uint64(p[x][y].v.Load())
		}
	}
	return out
}

// LoadFrom is the infallible plain-to-atomic conversion, overwriting
// every cell in p with the corresponding value from snap.
func (p *AtomicPositionAccumulator) LoadFrom(snap PositionAccumulator) {
	for x := range snap {
		for y := range snap[x] {
			p[x][y].v.Store(int64(snap[x][y]))
		}
	}
}

// Add folds a plain accumulator into p in place, used by workers
// merging their private per-leaf totals into the shared accumulator in
// one batched call instead of one atomic add per leaf.
func (p *AtomicPositionAccumulator) Add(rhs PositionAccumulator) {
	for x := range rhs {
		for y := range rhs[x] {
			if rhs[x][y] != 0 {
				p[x][y].v.Add(int64(rhs[x][y]))
			}
		}
	}
}
