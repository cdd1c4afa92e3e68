package accum

import "testing"

func TestPositionAccumulatorUpdateAndCount(t *testing.T) {
	var p PositionAccumulator
	p.Update([NumRanks]int{4, 3, 2, 1, 0})
	p.Update([NumRanks]int{0, 1, 2, 3, 4})

	if got := p.CountTerminal(); got != 2 {
		t.Fatalf("CountTerminal() = %d, want 2", got)
	}
	if p[4][0] != 1 || p[0][0] != 1 {
		t.Fatalf("leader counts wrong: %v", p)
	}
}

func TestPositionAccumulatorAdd(t *testing.T) {
	var a, b PositionAccumulator
	a.Update([NumRanks]int{0, 1, 2, 3, 4})
	b.Update([NumRanks]int{0, 1, 2, 3, 4})
	sum := a.Add(b)
	if sum.CountTerminal() != 2 {
		t.Fatalf("CountTerminal() = %d, want 2", sum.CountTerminal())
	}
	if sum[0][0] != 2 {
		t.Fatalf("sum[0][0] = %d, want 2", sum[0][0])
	}
}

func TestAtomicPositionAccumulatorRoundTrip(t *testing.T) {
	var plain PositionAccumulator
	plain.Update([NumRanks]int{2, 0, 1, 3, 4})

	atomicAcc := NewAtomicPositionAccumulator()
	atomicAcc.LoadFrom(plain)
	snap := atomicAcc.Snapshot()
	if snap != plain {
		t.Fatalf("round trip mismatch: got %v, want %v", snap, plain)
	}
}

func TestAtomicPositionAccumulatorUpdateMatchesPlain(t *testing.T) {
	orders := [][NumRanks]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{1, 0, 3, 2, 4},
	}
	var plain PositionAccumulator
	atomicAcc := NewAtomicPositionAccumulator()
	for _, o := range orders {
		plain.Update(o)
		atomicAcc.Update(o)
	}
	if atomicAcc.Snapshot() != plain {
		t.Fatalf("atomic accumulator diverged from plain: %v vs %v", atomicAcc.Snapshot(), plain)
	}
}

func TestAtomicPositionAccumulatorBatchAdd(t *testing.T) {
	var plain PositionAccumulator
	plain.Update([NumRanks]int{0, 1, 2, 3, 4})
	shared := NewAtomicPositionAccumulator()
	shared.Add(plain)
	shared.Add(plain)
	if got := shared.CountTerminal(); got != 2 {
		t.Fatalf("CountTerminal() = %d, want 2", got)
	}
}

func TestTileAccumulatorMerge(t *testing.T) {
	var a, b TileAccumulator
	a.Add(3, 5)
	b.Add(3, 7)
	b.Add(10, 2)
	sum := a.Merge(b)
	if sum[3] != 12 || sum[10] != 2 {
		t.Fatalf("merge mismatch: %v", sum)
	}
}

func TestAtomicTileAccumulatorMergeRoundTrip(t *testing.T) {
	var plain TileAccumulator
	plain.Add(0, 3)
	plain.Add(15, 9)

	shared := NewAtomicTileAccumulator()
	shared.Merge(plain)
	shared.Add(0, 1)

	snap := shared.Snapshot()
	if snap[0] != 4 || snap[15] != 9 {
		t.Fatalf("unexpected snapshot: %v", snap)
	}
}
