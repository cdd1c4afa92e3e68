package transposition

import (
	"github.com/GenerallyIntelligent/stockcamel/internal/camel"
	"github.com/dgraph-io/ristretto/v2"
)

// RistrettoTable is a Table backed by ristretto's admission-policy
// cache. Where ArrayTable always keeps exactly the slots its mask
// allows, ristretto tracks access frequency and evicts the least
// valuable entries once MaxCost is reached, which tends to keep
// frequently-revisited boards (the ones memoization helps most) cached
// longer under memory pressure.
type RistrettoTable[V any] struct {
	cache *ristretto.Cache[uint64, V]
}

// NewRistrettoTable builds a table with room for roughly capacity
// entries. Counters are sized 10x capacity, following ristretto's own
// sizing guidance for NumCounters relative to expected distinct keys.
func NewRistrettoTable[V any](capacity int64) (*RistrettoTable[V], error) {
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, V]{
		NumCounters: capacity * 10,
		MaxCost:     capacity,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoTable[V]{cache: cache}, nil
}

func (t *RistrettoTable[V]) Check(board camel.Board, depth int) (V, bool) {
	return t.cache.Get(key(board, depth))
}

func (t *RistrettoTable[V]) Update(board camel.Board, depth int, value V) {
	t.cache.Set(key(board, depth), value, 1)
}

// Close releases the cache's background goroutines. Callers that build
// a RistrettoTable for a single solve should defer Close once the solve
// returns.
func (t *RistrettoTable[V]) Close() {
	t.cache.Close()
}
