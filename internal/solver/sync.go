package solver

import "sync/atomic"

// idleFlag pads an atomic.Bool out to its own cache line, matching the
// teacher's stopFlag usage in internal/engine.Engine and, more
// directly, the CachePadded<AtomicBool> vector this type is grounded
// on.
type idleFlag struct {
	v atomic.Bool
	_ [56]byte
}

// WorkerSync tracks, per worker, whether it is currently idle (found
// the shared queue empty and has nothing private left to expand). A
// worker only terminates once every worker is simultaneously idle: the
// double-check in nextItem (mark idle, poll again, then check
// AllIdle) avoids the lost-wakeup race where a worker gives up just as
// another pushes fresh work for it.
type WorkerSync struct {
	flags []idleFlag
}

// NewWorkerSync returns synchronisation state for n workers, all
// initially marked busy.
func NewWorkerSync(n int) *WorkerSync {
	return &WorkerSync{flags: make([]idleFlag, n)}
}

// SetIdle records worker id's idle/busy state.
func (s *WorkerSync) SetIdle(id int, idle bool) {
	s.flags[id].v.Store(idle)
}

// AllIdle reports whether every worker is currently marked idle.
func (s *WorkerSync) AllIdle() bool {
	for i := range s.flags {
		if !s.flags[i].v.Load() {
			return false
		}
	}
	return true
}
