package tneo

import (
	"sync"
	"sync/atomic"
)

// criticalSection models spec.md §4.B's "interrupts disabled" guard: the
// single process-wide serialization primitive every kernel primitive
// runs under. On the real microcontroller target this is a CPU flag and
// a nesting counter; here, since the Kernel represents exactly one
// virtual CPU (multi-CPU scheduling is an explicit Non-goal) and real Go
// goroutines may call into the kernel concurrently, it is realized as a
// single mutex.
//
// Every public Kernel/Task/EventGroup entry point enters the section
// exactly once, at the outermost call boundary, and every function it
// calls afterwards assumes the section is already held (an "already
// locked" internal helper, conventionally suffixed Locked). This means
// depth never exceeds 1 in this implementation - there is no true
// recursive re-entry to support, by construction - but the field is kept
// (rather than collapsing to a bool) for fidelity with spec.md's nesting
// concept. Its only reader is held, which Kernel.fatal uses for
// diagnostics; rescheduleLocked does not consult it.
type criticalSection struct {
	mu    sync.Mutex
	depth atomic.Int32
}

// enter acquires the section, blocking until available. Pair with leave.
func (c *criticalSection) enter() {
	c.mu.Lock()
	c.depth.Add(1)
}

// leave releases the section. Must be paired with a prior enter on the
// same logical call.
func (c *criticalSection) leave() {
	c.depth.Add(-1)
	c.mu.Unlock()
}

// held reports whether the section's nesting depth is currently above
// zero. depth is atomic specifically so held() can be called race-free
// from a goroutine that does not (and, per Kernel.fatal's contract,
// should not) hold mu itself - a diagnostic read, not a lock attempt.
func (c *criticalSection) held() bool {
	return c.depth.Load() > 0
}
