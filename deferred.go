package tneo

import "fmt"

// deferredAction is one unit of ISR-context work: a closure over
// whichever primitive's ...Locked mutator and arguments, to be replayed
// against a real Kernel once DrainISRWork reaches it. It is responsible
// for acquiring and releasing the critical section itself, the same way
// every exported task-context method does.
type deferredAction func(k *Kernel)

// deferredRing is the ISR-safe deferred-action queue spec.md §4.I
// describes: a fixed-capacity FIFO that an interrupt handler can push
// onto without blocking (I-prefixed calls never take the critical
// section for longer than an append), drained by Kernel.DrainISRWork at
// simulated interrupt exit. The circular-buffer indexing (power-of-two
// capacity, mask instead of modulo) is adapted directly from
// ringBuffer in the teacher's rate limiter.
type deferredRing struct {
	s    []deferredAction
	r, w uint
}

func newDeferredRing(size int) *deferredRing {
	if size <= 0 || size&(size-1) != 0 {
		panic(fmt.Errorf("tneo: deferred ring: size must be a power of two, got %d", size))
	}
	return &deferredRing{s: make([]deferredAction, size)}
}

func (x *deferredRing) mask(v uint) uint {
	return v & (uint(len(x.s)) - 1)
}

func (x *deferredRing) len() int { return int(x.w - x.r) }
func (x *deferredRing) cap() int { return len(x.s) }

// push appends action, returning false without modifying the ring if it
// is already full (RCOverflow in every I-prefixed caller).
func (x *deferredRing) push(action deferredAction) bool {
	if x.len() == x.cap() {
		return false
	}
	x.s[x.mask(x.w)] = action
	x.w++
	return true
}

// drain removes and returns every pending action, oldest first, leaving
// the ring empty. Returns nil if the ring was already empty.
func (x *deferredRing) drain() []deferredAction {
	if x.len() == 0 {
		return nil
	}
	out := make([]deferredAction, 0, x.len())
	for x.r != x.w {
		i := x.mask(x.r)
		out = append(out, x.s[i])
		x.s[i] = nil
		x.r++
	}
	return out
}

// deferISR is the common entry point every I-prefixed method uses to
// enqueue its deferred action. It never blocks on anything but the
// critical section itself (a brief append), so it is safe to call from
// a context that must not be suspended.
func (k *Kernel) deferISR(op string, action deferredAction) (RCode, error) {
	k.cs.enter()
	ok := k.deferred.push(action)
	k.cs.leave()
	if !ok {
		return RCOverflow, wrap(op, RCOverflow)
	}
	return RCOk, nil
}

// DrainISRWork replays every action enqueued by an I-prefixed call since
// the last drain, in FIFO order - the Go realization of spec.md §4.G's
// "deferred to ISR exit": on real hardware, interrupts nest and the
// trampoline only fires once the outermost ISR returns; here, draining
// plays that role explicitly. Each replayed action makes its own
// reschedule decision as an ISR-context caller (rescheduleLocked(nil)):
// a switch happens inside the drain only while no task is current, and
// otherwise waits for the current task's next kernel call.
func (k *Kernel) DrainISRWork() {
	k.cs.enter()
	actions := k.deferred.drain()
	k.cs.leave()

	for _, action := range actions {
		action(k)
	}
}
