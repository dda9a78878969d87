package tneo

// timerWheel is spec.md §4.D: the kernel's single timeout list. Every
// task parked with a finite timeout (Task.ticksRemaining != TicksInfinite)
// is linked here via Task.timerNode; Kernel.Tick walks the whole list
// once per tick, decrementing each entry and collecting the ones that
// have just reached zero.
//
// original_source buckets timers into a wheel of slots for O(1) average
// insertion; this package keeps the simpler single-list design spec.md
// §4.D describes directly (a flat list, not a literal multi-slot wheel),
// since the spec's own invariant 2 is phrased against "the" timer list.
type timerWheel struct {
	head listNode[Task]
}

func newTimerWheel() *timerWheel {
	w := &timerWheel{}
	initListHead(&w.head)
	return w
}

// add links t into the timer list. t.ticksRemaining must already be set.
func (w *timerWheel) add(t *Task) {
	w.head.insertTail(&t.timerNode)
}

// remove unlinks t from the timer list, if it is linked.
func (w *timerWheel) remove(t *Task) {
	if t.timerNode.isLinked() {
		t.timerNode.remove()
	}
}

// tick decrements every entry's remaining ticks by one and returns the
// tasks that just reached zero, already unlinked from the timer list.
// Order follows timer-list order (oldest entry first), not priority.
func (w *timerWheel) tick() []*Task {
	var expired []*Task
	w.head.forEach(func(t *Task) {
		if t.ticksRemaining == TicksInfinite {
			return
		}
		t.ticksRemaining--
		if t.ticksRemaining <= 0 {
			t.timerNode.remove()
			expired = append(expired, t)
		}
	})
	return expired
}
