package tneo

import "fmt"

// newWaitQueue returns a pointer to an initialized, empty wait-queue
// head. Any object that parks tasks (EventGroup today, which embeds its
// head and initializes it with initListHead; a semaphore or mutex
// tomorrow) passes the head's address to awaitLocked/releaseAllLocked
// below - the generic three-phase park/release protocol spec.md §4.F
// describes, shared by every wait-capable primitive in this package.
func newWaitQueue() *listNode[Task] {
	h := new(listNode[Task])
	initListHead(h)
	return h
}

// parkLocked is the parking step of phase three: link self onto wq,
// record why and for how long, and register a timer-wheel entry if the
// wait is time-bounded.
// Must be called with the critical section held.
func (k *Kernel) parkLocked(t *Task, wq *listNode[Task], reason WaitReason, timeout Ticks) {
	t.waitReason = reason
	t.waitResult = RCOk
	t.pwaitQueue = wq
	t.state |= StateWait
	wq.insertTail(&t.queueNode)
	t.ticksRemaining = timeout
	if timeout != TicksInfinite {
		k.timers.add(t)
	}
}

// awaitLocked is phase three (the caller has already handled phases one
// and two, the immediate-satisfaction and poll checks): park self, yield the
// virtual CPU, and block until something releases self (a satisfied
// condition, a timeout, an explicit ReleaseWait, or the wait queue's
// owner being deleted). Returns the RCode the releaser recorded.
//
// Must be called with the critical section held and with self being the
// task whose own goroutine is making the call (self == k.current) -
// awaitLocked is never valid from ISR context, since it suspends the
// calling goroutine. Returns with the critical section held again.
func (k *Kernel) awaitLocked(self *Task, wq *listNode[Task], reason WaitReason, timeout Ticks) RCode {
	k.ready.remove(self)
	self.state &^= StateRunnable
	k.parkLocked(self, wq, reason, timeout)
	k.rescheduleLocked(self)
	return self.waitResult
}

// releaseWaiterLocked is the common tail of every wakeup path: timeout
// expiry (Kernel.Tick), a satisfied predicate (EventGroup.Modify), an
// explicit forced release (Task.ReleaseWait), or the object being
// deleted out from under its waiters. It unlinks t from whatever queue
// it is on (wait or timer), stamps the wait result, and - unless t is
// also suspended - makes it runnable again. Must be called with the
// critical section held.
func (k *Kernel) releaseWaiterLocked(t *Task, code RCode) {
	if t.state&StateWait == 0 {
		k.cs.leave()
		k.fatal("releaseWaiterLocked", fmt.Sprintf("task at priority %d released but not in Wait state (state=%s)", t.priority, t.state))
	}
	if t.queueNode.isLinked() {
		t.queueNode.remove()
	}
	k.timers.remove(t)
	t.pwaitQueue = nil
	t.waitReason = WaitReasonNone
	t.waitResult = code
	t.state &^= StateWait
	if t.state&StateSuspend == 0 {
		t.state |= StateRunnable
		k.ready.pushTail(t)
	}
}

// releaseAllLocked releases every task currently parked on wq with the
// given code, FIFO (wait-queue order), e.g. when an EventGroup is
// deleted (spec.md's RCDeleted path) or explicitly broadcast-woken.
func (k *Kernel) releaseAllLocked(wq *listNode[Task], code RCode) {
	for {
		t := wq.front()
		if t == nil {
			return
		}
		k.releaseWaiterLocked(t, code)
	}
}
