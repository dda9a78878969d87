package tneo

import (
	"fmt"
	"runtime"
)

// TaskConfig configures a task created by Kernel.NewTask.
type TaskConfig struct {
	// Entry is the task body. It receives Param and runs on its own
	// goroutine (under the default Hooks) the first time the task is
	// activated. If Entry returns normally, the task behaves as if it
	// had called Task.Exit.
	Entry func(param any)
	// Param is passed to Entry verbatim.
	Param any
	// Priority is the task's base (and, absent mutex priority
	// inheritance, current) priority. Must be in [0, PriorityCount).
	Priority Priority
	// TimeSlice overrides the kernel's default round-robin time slice
	// for this task. Zero means "use the kernel default".
	TimeSlice int
}

// NewTask creates a task in the Dormant state; it does not run until
// Task.Activate is called. Panics if cfg is invalid, mirroring
// KernelConfig.validate (this is equally a programmer-error class of
// mistake, not a runtime condition callers should branch on).
func (k *Kernel) NewTask(cfg TaskConfig) *Task {
	if cfg.Entry == nil {
		panic(fmt.Errorf("tneo: NewTask: Entry must not be nil"))
	}
	if cfg.Priority < 0 || int(cfg.Priority) >= k.priorityCount {
		panic(fmt.Errorf("tneo: NewTask: priority %d out of range [0, %d)", cfg.Priority, k.priorityCount))
	}

	t := &Task{
		kernel:       k,
		validTag:     taskValidTag,
		basePriority: cfg.Priority,
		priority:     cfg.Priority,
		state:        StateDormant,
		entry:        cfg.Entry,
		param:        cfg.Param,
	}
	if cfg.TimeSlice > 0 {
		t.sliceDefault = cfg.TimeSlice
	} else {
		t.sliceDefault = k.defaultSlice
	}
	t.sliceRemaining = t.sliceDefault

	initListNode(&t.queueNode, t)
	initListNode(&t.timerNode, t)
	initListNode(&t.createNode, t)

	// t.runtime is left nil here: Activate/IActivate always builds a
	// fresh one before the task ever runs, and building one now would
	// just be discarded unused the first time that happens.

	k.cs.enter()
	k.createList.insertTail(&t.createNode)
	k.cs.leave()

	return t
}

// runEntry is the function handed to Hooks.StackInit: it runs the
// configured Entry and then exits the task, exactly as if Entry had
// called Task.Exit itself, should it return normally.
func (t *Task) runEntry(param any) {
	t.entry(param)
	t.exitLocked(t, true)
}

// Activate transitions t from Dormant to Runnable, making it eligible
// to run. Returns RCWParam if t is invalid, RCWState if t is not
// Dormant.
func (t *Task) Activate() (RCode, error) {
	if t == nil {
		return RCWParam, wrap("Activate", RCWParam)
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()

	if !t.valid() {
		return RCWParam, wrap("Activate", RCWParam)
	}
	if t.state != StateDormant {
		return RCWState, wrap("Activate", RCWState)
	}

	self := k.current
	t.priority = t.basePriority
	t.sliceRemaining = t.sliceDefault
	t.state = StateRunnable
	// A task's runtime handle (its goroutine and gate, for
	// goroutineHooks) is consumed by the run to completion that ended
	// the previous activation, if any - Dormant->Runnable always starts
	// the body over from entry, so a fresh handle is built here, not at
	// NewTask.
	t.runtime = k.hooks.StackInit(t.runEntry, t.param)
	k.ready.pushTail(t)
	k.trace("activate", t)
	k.rescheduleLocked(self)
	return RCOk, nil
}

// Sleep parks the calling task for the given number of ticks, or until
// explicitly woken via Wakeup or ReleaseWait (the only way out if
// timeout is TicksInfinite).
// Sleep must be called from within the task's own body; it blocks the
// calling goroutine until the task resumes.
func (t *Task) Sleep(timeout Ticks) (RCode, error) {
	if t == nil {
		return RCWParam, wrap("Sleep", RCWParam)
	}
	k := t.kernel
	k.cs.enter()

	if !t.valid() {
		k.cs.leave()
		return RCWParam, wrap("Sleep", RCWParam)
	}
	if k.current != t {
		k.cs.leave()
		return RCWContext, wrap("Sleep", RCWContext)
	}
	if timeout == TicksNoWait {
		k.cs.leave()
		return RCTimeout, nil
	}

	k.trace("sleep", t)
	rc := k.awaitLocked(t, &k.sleepQueue, WaitReasonSleep, timeout)
	k.cs.leave()
	return rc, wrap("Sleep", rc)
}

// ReleaseWait forcibly wakes t if it is currently waiting (on a sleep,
// an event group, or any other wait-capable primitive), with result
// code RCForced, regardless of whether its wait condition was met.
// Returns RCWState if t is not currently waiting.
//
// A waiting t is, by definition, not k.current (it gave up that status
// when it parked). ReleaseWait passes k.current to rescheduleLocked as
// self, so it is safe from the current task's own body, or from any
// goroutine while no task is current. Called from any other goroutine
// while some task is current, a release that lets t outrank that task
// performs the context switch on the calling goroutine; see
// Kernel.rescheduleLocked's doc comment on the self parameter.
func (t *Task) ReleaseWait() (RCode, error) {
	if t == nil {
		return RCWParam, wrap("ReleaseWait", RCWParam)
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()

	if !t.valid() {
		return RCWParam, wrap("ReleaseWait", RCWParam)
	}
	if t.state&StateWait == 0 {
		return RCWState, wrap("ReleaseWait", RCWState)
	}

	k.releaseWaiterLocked(t, RCForced)
	k.trace("release_wait", t)
	k.rescheduleLocked(k.current)
	return RCOk, nil
}

// IReleaseWait is the ISR-safe counterpart of ReleaseWait: the release
// is deferred to the next DrainISRWork call rather than applied inline.
func (t *Task) IReleaseWait() (RCode, error) {
	if t == nil {
		return RCWParam, wrap("IReleaseWait", RCWParam)
	}
	return t.kernel.deferISR("IReleaseWait", func(k *Kernel) {
		k.cs.enter()
		if t.valid() && t.state&StateWait != 0 {
			k.releaseWaiterLocked(t, RCForced)
			k.trace("release_wait", t)
		}
		k.rescheduleLocked(nil)
		k.cs.leave()
	})
}

// Wakeup releases t only if it is parked via Sleep; any other wait
// reason (including no wait at all) returns RCWState untouched, per
// original_source's tn_task_wakeup. The released Sleep returns RCOk,
// not RCForced.
func (t *Task) Wakeup() (RCode, error) {
	if t == nil {
		return RCWParam, wrap("Wakeup", RCWParam)
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()

	if !t.valid() {
		return RCWParam, wrap("Wakeup", RCWParam)
	}
	if t.state&StateWait == 0 || t.waitReason != WaitReasonSleep {
		return RCWState, wrap("Wakeup", RCWState)
	}

	self := k.current
	k.releaseWaiterLocked(t, RCOk)
	k.trace("wakeup", t)
	k.rescheduleLocked(self)
	return RCOk, nil
}

// IWakeup is the ISR-safe counterpart of Wakeup.
func (t *Task) IWakeup() (RCode, error) {
	if t == nil {
		return RCWParam, wrap("IWakeup", RCWParam)
	}
	return t.kernel.deferISR("IWakeup", func(k *Kernel) {
		k.cs.enter()
		if t.valid() && t.state&StateWait != 0 && t.waitReason == WaitReasonSleep {
			k.releaseWaiterLocked(t, RCOk)
			k.trace("wakeup", t)
		}
		k.rescheduleLocked(nil)
		k.cs.leave()
	})
}

// IActivate is the ISR-safe counterpart of Activate.
func (t *Task) IActivate() (RCode, error) {
	if t == nil {
		return RCWParam, wrap("IActivate", RCWParam)
	}
	return t.kernel.deferISR("IActivate", func(k *Kernel) {
		k.cs.enter()
		if t.valid() && t.state == StateDormant {
			t.priority = t.basePriority
			t.sliceRemaining = t.sliceDefault
			t.state = StateRunnable
			t.runtime = k.hooks.StackInit(t.runEntry, t.param)
			k.ready.pushTail(t)
			k.trace("activate", t)
		}
		k.rescheduleLocked(nil)
		k.cs.leave()
	})
}

// Suspend puts t into the Suspend state, in addition to whatever other
// state it is in: a Runnable task is pulled off the ready queue and
// stops being scheduled (Resume re-queues it at the tail of its
// priority's FIFO, not its original position); a Waiting task keeps
// waiting (becoming Wait|Suspend) and remains eligible to time out or
// be satisfied, but will not actually run until also resumed. Returns
// RCWState if t is Dormant.
//
// Suspend passes k.current to rescheduleLocked as self, so it is safe
// from the current task's own goroutine (including a task suspending
// itself), or from any goroutine while no task is current. A goroutine
// other than the current task's own that calls it while some task is
// current - for instance a driver suspending whatever task the kernel
// reports as current - will, whenever the ready queue's head then
// differs from the current task, perform the switch on the calling
// goroutine and deadlock the reference Hooks - see
// Kernel.rescheduleLocked's doc comment on the self parameter.
func (t *Task) Suspend() (RCode, error) {
	if t == nil {
		return RCWParam, wrap("Suspend", RCWParam)
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()

	if !t.valid() {
		return RCWParam, wrap("Suspend", RCWParam)
	}
	if t.state == StateDormant || t.state&StateSuspend != 0 {
		return RCWState, wrap("Suspend", RCWState)
	}

	if t.state&StateRunnable != 0 {
		k.ready.remove(t)
		t.state &^= StateRunnable
	}
	t.state |= StateSuspend
	k.trace("suspend", t)
	k.rescheduleLocked(k.current)
	return RCOk, nil
}

// Resume clears t's Suspend bit. If t was Runnable before being
// suspended (i.e. it is now bare Suspend, not Wait|Suspend), it
// re-joins the ready queue. If it was Wait|Suspend, it goes back to
// plain Wait, still parked. Returns RCWState if t is not suspended.
//
// A suspended t is never k.current (Suspend always clears the
// Runnable bit before a task can be considered for dispatch again), but
// Resume still passes k.current to rescheduleLocked as self: it is safe
// from the current task's own goroutine or while no task is current,
// and the hazard described on Suspend applies when another goroutine
// resumes a t that then outranks a task that is current.
func (t *Task) Resume() (RCode, error) {
	if t == nil {
		return RCWParam, wrap("Resume", RCWParam)
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()

	if !t.valid() {
		return RCWParam, wrap("Resume", RCWParam)
	}
	if t.state&StateSuspend == 0 {
		return RCWState, wrap("Resume", RCWState)
	}

	t.state &^= StateSuspend
	if t.state&StateWait == 0 {
		t.state |= StateRunnable
		k.ready.pushTail(t)
	}
	k.trace("resume", t)
	k.rescheduleLocked(k.current)
	return RCOk, nil
}

// ChangePriority sets t's current priority to newPriority. As
// tn_task_change_priority documents, a newPriority of 0 is a sentinel
// meaning "reset to base priority" rather than a literal target - to
// request the numerically-highest real priority, pass t.BasePriority()
// when it is itself 0. If t is on the ready queue, it is re-slotted at
// the tail of its new priority's FIFO, per tn_task_change_priority's
// "lowest precedence among peers" placement rule. Returns RCWParam if
// newPriority is out of range.
//
// Lowering k.current's priority below a ready peer's, or raising
// another ready task above k.current, is a genuine switch-away, with the
// same driver-goroutine hazard documented on Suspend: safe from the
// current task's own goroutine or while no task is current, but not
// from any other goroutine while some task is current.
func (t *Task) ChangePriority(newPriority Priority) (RCode, error) {
	if t == nil {
		return RCWParam, wrap("ChangePriority", RCWParam)
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()

	if !t.valid() {
		return RCWParam, wrap("ChangePriority", RCWParam)
	}

	target := newPriority
	if target == 0 {
		target = t.basePriority
	}
	if target < 0 || int(target) >= k.priorityCount {
		return RCWParam, wrap("ChangePriority", RCWParam)
	}

	if t.state&StateRunnable != 0 {
		k.ready.remove(t)
		t.priority = target
		k.ready.pushTail(t)
	} else {
		t.priority = target
	}
	k.trace("change_priority", t)
	k.rescheduleLocked(k.current)
	return RCOk, nil
}

// exitLocked is the shared tail of Task.Exit and Entry returning
// normally. self identifies the calling goroutine's task (when called
// via Task.Terminate acting on a different task, it is whatever task was
// k.current at the time, nil if none). fromOwnBody is true
// when called because the task's own goroutine is finishing - in that
// case, it never returns (it ends the goroutine via runtime.Goexit
// after handing off the virtual CPU).
func (t *Task) exitLocked(self *Task, fromOwnBody bool) {
	k := t.kernel
	k.cs.enter()

	if t.state&StateRunnable != 0 {
		k.ready.remove(t)
	}
	if t.state&StateWait != 0 {
		if t.queueNode.isLinked() {
			t.queueNode.remove()
		}
		k.timers.remove(t)
		t.pwaitQueue = nil
		t.waitReason = WaitReasonNone
	}
	if t.queueNode.isLinked() || t.timerNode.isLinked() {
		k.cs.leave()
		k.fatal("exitLocked", fmt.Sprintf("task at priority %d still linked after exit cleanup (state=%s)", t.priority, t.state))
	}
	t.state = StateDormant
	k.trace("exit", t)
	k.rescheduleLocked(self)
	k.cs.leave()

	if fromOwnBody {
		runtime.Goexit()
	}
}

// Exit transitions the calling task to Dormant and never returns: like
// original_source's tn_task_exit, it is only valid called by a task
// about to finish itself, from within its own body. Called on a nil
// task or on a task that is not k.current, it returns without effect.
func (t *Task) Exit() {
	if t == nil {
		return
	}
	k := t.kernel
	k.cs.enter()
	if k.current != t {
		k.cs.leave()
		return
	}
	k.cs.leave()
	t.exitLocked(t, true)
}

// Terminate forcibly transitions t (which must not be the caller) to
// Dormant from any state, abandoning whatever it was doing. Unlike
// Exit, it does not run on t's own goroutine: under the reference
// Hooks, t's goroutine (if it was ever started) is simply abandoned
// blocked on its own gate - a documented resource leak of this hosted
// simulation, since a real microcontroller target truly halts the
// terminated task's execution context, which Go cannot do to an
// arbitrary unrelated goroutine. Returns RCWState if t is already
// Dormant.
func (t *Task) Terminate() (RCode, error) {
	if t == nil {
		return RCWParam, wrap("Terminate", RCWParam)
	}
	k := t.kernel
	k.cs.enter()

	if !t.valid() {
		k.cs.leave()
		return RCWParam, wrap("Terminate", RCWParam)
	}
	if t.state == StateDormant {
		k.cs.leave()
		return RCWState, wrap("Terminate", RCWState)
	}
	if k.current == t {
		k.cs.leave()
		return RCWContext, wrap("Terminate", RCWContext)
	}
	self := k.current
	k.cs.leave()

	t.exitLocked(self, false)
	return RCOk, nil
}

// Delete releases t's validation tag, after which any further method
// call on t returns RCWParam. t must be Dormant. Returns RCWState
// otherwise.
func (t *Task) Delete() (RCode, error) {
	if t == nil {
		return RCWParam, wrap("Delete", RCWParam)
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()

	if !t.valid() {
		return RCWParam, wrap("Delete", RCWParam)
	}
	if t.state != StateDormant {
		return RCWState, wrap("Delete", RCWState)
	}

	t.createNode.remove()
	t.validTag = 0
	return RCOk, nil
}
