package tneo

import (
	"fmt"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// eventLog is the structured logger type every kernel instance carries,
// grounded on logiface-stumpy's documented usage (see
// logiface-stumpy/example_test.go): a generic logiface.Logger bound to
// stumpy's JSON event implementation. A nil *Kernel.logger (the zero
// value of logiface.Logger) is safe to call methods on and writes
// nothing, so a Kernel built with a nil KernelConfig.Logger still runs.
type eventLog = logiface.Logger[*stumpy.Event]

// KernelConfig configures a Kernel. The zero value is invalid (its
// PriorityCount is 0); fill in the fields below and pass the value to
// NewKernel, following the validated-constructor convention
// catrate.NewLimiter uses: invalid
// combinations panic at construction time rather than surfacing as a
// runtime RCode, since they are exclusively programmer error.
type KernelConfig struct {
	// PriorityCount is the number of distinct scheduling priorities,
	// numbered 0 (highest) to PriorityCount-1 (lowest). Must be in
	// [1, maxPriorities].
	PriorityCount int
	// TimeSlice is the default number of ticks a task may run before a
	// same-priority peer is rotated in ahead of it (round-robin). Zero
	// or negative disables round-robin (a task runs until it blocks or
	// a higher-priority task preempts it).
	TimeSlice int
	// Hooks supplies the context-switch trampoline and stack-init
	// routine. If nil, NewKernel installs NewGoroutineHooks().
	Hooks Hooks
	// Logger receives structured trace events for state transitions and
	// a Panic-level event immediately before any detected invariant
	// violation halts the process. If nil, logging is a no-op.
	Logger *eventLog
	// DeferredQueueSize is the capacity of the ISR-safe deferred-action
	// ring buffer (see deferred.go). Must be a power of two; defaults
	// to 32 if zero.
	DeferredQueueSize int
}

func (c KernelConfig) validate() {
	if c.PriorityCount <= 0 || c.PriorityCount > maxPriorities {
		panic(fmt.Errorf("tneo: invalid PriorityCount %d: must be in [1, %d]", c.PriorityCount, maxPriorities))
	}
	if c.DeferredQueueSize < 0 {
		panic(fmt.Errorf("tneo: invalid DeferredQueueSize %d: must be >= 0", c.DeferredQueueSize))
	}
	if c.DeferredQueueSize != 0 && c.DeferredQueueSize&(c.DeferredQueueSize-1) != 0 {
		panic(fmt.Errorf("tneo: invalid DeferredQueueSize %d: must be a power of two", c.DeferredQueueSize))
	}
}

// Kernel is the scheduler: one instance models one virtual CPU (spec.md
// §1's explicit Non-goal rules out multi-CPU scheduling within a single
// Kernel). Build one with NewKernel.
type Kernel struct {
	cs criticalSection

	priorityCount int
	defaultSlice  int
	hooks         Hooks
	logger        *eventLog

	ready   *readyQueue
	timers  *timerWheel
	deferred *deferredRing

	// sleepQueue is the wait-queue head shared by every task parked via
	// Task.Sleep within this Kernel. Sleep has no owning object the way
	// EventGroup.Wait does, so tasks parked here are only ever released
	// by Tick (timeout), Task.Wakeup/IWakeup, or an explicit
	// Task.ReleaseWait/IReleaseWait, never by a "condition satisfied"
	// path. Scoped per-Kernel so two independently
	// running kernels never share (and race on) the same linked list.
	sleepQueue listNode[Task]

	createList listNode[Task]

	current *Task
	next    *Task

	tickCount uint64
}

// NewKernel constructs a Kernel from cfg. Panics if cfg is invalid.
func NewKernel(cfg KernelConfig) *Kernel {
	cfg.validate()

	hooks := cfg.Hooks
	if hooks == nil {
		hooks = NewGoroutineHooks()
	}
	queueSize := cfg.DeferredQueueSize
	if queueSize == 0 {
		queueSize = 32
	}

	k := &Kernel{
		priorityCount: cfg.PriorityCount,
		defaultSlice:  clampSlice(cfg.TimeSlice),
		hooks:         hooks,
		logger:        cfg.Logger,
		ready:         newReadyQueue(cfg.PriorityCount),
		timers:        newTimerWheel(),
		deferred:      newDeferredRing(queueSize),
	}
	initListHead(&k.createList)
	initListHead(&k.sleepQueue)
	return k
}

// Current returns the task the kernel currently believes is running, or
// nil if the virtual CPU is idle.
func (k *Kernel) Current() *Task {
	k.cs.enter()
	defer k.cs.leave()
	return k.current
}

// TickCount returns the number of completed Tick calls.
func (k *Kernel) TickCount() uint64 {
	k.cs.enter()
	defer k.cs.leave()
	return k.tickCount
}

// fatal logs a Panic-level event (if a logger is configured) and then
// panics, realizing spec.md's "invoke the platform panic hook and never
// return" for detected invariant violations (RCInternal). Must only be
// called with the critical section NOT held, since the logger may block
// on I/O and invariant violations are, by definition, unrecoverable.
func (k *Kernel) fatal(op string, msg string) {
	if k.cs.held() {
		msg = "critical section still held at fatal() call: " + msg
	}
	if k.logger != nil {
		k.logger.Panic().Str("op", op).Log(msg)
		return
	}
	panic(fmt.Errorf("tneo: %s: %s", op, msg))
}

// trace emits a Trace-level structured event, a no-op if no logger is
// configured. Used at the state-machine transition points so a consumer
// wiring in a real logiface backend gets a blow-by-blow schedule trace
// for free, matching how eventloop's tests wire logging.go.
func (k *Kernel) trace(op string, t *Task) {
	if k.logger == nil {
		return
	}
	k.logger.Trace().
		Str("op", op).
		Int("priority", int(t.priority)).
		Str("state", t.state.String()).
		Log("task transition")
}

// rescheduleLocked recomputes the highest-priority ready task and, if it
// differs from the one the kernel believes is current, requests a
// context switch via Hooks.ContextSwitch. Must be called with the
// critical section held; returns with it held again.
//
// self identifies the task whose own goroutine is making this call (nil
// if the caller is not a task's body - e.g. a bootstrap call, or ISR
// context via DrainISRWork). A real interrupt can force a switch away
// from whatever the CPU happens to be executing; this package cannot
// safely suspend an arbitrary, unrelated goroutine, so a switch is only
// actually performed in the two shapes goroutineHooks can realize
// safely:
//
//   - self == current (the running task is switching itself away, via
//     Sleep, Wait, Exit, or a peer it just woke outranking it), or
//   - current == nil (nothing was running: a cold start).
//
// Any other case (an ISR, or a task other than current, observing that a
// higher-priority peer just became ready) leaves the ready queue updated
// but defers the actual handoff: it takes effect the next time the
// current task itself reaches a kernel entry point and this function
// runs again with self == current. This mirrors real hardware, where a
// tick ISR sets a "reschedule requested" flag and the trampoline only
// runs once the interrupted code returns to a safe point - here, that
// safe point is the current task's next kernel call.
func (k *Kernel) rescheduleLocked(self *Task) {
	k.next = k.ready.highestPriorityTask()
	if k.next == k.current {
		return
	}
	if k.current != nil && k.current != self {
		return
	}
	from := k.current
	to := k.next
	k.current = to
	k.cs.leave()
	k.hooks.ContextSwitch(from, to)
	k.cs.enter()
}

// Tick advances the kernel's notion of time by one tick: every task
// parked with a finite timeout has its remaining ticks decremented, and
// any that reach zero are released with RCTimeout (spec.md §4.D). It
// also rotates the current task's priority-level ready FIFO once its
// time slice expires, implementing round-robin (spec.md §4.C).
//
// Tick runs in ISR context (self == nil to rescheduleLocked): per the
// doc comment on rescheduleLocked, if a higher-priority task becomes
// ready as a result, the actual switch away from whatever is currently
// running is deferred until that task's next kernel call.
func (k *Kernel) Tick() {
	k.cs.enter()
	k.tickCount++

	for _, t := range k.timers.tick() {
		k.releaseWaiterLocked(t, RCTimeout)
	}

	if k.current != nil && k.current.sliceDefault > 0 {
		k.current.sliceRemaining--
		if k.current.sliceRemaining <= 0 {
			k.current.sliceRemaining = k.current.sliceDefault
			k.ready.rotateHead(k.current.priority)
		}
	}

	k.rescheduleLocked(nil)
	k.cs.leave()
}
