package tneo

// TaskState is a bitmask over the three orthogonal axes spec.md §4.E
// describes (Runnable, Wait, Suspend), plus the distinct terminal value
// Dormant. Per the Open Question in spec.md §9 (resolved in DESIGN.md),
// every predicate on TaskState is a bitwise test (state&StateWait != 0),
// never an equality comparison, except against the literal Dormant
// value, which never combines with the other three.
type TaskState uint8

const (
	// StateDormant is the task's state before first activation, and
	// after Task.Exit/Task.Terminate. Never combined with other bits.
	StateDormant TaskState = 0
	// StateRunnable means the task is on the ready queue (not
	// necessarily the one actually executing).
	StateRunnable TaskState = 1 << 0
	// StateWait means the task is parked on some object's wait queue,
	// and possibly also the timer wheel.
	StateWait TaskState = 1 << 1
	// StateSuspend means the task has been suspended (by itself or by
	// another caller) and cannot run until resumed, regardless of any
	// wait condition.
	StateSuspend TaskState = 1 << 2
	// StateWaitSuspend is the combined Wait|Suspend state: a task that
	// was waiting, and was then also suspended.
	StateWaitSuspend = StateWait | StateSuspend
)

// String returns the spec.md name for the state.
func (s TaskState) String() string {
	switch s {
	case StateDormant:
		return "DORMANT"
	case StateRunnable:
		return "RUNNABLE"
	case StateWait:
		return "WAIT"
	case StateSuspend:
		return "SUSPEND"
	case StateWaitSuspend:
		return "WAIT|SUSPEND"
	default:
		return "INVALID"
	}
}

// IsRunnable reports whether the Runnable bit is set.
func (s TaskState) IsRunnable() bool { return s&StateRunnable != 0 }

// IsWaiting reports whether the Wait bit is set.
func (s TaskState) IsWaiting() bool { return s&StateWait != 0 }

// IsSuspended reports whether the Suspend bit is set.
func (s TaskState) IsSuspended() bool { return s&StateSuspend != 0 }

// IsDormant reports the distinct terminal Dormant state.
func (s TaskState) IsDormant() bool { return s == StateDormant }

// WaitReason identifies which subsystem parked a task, mirroring
// original_source's TN_WaitReason. Queue/mutex/fixed-memory reasons are
// retained for fidelity with the task-state model even though their
// owning subsystems (byte-queue, fixed-block pool, mutex ceiling/
// inheritance) are explicit Non-goals of this package (spec.md §1); a
// future package implementing them reuses WaitReason and the wait-queue
// protocol in wait.go.
type WaitReason int

const (
	// WaitReasonNone means the task isn't waiting for anything.
	WaitReasonNone WaitReason = iota
	// WaitReasonSleep is set by Task.Sleep.
	WaitReasonSleep
	// WaitReasonSemaphore is reserved for a semaphore primitive, not
	// implemented in this package.
	WaitReasonSemaphore
	// WaitReasonEvent is set by EventGroup.Wait.
	WaitReasonEvent
	// WaitReasonQueueSend is reserved for the byte-queue Non-goal.
	WaitReasonQueueSend
	// WaitReasonQueueReceive is reserved for the byte-queue Non-goal.
	WaitReasonQueueReceive
	// WaitReasonMutexCeiling is reserved for the mutex Non-goal.
	WaitReasonMutexCeiling
	// WaitReasonMutexInherit is reserved for the mutex Non-goal.
	WaitReasonMutexInherit
	// WaitReasonFixedMemory is reserved for the fixed-block-pool Non-goal.
	WaitReasonFixedMemory
)

// String returns a human-readable name for the reason.
func (r WaitReason) String() string {
	switch r {
	case WaitReasonNone:
		return "none"
	case WaitReasonSleep:
		return "sleep"
	case WaitReasonSemaphore:
		return "semaphore"
	case WaitReasonEvent:
		return "event"
	case WaitReasonQueueSend:
		return "queue-send"
	case WaitReasonQueueReceive:
		return "queue-receive"
	case WaitReasonMutexCeiling:
		return "mutex-ceiling"
	case WaitReasonMutexInherit:
		return "mutex-inherit"
	case WaitReasonFixedMemory:
		return "fixed-memory"
	default:
		return "unknown"
	}
}

// Ticks counts scheduler ticks, as used for timeouts and remaining
// sleep/wait durations.
type Ticks int64

const (
	// TicksInfinite disables the timer-wheel entry for a parked task:
	// it will wait until explicitly released, never timing out.
	TicksInfinite Ticks = -1
	// TicksNoWait (zero) means "poll": try once, never park.
	TicksNoWait Ticks = 0
)

// taskValidTag is the magic value stamped into Task.validTag by NewTask
// and cleared by Task.Delete - spec.md §3's "validation tag", a
// poor-man's liveness check for the object (see spec.md §9's Open
// Question discussion; DESIGN.md records the decision not to upgrade
// this to a generation-counter handle).
const taskValidTag = 0x5441534b // "TASK"

// eventWaitScratch holds the event-group-specific fields a task carries
// while parked with WaitReasonEvent - spec.md §3's "per-subsystem wait
// scratch", packed so at most one subsystem's scratch is live at a time
// (enforced by construction: only EventGroup.Wait populates it, and
// only while WaitReasonEvent is current).
type eventWaitScratch struct {
	pattern uint
	mode    EventWaitMode
	actual  uint
}

// Task is the unit of scheduling: a schedulable execution context,
// created by Kernel.NewTask and driven entirely through the methods
// in this file and statemachine.go. The zero Task is not valid; use
// Kernel.NewTask.
type Task struct {
	kernel *Kernel

	validTag uint32

	basePriority Priority
	priority     Priority

	state       TaskState
	waitReason  WaitReason
	waitResult  RCode
	eventWait   eventWaitScratch
	pwaitQueue  *listNode[Task] // non-owning: the head of the queue this task is parked on, nil if not waiting
	ticksRemaining Ticks
	sliceRemaining int
	sliceDefault   int

	// queueNode links this task into exactly one of: a ready-queue
	// priority list, or some object's wait queue (spec.md invariant 1).
	queueNode listNode[Task]
	// timerNode links this task into the kernel's timer wheel, present
	// iff ticksRemaining is finite and state includes Wait (invariant 2).
	timerNode listNode[Task]
	// createNode links this task into the kernel's creation registry.
	createNode listNode[Task]

	entry func(any)
	param any

	// runtime is the opaque handle Hooks.StackInit produced for this
	// task; the kernel never inspects it, only ever passes it back to
	// Hooks.ContextSwitch via the task itself.
	runtime any
}

// Priority returns the task's current priority, which may diverge from
// BasePriority after a ChangePriority call.
func (t *Task) Priority() Priority {
	if t == nil {
		return 0
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()
	return t.priority
}

// BasePriority returns the priority the task was created with.
func (t *Task) BasePriority() Priority {
	if t == nil {
		return 0
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()
	return t.basePriority
}

// State returns the task's current state.
func (t *Task) State() TaskState {
	if t == nil {
		return StateDormant
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()
	return t.state
}

// WaitReason returns the reason the task is currently parked, or
// WaitReasonNone if it is not waiting.
func (t *Task) WaitReason() WaitReason {
	if t == nil {
		return WaitReasonNone
	}
	k := t.kernel
	k.cs.enter()
	defer k.cs.leave()
	return t.waitReason
}

// valid reports whether t has a live validation tag.
func (t *Task) valid() bool {
	return t != nil && t.validTag == taskValidTag
}

// clampSlice normalizes a configured TimeSlice: non-positive values mean
// "round-robin disabled" and are represented as 0, a sliceDefault both
// Kernel.Tick and NewTask can check directly rather than relying on an
// eventually-exhausted large counter.
func clampSlice(n int) int {
	if n <= 0 {
		return 0
	}
	return n
}
