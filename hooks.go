package tneo

// Hooks is the platform boundary spec.md §1 and §4.G carve out: the CPU
// context-switch trampoline and the stack-synthesis routine that makes a
// freshly created task's first resumption land at entry(param). Both are
// assembly on a real microcontroller; this package only ever calls them,
// never implements their mechanics itself.
type Hooks interface {
	// StackInit returns an opaque handle that a later ContextSwitch call
	// uses to resume execution at entry(param) the first time the task
	// identified by that handle is switched to. The kernel never
	// inspects the returned value.
	StackInit(entry func(any), param any) any

	// ContextSwitch requests that the task owning the `to` handle's
	// execution context (as returned by StackInit) begin or resume
	// running, and, if `from` is non-nil and still resumable, that the
	// calling goroutine's execution be suspended until it is later
	// switched back to. Either argument may be nil: a nil `from` means
	// nothing was previously running (a cold start); a nil `to` means
	// the virtual CPU is going idle.
	ContextSwitch(from, to *Task)
}

// taskRuntime is the handle goroutineHooks.StackInit hands back: one
// real goroutine per task, gated by a channel so that at most one
// task's goroutine is ever actually executing application code at a
// time - the rest sit parked on their own gate, inside a prior
// ContextSwitch call, exactly mirroring "only the current task runs".
type taskRuntime struct {
	entry   func(any)
	param   any
	gate    chan struct{}
	started bool
}

// goroutineHooks is the reference Hooks implementation used by this
// package's own tests and examples: it realizes the context-switch
// trampoline with goroutines and unbuffered channels rather than
// processor registers and a stack.
//
// It can only suspend the goroutine that is itself making the
// ContextSwitch call (i.e. `from` switching itself away, or a cold
// start with `from == nil`). A real interrupt can force a switch away
// from whatever instruction stream the CPU happens to be executing;
// this hosted simulation cannot safely stop an arbitrary unrelated
// goroutine, so Kernel.rescheduleLocked only ever calls ContextSwitch
// in exactly those two safe shapes - see its doc comment.
type goroutineHooks struct{}

// NewGoroutineHooks returns the reference Hooks implementation: each
// task runs on its own goroutine, and a context switch is realized as a
// channel handoff between the outgoing and incoming task's goroutines.
func NewGoroutineHooks() Hooks { return goroutineHooks{} }

func (goroutineHooks) StackInit(entry func(any), param any) any {
	return &taskRuntime{entry: entry, param: param, gate: make(chan struct{})}
}

func (goroutineHooks) ContextSwitch(from, to *Task) {
	if to != nil {
		rt := to.runtime.(*taskRuntime)
		if !rt.started {
			rt.started = true
			go func() {
				<-rt.gate
				rt.entry(rt.param)
			}()
		}
		rt.gate <- struct{}{}
	}
	if from != nil && !from.State().IsDormant() {
		frt := from.runtime.(*taskRuntime)
		<-frt.gate
	}
}
