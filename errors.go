package tneo

import "fmt"

// RCode is the result code returned by every kernel primitive. Unlike a
// plain error, it is also the value written into a parked task's wait
// result field, and read back out after the task resumes (it is what
// Task.Sleep and EventGroup.Wait return).
type RCode int

const (
	// RCOk indicates the primitive completed successfully, or a waiter
	// was released because its condition was satisfied.
	RCOk RCode = iota
	// RCTimeout indicates a parked task's timeout elapsed before its
	// condition was satisfied.
	RCTimeout
	// RCWParam indicates an invalid argument (nil owner, out-of-range
	// priority, bad validation tag, ...). No state was changed.
	RCWParam
	// RCWContext indicates a task-only primitive was called from ISR
	// context, or vice versa.
	RCWContext
	// RCWState indicates the target object or task was not in the state
	// required for the requested operation (e.g. waking a task that
	// isn't waiting, deleting a task that isn't dormant).
	RCWState
	// RCDeleted indicates a waiter was released because the object it
	// was waiting on was deleted.
	RCDeleted
	// RCForced indicates a waiter was released by an explicit
	// Task.ReleaseWait call, independent of its wait condition.
	RCForced
	// RCOverflow indicates an I-prefixed call could not be queued because
	// the ISR deferred-action ring was full.
	RCOverflow
	// RCIllegalUse indicates an ISR-only entry point was called from
	// task context, or a task-only entry point from ISR context, in a
	// case distinct from RCWContext (reserved for future primitives;
	// the primitives in this package return RCWContext for that case).
	RCIllegalUse
	// RCInternal indicates an invariant violation was detected. This
	// code is never returned to a caller: Kernel.fatal panics (via the
	// configured logger's Panic hook, or a bare panic if none is
	// configured) before any caller could observe it.
	RCInternal
)

// String implements fmt.Stringer.
func (c RCode) String() string {
	switch c {
	case RCOk:
		return "OK"
	case RCTimeout:
		return "TIMEOUT"
	case RCWParam:
		return "WPARAM"
	case RCWContext:
		return "WCONTEXT"
	case RCWState:
		return "WSTATE"
	case RCDeleted:
		return "DELETED"
	case RCForced:
		return "FORCED"
	case RCOverflow:
		return "OVERFLOW"
	case RCIllegalUse:
		return "ILLEGAL_USE"
	case RCInternal:
		return "INTERNAL"
	default:
		return fmt.Sprintf("RCode(%d)", int(c))
	}
}

// KernelError wraps a non-OK RCode with the operation and object that
// produced it, for use with errors.Is/errors.As. Programmer-error codes
// (RCWParam, RCWContext, RCWState, RCInternal) and RCOverflow (an ISR
// deferred-action queue at capacity - an operational condition, not a
// misuse, but one a caller should always treat as a failure) are
// surfaced as a *KernelError; RCTimeout/RCDeleted/RCForced/RCOk are
// ordinary, expected outcomes of waiting and are returned as a bare
// RCode without an error.
type KernelError struct {
	Op   string
	Code RCode
}

// Error implements the error interface.
func (e *KernelError) Error() string {
	if e == nil {
		return "tneo: <nil>"
	}
	return fmt.Sprintf("tneo: %s: %s", e.Op, e.Code)
}

// Is supports errors.Is(err, target) matching by RCode, so callers can
// write `errors.Is(err, &tneo.KernelError{Code: tneo.RCWParam})` style
// checks.
func (e *KernelError) Is(target error) bool {
	var other *KernelError
	if ok := asKernelError(target, &other); ok {
		return other.Code == e.Code
	}
	return false
}

func asKernelError(err error, out **KernelError) bool {
	ke, ok := err.(*KernelError)
	if ok {
		*out = ke
	}
	return ok
}

// wrap returns a *KernelError for codes that represent programmer error,
// and for RCOverflow, and nil otherwise (the bare code still communicates
// the outcome).
func wrap(op string, code RCode) error {
	switch code {
	case RCWParam, RCWContext, RCWState, RCInternal, RCOverflow:
		return &KernelError{Op: op, Code: code}
	default:
		return nil
	}
}
