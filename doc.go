// Package tneo implements the core of a preemptive, priority-based task
// kernel for resource-constrained microcontrollers: strict-priority
// scheduling across a fixed set of cooperating tasks, a generic
// wait-queue protocol for parking and waking tasks, and the event-group
// synchronization primitive built on top of it.
//
// The kernel multiplexes tasks onto a single virtual CPU. Everything
// that would, on real hardware, require disabling interrupts is
// serialized through a single critical section per Kernel; the
// CPU-context-switch trampoline and stack-init routine are external
// collaborators, supplied at construction time via Hooks, and the tick
// interrupt is modeled by the caller invoking Kernel.Tick.
package tneo
