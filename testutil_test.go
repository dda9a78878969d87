package tneo

import (
	"testing"
	"time"
)

// waitUntil polls cond at a short interval until it reports true or the
// timeout elapses, failing the test in the latter case. Scenario tests
// in this package exercise real goroutines (one per task, gated by
// goroutineHooks), so synchronizing "has task X actually parked yet"
// needs this kind of check-then-sleep loop rather than a fixed delay -
// the same pattern the teacher's own concurrency tests use to observe
// asynchronous state settling.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(time.Millisecond)
	}
}

// checkInvariants verifies every quantified invariant spec.md §5
// describes against the live state of k: the ready-queue bitmap
// matches the non-empty priority lists; a parked task has a timer
// entry iff its wait is time-bounded; the running task is the
// ready-list head for its own priority; every Wait task has a linked,
// non-nil pwaitQueue and every non-Wait task has a nil one; and (since
// queueNode is a single node shared between the ready list and every
// wait queue) a task's queueNode is linked if and only if it is
// Runnable or Wait, which by construction rules out a task appearing
// on two wait queues, or a wait queue and the ready queue, at once.
func checkInvariants(t *testing.T, k *Kernel) {
	t.Helper()
	k.cs.enter()
	defer k.cs.leave()

	for p := 0; p < k.priorityCount; p++ {
		nonEmpty := !k.ready.lists[p].isEmpty()
		bitSet := k.ready.bitmap&(1<<uint(p)) != 0
		if nonEmpty != bitSet {
			t.Errorf("ready-queue bitmap disagrees with list emptiness at priority %d: nonEmpty=%v bitSet=%v", p, nonEmpty, bitSet)
		}
		k.ready.lists[p].forEach(func(task *Task) {
			if task.state&StateRunnable == 0 {
				t.Errorf("task in ready list at priority %d is not Runnable: %s", p, task.state)
			}
			if task.priority != Priority(p) {
				t.Errorf("task queued at priority %d but reports priority %d", p, task.priority)
			}
		})
	}

	k.timers.head.forEach(func(task *Task) {
		if task.state&StateWait == 0 {
			t.Errorf("task on timer list is not Wait: %s", task.state)
		}
		if task.ticksRemaining == TicksInfinite {
			t.Errorf("task with infinite timeout should not be on the timer list")
		}
	})

	if k.current != nil {
		if !k.current.state.IsRunnable() {
			t.Errorf("current task is not Runnable: %s", k.current.state)
		}
		if k.ready.headOf(k.current.priority) != k.current {
			t.Errorf("current task is not the ready-list head for its own priority %d", k.current.priority)
		}
	}

	k.createList.forEach(func(task *Task) {
		wantLinked := task.state&(StateRunnable|StateWait) != 0
		if task.queueNode.isLinked() != wantLinked {
			t.Errorf("task state %s disagrees with queueNode linkage (linked=%v)", task.state, task.queueNode.isLinked())
		}
		if task.state&StateWait != 0 {
			if task.pwaitQueue == nil {
				t.Errorf("task in Wait state %s has a nil pwaitQueue", task.state)
			}
		} else if task.pwaitQueue != nil {
			t.Errorf("task not in Wait state %s still has a non-nil pwaitQueue", task.state)
		}
	})
}
