package tneo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slices"
)

func newBareTask(priority Priority) *Task {
	t := &Task{priority: priority}
	initListNode(&t.queueNode, t)
	initListNode(&t.timerNode, t)
	return t
}

func TestReadyQueue_PushTailFIFOAndBitmap(t *testing.T) {
	q := newReadyQueue(4)
	a := newBareTask(1)
	b := newBareTask(1)
	q.pushTail(a)
	q.pushTail(b)

	assert.Equal(t, uint64(1<<1), q.bitmap)
	p, ok := q.highestPriority()
	assert.True(t, ok)
	assert.Equal(t, Priority(1), p)
	assert.Same(t, a, q.headOf(1))
	assert.Same(t, a, q.highestPriorityTask())
}

func TestReadyQueue_PushHeadJumpsTheLine(t *testing.T) {
	q := newReadyQueue(2)
	a := newBareTask(0)
	b := newBareTask(0)
	q.pushTail(a)
	q.pushHead(b)
	assert.Same(t, b, q.headOf(0))
}

func TestReadyQueue_RotateHead(t *testing.T) {
	q := newReadyQueue(2)
	a, b, c := newBareTask(0), newBareTask(0), newBareTask(0)
	q.pushTail(a)
	q.pushTail(b)
	q.pushTail(c)

	q.rotateHead(0)
	assert.Same(t, b, q.headOf(0))

	q.rotateHead(0)
	assert.Same(t, c, q.headOf(0))
}

func TestReadyQueue_RotateHead_SingleEntryIsNoOp(t *testing.T) {
	q := newReadyQueue(1)
	a := newBareTask(0)
	q.pushTail(a)
	q.rotateHead(0)
	assert.Same(t, a, q.headOf(0))
}

func TestReadyQueue_RemoveClearsBitmapWhenEmpty(t *testing.T) {
	q := newReadyQueue(2)
	a := newBareTask(0)
	q.pushTail(a)
	q.remove(a)
	assert.Equal(t, uint64(0), q.bitmap)
	_, ok := q.highestPriority()
	assert.False(t, ok)
	assert.Nil(t, q.highestPriorityTask())
}

func TestReadyQueue_OccupiedPriorityLevelsStayInNumericOrder(t *testing.T) {
	q := newReadyQueue(8)
	q.pushTail(newBareTask(5))
	q.pushTail(newBareTask(1))
	q.pushTail(newBareTask(6))
	q.pushTail(newBareTask(1))

	var occupied []Priority
	for p := Priority(0); int(p) < len(q.lists); p++ {
		if !q.lists[p].isEmpty() {
			occupied = append(occupied, p)
		}
	}

	assert.True(t, slices.IsSorted(occupied), "priority levels must already be collected in ascending order")
	assert.True(t, slices.Contains(occupied, Priority(1)))
	assert.True(t, slices.Contains(occupied, Priority(5)))
	assert.True(t, slices.Contains(occupied, Priority(6)))
	assert.Equal(t, 3, len(occupied))
}

func TestReadyQueue_HighestPriorityIsNumericallyLowest(t *testing.T) {
	q := newReadyQueue(8)
	low := newBareTask(5)
	high := newBareTask(2)
	q.pushTail(low)
	q.pushTail(high)

	p, ok := q.highestPriority()
	assert.True(t, ok)
	assert.Equal(t, Priority(2), p)
	assert.Same(t, high, q.highestPriorityTask())
}
