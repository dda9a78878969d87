package tneo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerWheel_TickDecrementsAndExpires(t *testing.T) {
	w := newTimerWheel()
	a := newBareTask(0)
	b := newBareTask(0)
	a.ticksRemaining = 2
	b.ticksRemaining = 1
	w.add(a)
	w.add(b)

	expired := w.tick()
	assert.Equal(t, []*Task{b}, expired)
	assert.Equal(t, Ticks(1), a.ticksRemaining)
	assert.False(t, b.timerNode.isLinked())
	assert.True(t, a.timerNode.isLinked())

	expired = w.tick()
	assert.Equal(t, []*Task{a}, expired)
	assert.False(t, a.timerNode.isLinked())
}

func TestTimerWheel_InfiniteNeverExpires(t *testing.T) {
	w := newTimerWheel()
	a := newBareTask(0)
	a.ticksRemaining = TicksInfinite
	w.add(a)

	for i := 0; i < 5; i++ {
		expired := w.tick()
		assert.Empty(t, expired)
	}
	assert.Equal(t, TicksInfinite, a.ticksRemaining)
}

func TestTimerWheel_RemoveBeforeExpiry(t *testing.T) {
	w := newTimerWheel()
	a := newBareTask(0)
	a.ticksRemaining = 3
	w.add(a)
	w.remove(a)
	assert.False(t, a.timerNode.isLinked())

	expired := w.tick()
	assert.Empty(t, expired)
}
