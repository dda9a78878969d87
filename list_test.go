package tneo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type listTestOwner struct {
	id   int
	node listNode[listTestOwner]
}

func newListTestOwner(id int) *listTestOwner {
	o := &listTestOwner{id: id}
	initListNode(&o.node, o)
	return o
}

func TestList_EmptyHead(t *testing.T) {
	var h listNode[listTestOwner]
	initListHead(&h)

	assert.True(t, h.isEmpty())
	assert.Nil(t, h.front())

	var visited []int
	h.forEach(func(o *listTestOwner) { visited = append(visited, o.id) })
	assert.Empty(t, visited)
}

func TestList_InsertTail_FIFO(t *testing.T) {
	var h listNode[listTestOwner]
	initListHead(&h)

	a, b, c := newListTestOwner(1), newListTestOwner(2), newListTestOwner(3)
	h.insertTail(&a.node)
	h.insertTail(&b.node)
	h.insertTail(&c.node)

	assert.False(t, h.isEmpty())
	assert.Equal(t, a, h.front())

	var order []int
	h.forEach(func(o *listTestOwner) { order = append(order, o.id) })
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestList_InsertHead_LIFO(t *testing.T) {
	var h listNode[listTestOwner]
	initListHead(&h)

	a, b, c := newListTestOwner(1), newListTestOwner(2), newListTestOwner(3)
	h.insertHead(&a.node)
	h.insertHead(&b.node)
	h.insertHead(&c.node)

	var order []int
	h.forEach(func(o *listTestOwner) { order = append(order, o.id) })
	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestList_Remove_SelfUnlinks(t *testing.T) {
	var h listNode[listTestOwner]
	initListHead(&h)

	a, b, c := newListTestOwner(1), newListTestOwner(2), newListTestOwner(3)
	h.insertTail(&a.node)
	h.insertTail(&b.node)
	h.insertTail(&c.node)

	b.node.remove()

	var order []int
	h.forEach(func(o *listTestOwner) { order = append(order, o.id) })
	assert.Equal(t, []int{1, 3}, order)
	assert.False(t, b.node.isLinked())
}

func TestList_Remove_NotLinked_IsNoOp(t *testing.T) {
	a := newListTestOwner(1)
	assert.False(t, a.node.isLinked())
	assert.NotPanics(t, func() { a.node.remove() })
	assert.False(t, a.node.isLinked())
}

func TestList_Remove_DuringForEach(t *testing.T) {
	var h listNode[listTestOwner]
	initListHead(&h)

	a, b, c := newListTestOwner(1), newListTestOwner(2), newListTestOwner(3)
	h.insertTail(&a.node)
	h.insertTail(&b.node)
	h.insertTail(&c.node)

	var order []int
	h.forEach(func(o *listTestOwner) {
		order = append(order, o.id)
		if o.id == 2 {
			o.node.remove()
		}
	})
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.True(t, h.isEmpty() == false)

	var after []int
	h.forEach(func(o *listTestOwner) { after = append(after, o.id) })
	assert.Equal(t, []int{1, 3}, after)
}
