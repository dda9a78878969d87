package tneo

// listNode is an element of a circular, doubly linked, intrusive list,
// generic over the type of the object it belongs to. It is embedded by
// value in owning structs (Task carries three: one for the ready-or-wait
// queue, one for the timer wheel, one for the kernel's creation
// registry); there is no separate allocation for list membership.
//
// Rather than recovering the owner via unsafe pointer arithmetic
// (container_of, as the C original does), each node carries a typed,
// non-owning back-pointer to T, set once at initListNode time - this is
// the "non-owning handle" resolution spec.md §9 suggests for the
// task/wait-queue cross-reference, applied uniformly to every list in
// the kernel.
//
// A node used as a list head (initListHead) has a nil owner and is never
// itself iterated by forEach.
type listNode[T any] struct {
	prev, next *listNode[T]
	owner      *T
}

// initListHead initializes h as an empty list head.
func initListHead[T any](h *listNode[T]) {
	h.prev = h
	h.next = h
	h.owner = nil
}

// initListNode initializes n as a detached node owned by owner.
func initListNode[T any](n *listNode[T], owner *T) {
	n.prev = n
	n.next = n
	n.owner = owner
}

// isEmpty reports whether the list headed by h has no members.
func (h *listNode[T]) isEmpty() bool {
	return h.next == h
}

// isLinked reports whether n is currently part of some list.
func (n *listNode[T]) isLinked() bool {
	return n.next != n
}

// insertTail links n immediately before h (the tail of the list headed by h).
func (h *listNode[T]) insertTail(n *listNode[T]) {
	n.prev = h.prev
	n.next = h
	h.prev.next = n
	h.prev = n
}

// insertHead links n immediately after h (the head of the list headed by h).
func (h *listNode[T]) insertHead(n *listNode[T]) {
	n.next = h.next
	n.prev = h
	h.next.prev = n
	h.next = n
}

// remove unlinks n from whatever list it is currently part of, and
// re-initializes it as detached (pointing to itself). Safe to call on an
// already-detached node.
func (n *listNode[T]) remove() {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = n
	n.next = n
}

// forEach calls fn for the owner of every node in the list headed by h,
// front-to-back. The current node may remove itself (directly, or via a
// side effect of fn); fn must not otherwise mutate the list.
func (h *listNode[T]) forEach(fn func(owner *T)) {
	for n := h.next; n != h; {
		next := n.next
		fn(n.owner)
		n = next
	}
}

// front returns the owner of the first node of the list headed by h, or
// nil if the list is empty.
func (h *listNode[T]) front() *T {
	if h.isEmpty() {
		return nil
	}
	return h.next.owner
}
