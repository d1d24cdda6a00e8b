// Package clist provides the doubly linked registry used to track live
// simulation objects and static geometry. Nodes carry a payload of type T;
// the list never owns the payload, only the node.
//
// Deleting a node invalidates any cursor that references it. Call sites
// that delete while iterating must capture node.Next() (or Prev()) before
// deleting the current node:
//
//	node := list.Head()
//	for node != nil {
//		next := node.Next()
//		if shouldRetire(node.Data) {
//			list.Delete(&node)
//		}
//		node = next
//	}
package clist

// Node is a single registry entry. A node belongs to exactly one list
// at a time.
type Node[T comparable] struct {
	Data T

	prev, next *Node[T]
}

// Next returns the following node, or nil at the tail.
func (n *Node[T]) Next() *Node[T] { return n.next }

// Prev returns the preceding node, or nil at the head.
func (n *Node[T]) Prev() *Node[T] { return n.prev }

// List is a doubly linked list of payloads of type T.
// The zero value is an empty list ready for use.
type List[T comparable] struct {
	head, tail *Node[T]
}

// New creates an empty list.
func New[T comparable]() *List[T] {
	return &List[T]{}
}

// Head returns the first node, or nil if the list is empty.
func (l *List[T]) Head() *Node[T] { return l.head }

// Tail returns the last node, or nil if the list is empty.
func (l *List[T]) Tail() *Node[T] { return l.tail }

// Add appends a new node holding data at the end of the list and
// returns it.
func (l *List[T]) Add(data T) *Node[T] {
	n := &Node[T]{Data: data, prev: l.tail}
	if n.prev != nil {
		n.prev.next = n
	}
	if l.head == nil {
		l.head = n
	}
	l.tail = n
	return n
}

// InsertBefore creates a new node holding data and places it directly
// before at, which must be a member of this list. The new node is
// returned.
func (l *List[T]) InsertBefore(at *Node[T], data T) *Node[T] {
	n := &Node[T]{Data: data, next: at, prev: at.prev}
	if at.prev != nil {
		at.prev.next = n
	}
	at.prev = n
	if l.head == at {
		l.head = n
	}
	return n
}

// Find returns the first node whose payload equals data, or nil if no
// node matches. This is a linear scan; prefer keeping the node returned
// by Add when O(1) removal matters.
func (l *List[T]) Find(data T) *Node[T] {
	for n := l.head; n != nil; n = n.next {
		if n.Data == data {
			return n
		}
	}
	return nil
}

// Delete unlinks the node referenced through pnode and nils the
// caller's reference, so stale node pointers fail fast rather than
// silently corrupting the list. The payload is untouched.
func (l *List[T]) Delete(pnode **Node[T]) {
	n := *pnode
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if l.head == n {
		l.head = n.next
	}
	if l.tail == n {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	*pnode = nil
}

// DeleteData finds the first node holding data and deletes it. A miss
// is a no-op.
func (l *List[T]) DeleteData(data T) {
	if n := l.Find(data); n != nil {
		l.Delete(&n)
	}
}

// Empty deletes every node. The list remains valid for reuse; payloads
// are untouched.
func (l *List[T]) Empty() {
	for l.head != nil {
		n := l.head
		l.Delete(&n)
	}
}

// IterateForward calls fn for each node from head to tail. fn must not
// delete nodes; iterate manually for that (see the package example).
func (l *List[T]) IterateForward(fn func(n *Node[T])) {
	for n := l.head; n != nil; n = n.next {
		fn(n)
	}
}

// IterateBackward calls fn for each node from tail to head.
func (l *List[T]) IterateBackward(fn func(n *Node[T])) {
	for n := l.tail; n != nil; n = n.prev {
		fn(n)
	}
}

// Sort orders the list with a stable bubble sort, swapping payloads
// rather than relinking nodes. cmp reports whether a should sort after
// b. Registry lists are short; no need for anything cleverer.
func (l *List[T]) Sort(cmp func(a, b T) bool) {
	swapped := true
	for swapped {
		swapped = false
		for n := l.head; n != nil; n = n.next {
			m := n.next
			if m == nil {
				continue
			}
			if cmp(n.Data, m.Data) {
				n.Data, m.Data = m.Data, n.Data
				swapped = true
			}
		}
	}
}

// Count walks the list and returns the number of nodes.
func (l *List[T]) Count() int {
	c := 0
	for n := l.head; n != nil; n = n.next {
		c++
	}
	return c
}

// IsEmpty reports whether the list holds no nodes.
func (l *List[T]) IsEmpty() bool {
	return l.head == nil
}
