// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package list

// Link is an intrusive circular doubly linked list node.
//
// A Link is embedded in the record it links. The same type is used for the
// sentinel head of a list and for its elements: a head whose neighbours are
// itself is an empty list, and an element whose neighbours are itself is
// detached.
//
// The zero value is ready to use and behaves like a freshly initialized
// Link.
//
// Link is not thread-safe and requires the caller synchronize usage.
type Link struct {
	next *Link
	prev *Link
}

// Init self-links [l], making it an empty head or a detached element.
//
// Any list [l] was part of is not updated; use [Link.Remove] for that.
func (l *Link) Init() *Link {
	l.next = l
	l.prev = l
	return l
}

func (l *Link) lazyInit() {
	if l.next == nil {
		l.Init()
	}
}

// Empty returns true if [l] has no neighbours. For a head this means the list
// is empty, for an element it means the element is detached.
func (l *Link) Empty() bool {
	return l.next == nil || l.next == l
}

// Next returns the node after [l]. On a detached node this is [l] itself.
func (l *Link) Next() *Link {
	l.lazyInit()
	return l.next
}

// Prev returns the node before [l]. On a detached node this is [l] itself.
func (l *Link) Prev() *Link {
	l.lazyInit()
	return l.prev
}

// Head returns the first element of the list headed by [l] or nil if it is
// empty.
func (l *Link) Head() *Link {
	if l.Empty() {
		return nil
	}
	return l.next
}

// Tail returns the last element of the list headed by [l] or nil if it is
// empty.
func (l *Link) Tail() *Link {
	if l.Empty() {
		return nil
	}
	return l.prev
}

// AddAfter links [x] immediately after [l].
//
// [x] must not be linked into another list.
func (l *Link) AddAfter(x *Link) {
	l.lazyInit()
	insert(x, l, l.next)
}

// AddBefore links [x] immediately before [l].
//
// [x] must not be linked into another list.
func (l *Link) AddBefore(x *Link) {
	l.lazyInit()
	insert(x, l.prev, l)
}

// Prepend adds [x] at the front of the list headed by [l].
func (l *Link) Prepend(x *Link) {
	l.AddAfter(x)
}

// Append adds [x] at the back of the list headed by [l].
func (l *Link) Append(x *Link) {
	l.AddBefore(x)
}

func insert(x, prev, next *Link) {
	next.prev = x
	x.next = next
	x.prev = prev
	prev.next = x
}

// Remove unlinks [l] from its list and leaves it detached. Removing a detached
// node is a no-op. Removing a head is undefined.
func (l *Link) Remove() {
	if l.Empty() {
		l.Init()
		return
	}
	l.prev.next = l.next
	l.next.prev = l.prev
	l.Init()
}

// Len counts the elements of the list headed by [l]. It is linear in the
// length of the list.
func (l *Link) Len() int {
	if l.Empty() {
		return 0
	}
	n := 0
	for pos := l.next; pos != l; pos = pos.next {
		n++
	}
	return n
}

// Foreach calls [f] on every element of the list headed by [l], front to
// back, until [f] returns false.
//
// The successor is read before [f] is called, so [f] may remove the node it
// is given. Any other mutation of the list during iteration is undefined.
func (l *Link) Foreach(f func(*Link) bool) {
	if l.Empty() {
		return
	}
	for pos, next := l.next, l.next.next; pos != l; pos, next = next, next.next {
		if !f(pos) {
			return
		}
	}
}

// Destroy detaches every element of the list headed by [l] and leaves [l]
// empty. The records containing the elements are not otherwise touched.
func (l *Link) Destroy() {
	l.Foreach(func(pos *Link) bool {
		pos.Init()
		return true
	})
	l.Init()
}
