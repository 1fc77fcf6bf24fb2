// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package list

import "unsafe"

// List is a typed view over an intrusive list of [T] records that embed a
// [Link]. It offers similar functionality as container/list without
// allocating a wrapper per element.
//
// The zero value is not usable, create one with [New].
type List[T any] struct {
	root   Link
	offset uintptr
}

// New returns an empty list of [T] linked through the field selected by
// [link].
func New[T any](link func(*T) *Link) *List[T] {
	l := &List[T]{offset: Offset(link)}
	l.root.Init()
	return l
}

func (l *List[T]) link(v *T) *Link {
	return (*Link)(unsafe.Add(unsafe.Pointer(v), l.offset))
}

func (l *List[T]) value(n *Link) *T {
	if n == nil || n == &l.root {
		return nil
	}
	return ContainerOf[T](n, l.offset)
}

func (l *List[T]) Empty() bool {
	return l.root.Empty()
}

func (l *List[T]) Len() int {
	return l.root.Len()
}

func (l *List[T]) Front() *T {
	return l.value(l.root.Head())
}

func (l *List[T]) Back() *T {
	return l.value(l.root.Tail())
}

// Next returns the record after [v] or nil if [v] is the last one.
func (l *List[T]) Next(v *T) *T {
	return l.value(l.link(v).Next())
}

// Prev returns the record before [v] or nil if [v] is the first one.
func (l *List[T]) Prev(v *T) *T {
	return l.value(l.link(v).Prev())
}

func (l *List[T]) PushFront(v *T) {
	l.root.Prepend(l.link(v))
}

func (l *List[T]) PushBack(v *T) {
	l.root.Append(l.link(v))
}

// Remove unlinks [v], which must belong to [l] or be detached.
func (l *List[T]) Remove(v *T) {
	l.link(v).Remove()
}

// Each calls [f] on every record front to back until [f] returns false. [f]
// may remove the record it is given.
func (l *List[T]) Each(f func(*T) bool) {
	l.root.Foreach(func(n *Link) bool {
		return f(ContainerOf[T](n, l.offset))
	})
}

// Clear detaches every record.
func (l *List[T]) Clear() {
	l.root.Destroy()
}
