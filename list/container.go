// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package list

import "unsafe"

// Offset returns the offset of the field selected by [field] within [T].
//
// [field] must return the address of a field of the record it is given, for
// example:
//
//	list.Offset(func(r *record) *list.Link { return &r.link })
//
// Offset panics if [field] points outside of [T].
func Offset[T any, F any](field func(*T) *F) uintptr {
	var probe T
	base := uintptr(unsafe.Pointer(&probe))
	addr := uintptr(unsafe.Pointer(field(&probe)))
	if addr < base || addr-base+unsafe.Sizeof(*new(F)) > unsafe.Sizeof(probe) {
		panic("list: field is not within record")
	}
	return addr - base
}

// ContainerOf returns the record of type [T] that embeds [field] at
// [offset]. The offset is usually obtained once with [Offset].
//
// [field] must actually be embedded in a [T] at [offset].
func ContainerOf[T any, F any](field *F, offset uintptr) *T {
	return (*T)(unsafe.Add(unsafe.Pointer(field), -int(offset)))
}
