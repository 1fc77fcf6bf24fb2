// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package buffer

import "github.com/ava-labs/octonaut/list"

// Segment is a fixed capacity region of bytes that is one link in the FIFO
// chain of a [Buffer].
//
// Valid bytes are data[start : start+size]. Bytes before [start] have been
// consumed, bytes after start+size are free for writing.
type Segment struct {
	link list.Link

	start int
	size  int
	data  []byte

	// pool is set when the segment belongs to a [PoolAllocator] slab
	pool *PoolAllocator
	// pooled is true while the segment sits on its pool's free list
	pooled bool
}

var segmentOffset = list.Offset(func(s *Segment) *list.Link { return &s.link })

func segmentOf(l *list.Link) *Segment {
	if l == nil {
		return nil
	}
	return list.ContainerOf[Segment](l, segmentOffset)
}

// NewSegment wraps [data] in an empty segment. The capacity of the segment
// is len([data]).
func NewSegment(data []byte) *Segment {
	return &Segment{data: data}
}

// Cap returns the number of bytes the segment can hold.
func (s *Segment) Cap() int {
	return len(s.data)
}

// Len returns the number of valid bytes.
func (s *Segment) Len() int {
	return s.size
}

// Free returns the number of bytes that can still be written.
func (s *Segment) Free() int {
	return len(s.data) - (s.start + s.size)
}

// Bytes returns the valid bytes. The slice aliases the segment.
func (s *Segment) Bytes() []byte {
	return s.data[s.start : s.start+s.size]
}

func (s *Segment) writable() []byte {
	return s.data[s.start+s.size:]
}

// Reset empties the segment and detaches it.
func (s *Segment) Reset() {
	s.link.Remove()
	s.start = 0
	s.size = 0
}
