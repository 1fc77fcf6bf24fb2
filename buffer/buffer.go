// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package buffer

import (
	"errors"
	"fmt"
	"io"

	"github.com/ava-labs/avalanchego/utils/units"

	"github.com/ava-labs/octonaut/list"
)

// DefaultSegmentSize is the capacity requested for new segments when none is
// configured.
const DefaultSegmentSize = 4 * units.KiB

var (
	_ io.Reader     = (*Buffer)(nil)
	_ io.Writer     = (*Buffer)(nil)
	_ io.WriterTo   = (*Buffer)(nil)
	_ io.ReaderFrom = (*Buffer)(nil)
)

// Buffer is a FIFO queue of bytes stored in a chain of segments. Writes
// append to the tail segment, acquiring a new one when it is full. Reads
// consume from the head segment and release it once it is empty.
//
// The zero value is an empty buffer that allocates [DefaultSegmentSize]
// segments on the heap. A Buffer must not be copied after first use.
//
// Buffer is not thread-safe and requires the caller synchronize usage.
type Buffer struct {
	segments    list.Link
	size        int
	segmentSize int
	alloc       Allocator
}

// New returns an empty buffer. See [Buffer.Init].
func New(alloc Allocator, segmentSize int) *Buffer {
	return new(Buffer).Init(alloc, segmentSize)
}

// Init empties [b] and sets where its segments come from. A nil [alloc]
// selects [HeapAllocator] and a non-positive [segmentSize] selects
// [DefaultSegmentSize].
//
// Segments held by [b] are forgotten, call [Buffer.Destroy] first to release
// them.
func (b *Buffer) Init(alloc Allocator, segmentSize int) *Buffer {
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	if segmentSize <= 0 {
		segmentSize = DefaultSegmentSize
	}
	b.segments.Init()
	b.size = 0
	b.segmentSize = segmentSize
	b.alloc = alloc
	return b
}

func (b *Buffer) lazyInit() {
	if b.alloc == nil {
		b.Init(nil, b.segmentSize)
	}
}

// Destroy releases every segment to the allocator and empties [b]. The
// buffer may be written again afterwards.
func (b *Buffer) Destroy() {
	if b.alloc == nil {
		return
	}
	b.segments.Foreach(func(l *list.Link) bool {
		l.Remove()
		b.alloc.Release(segmentOf(l))
		return true
	})
	b.size = 0
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return b.size
}

// Segments returns the number of segments in the chain.
func (b *Buffer) Segments() int {
	return b.segments.Len()
}

func (b *Buffer) head() *Segment {
	return segmentOf(b.segments.Head())
}

func (b *Buffer) tail() *Segment {
	return segmentOf(b.segments.Tail())
}

// writableTail returns the tail segment, acquiring a new one if the current
// tail is full.
func (b *Buffer) writableTail() (*Segment, error) {
	if tail := b.tail(); tail != nil && tail.Free() > 0 {
		return tail, nil
	}
	s, err := b.alloc.Acquire(b.segmentSize)
	if err != nil {
		if !errors.Is(err, ErrOutOfResources) {
			err = fmt.Errorf("%w: %w", ErrOutOfResources, err)
		}
		return nil, err
	}
	if s.Free() == 0 {
		b.alloc.Release(s)
		return nil, ErrNoFreeSpace
	}
	b.segments.Append(&s.link)
	return s, nil
}

// Write appends [p] to the buffer. If a segment cannot be acquired, the
// bytes already accepted stay buffered and their count is returned with an
// error wrapping [ErrOutOfResources].
func (b *Buffer) Write(p []byte) (int, error) {
	b.lazyInit()
	n := 0
	for n < len(p) {
		tail, err := b.writableTail()
		if err != nil {
			return n, err
		}
		c := copy(tail.writable(), p[n:])
		tail.size += c
		b.size += c
		n += c
	}
	return n, nil
}

// WriteString appends [s] to the buffer.
func (b *Buffer) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}

// consume removes up to [n] bytes from the head, copying them into [p] when
// it is not nil. Emptied segments are released.
func (b *Buffer) consume(p []byte, n int) int {
	done := 0
	for done < n {
		head := b.head()
		if head == nil {
			break
		}
		c := min(n-done, head.size)
		if p != nil {
			copy(p[done:done+c], head.data[head.start:head.start+c])
		}
		head.start += c
		head.size -= c
		b.size -= c
		done += c
		if head.size == 0 {
			head.link.Remove()
			b.alloc.Release(head)
		}
	}
	return done
}

// Read consumes up to len([p]) bytes from the front of the buffer. A short
// read leaves the buffer empty. Reading from an empty buffer returns 0 and
// [io.EOF].
func (b *Buffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.size == 0 {
		return 0, io.EOF
	}
	return b.consume(p, len(p)), nil
}

// Peek copies up to len([p]) bytes from the front of the buffer without
// consuming them.
func (b *Buffer) Peek(p []byte) int {
	n := 0
	b.segments.Foreach(func(l *list.Link) bool {
		n += copy(p[n:], segmentOf(l).Bytes())
		return n < len(p)
	})
	return n
}

// Drain discards up to [n] bytes from the front of the buffer and returns
// how many were discarded.
func (b *Buffer) Drain(n int) int {
	if n <= 0 {
		return 0
	}
	return b.consume(nil, n)
}

// Bytes returns a copy of the buffered bytes.
func (b *Buffer) Bytes() []byte {
	p := make([]byte, b.size)
	b.Peek(p)
	return p
}

// WriteTo writes the buffered bytes to [w] segment by segment, consuming
// what [w] accepted. It panics if [w] reports more bytes than it was given.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for {
		head := b.head()
		if head == nil {
			return total, nil
		}
		size := head.size
		if size == 0 {
			head.link.Remove()
			b.alloc.Release(head)
			continue
		}
		n, err := w.Write(head.Bytes())
		if n < 0 || n > size {
			panic(errInvalidWriteCount)
		}
		total += int64(b.consume(nil, n))
		if err != nil {
			return total, err
		}
		if n < size {
			return total, io.ErrShortWrite
		}
	}
}

// ReadFrom appends bytes read from [r] until [io.EOF]. Bytes are read
// directly into the tail segment.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	b.lazyInit()
	var total int64
	for {
		tail, err := b.writableTail()
		if err != nil {
			return total, err
		}
		n, err := r.Read(tail.writable())
		tail.size += n
		b.size += n
		total += int64(n)
		if err != nil {
			if tail.size == 0 {
				tail.link.Remove()
				b.alloc.Release(tail)
			}
			if errors.Is(err, io.EOF) {
				return total, nil
			}
			return total, err
		}
	}
}
