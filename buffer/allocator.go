// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package buffer

import (
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/octonaut/list"
)

var (
	_ Allocator = HeapAllocator{}
	_ Allocator = (*PoolAllocator)(nil)
)

//go:generate go run go.uber.org/mock/mockgen -package=${GOPACKAGE} -destination=mock_allocator.go . Allocator

// Allocator hands out the segments a [Buffer] chains together.
//
// The capacity of a returned segment may differ from the requested one. A
// [Buffer] always releases a segment to the allocator it acquired it from.
type Allocator interface {
	// Acquire returns an empty, detached segment with room for at least
	// [minCapacity] bytes.
	Acquire(minCapacity int) (*Segment, error)

	// Release takes back a segment that is no longer linked into a buffer.
	Release(*Segment)
}

// HeapAllocator allocates every segment on the heap and leaves released
// segments to the garbage collector.
type HeapAllocator struct{}

func (HeapAllocator) Acquire(minCapacity int) (*Segment, error) {
	return NewSegment(make([]byte, max(minCapacity, 1))), nil
}

func (HeapAllocator) Release(*Segment) {}

// PoolAllocator is a fixed free list of equally sized segments carved out of
// a single slab.
//
// Requests larger than the pool's segment size are served from the heap.
// When the free list is empty, segments come from the heap if fallback is
// enabled, otherwise [ErrPoolExhausted] is returned.
//
// PoolAllocator is not thread-safe and requires the caller synchronize usage.
type PoolAllocator struct {
	log     logging.Logger
	metrics *metrics

	segmentSize int
	fallback    bool

	slab     []byte
	segments []Segment
	free     list.Link
	nfree    int
}

// NewPoolAllocator pre-allocates [count] segments of [segmentSize] bytes.
// Metrics are registered with [r] if it is not nil. A nil [log] discards
// log output.
func NewPoolAllocator(
	log logging.Logger,
	r prometheus.Registerer,
	count int,
	segmentSize int,
	fallback bool,
) (*PoolAllocator, error) {
	if count < 1 {
		return nil, ErrInvalidPoolSize
	}
	if segmentSize < 1 {
		return nil, ErrInvalidSegSize
	}
	if log == nil {
		log = logging.NoLog{}
	}
	m, err := newMetrics("buffer_pool", r)
	if err != nil {
		return nil, err
	}
	p := &PoolAllocator{
		log:         log,
		metrics:     m,
		segmentSize: segmentSize,
		fallback:    fallback,
		slab:        make([]byte, count*segmentSize),
		segments:    make([]Segment, count),
	}
	p.free.Init()
	for i := range p.segments {
		s := &p.segments[i]
		lo, hi := i*segmentSize, (i+1)*segmentSize
		s.data = p.slab[lo:hi:hi]
		s.pool = p
		s.pooled = true
		p.free.Append(&s.link)
	}
	p.nfree = count
	return p, nil
}

// SegmentSize returns the capacity of pooled segments.
func (p *PoolAllocator) SegmentSize() int {
	return p.segmentSize
}

// Available returns the number of segments on the free list.
func (p *PoolAllocator) Available() int {
	return p.nfree
}

// Size returns the number of segments owned by the pool.
func (p *PoolAllocator) Size() int {
	return len(p.segments)
}

func (p *PoolAllocator) Acquire(minCapacity int) (*Segment, error) {
	if minCapacity > p.segmentSize {
		p.log.Debug("segment larger than pool segments",
			zap.Int("requested", minCapacity),
			zap.Int("segmentSize", p.segmentSize),
		)
		return p.heapSegment(minCapacity), nil
	}
	head := p.free.Head()
	if head == nil {
		p.metrics.exhausted.Inc()
		if !p.fallback {
			p.log.Warn("segment pool exhausted",
				zap.Int("segments", len(p.segments)),
				zap.Int("segmentSize", p.segmentSize),
			)
			return nil, ErrPoolExhausted
		}
		p.log.Debug("segment pool exhausted, falling back to heap",
			zap.Int("segments", len(p.segments)),
		)
		return p.heapSegment(p.segmentSize), nil
	}
	head.Remove()
	p.nfree--
	p.metrics.acquire()
	s := segmentOf(head)
	s.pooled = false
	return s, nil
}

func (p *PoolAllocator) heapSegment(capacity int) *Segment {
	p.metrics.heap.Inc()
	p.metrics.acquire()
	return NewSegment(make([]byte, capacity))
}

// Release puts pooled segments back on the free list. Heap segments are
// dropped. Releasing a segment that is already on the free list is a no-op.
func (p *PoolAllocator) Release(s *Segment) {
	if s.pooled {
		p.log.Warn("segment released twice",
			zap.Int("segmentSize", p.segmentSize),
		)
		return
	}
	p.metrics.release()
	s.Reset()
	if s.pool != p {
		return
	}
	s.pooled = true
	p.free.Prepend(&s.link)
	p.nfree++
}
