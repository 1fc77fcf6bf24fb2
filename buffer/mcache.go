// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package buffer

import (
	"github.com/bytedance/gopkg/lang/mcache"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

var _ Allocator = (*MCacheAllocator)(nil)

// MCacheAllocator backs segments with power of two size classes from
// gopkg's mcache. A segment gets the whole size class, so its capacity may
// exceed the requested one.
//
// The underlying cache is safe for concurrent use and the counters are
// updated atomically.
type MCacheAllocator struct {
	metrics *metrics

	// bytes of capacity handed out and not yet released
	outstanding atomic.Int64
}

// NewMCacheAllocator registers its metrics with [r] if it is not nil.
func NewMCacheAllocator(r prometheus.Registerer) (*MCacheAllocator, error) {
	m, err := newMetrics("buffer_mcache", r)
	if err != nil {
		return nil, err
	}
	return &MCacheAllocator{metrics: m}, nil
}

func (a *MCacheAllocator) Acquire(minCapacity int) (*Segment, error) {
	buf := mcache.Malloc(max(minCapacity, 1))
	a.metrics.acquire()
	a.outstanding.Add(int64(cap(buf)))
	return NewSegment(buf[:cap(buf)]), nil
}

// Outstanding returns the capacity of all segments not yet released.
func (a *MCacheAllocator) Outstanding() int64 {
	return a.outstanding.Load()
}

func (a *MCacheAllocator) Release(s *Segment) {
	a.metrics.release()
	a.outstanding.Sub(int64(len(s.data)))
	s.Reset()
	mcache.Free(s.data)
	s.data = nil
}
