// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package buffer

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	acquired  prometheus.Counter
	released  prometheus.Counter
	inUse     prometheus.Gauge
	heap      prometheus.Counter
	exhausted prometheus.Counter
}

// newMetrics registers the allocator metrics with [r] under [namespace]. A
// nil [r] gets a private registry.
func newMetrics(namespace string, r prometheus.Registerer) (*metrics, error) {
	if r == nil {
		r = prometheus.NewRegistry()
	}
	m := &metrics{
		acquired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_acquired",
			Help:      "number of segments handed out",
		}),
		released: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_released",
			Help:      "number of segments given back",
		}),
		inUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "segments_in_use",
			Help:      "number of segments currently held by buffers",
		}),
		heap: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heap_segments",
			Help:      "number of segments allocated outside of the pool",
		}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_exhausted",
			Help:      "number of acquisitions that found the pool empty",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.acquired),
		r.Register(m.released),
		r.Register(m.inUse),
		r.Register(m.heap),
		r.Register(m.exhausted),
	)
	return m, errs.Err
}

func (m *metrics) acquire() {
	m.acquired.Inc()
	m.inUse.Inc()
}

func (m *metrics) release() {
	m.released.Inc()
	m.inUse.Dec()
}
