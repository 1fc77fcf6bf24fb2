// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/octonaut/buffer"
)

// runParallel calls [f] once per worker, each on its own goroutine. The
// containers are not thread-safe so every worker must build its own.
func runParallel(ctx context.Context, f func(ctx context.Context, worker int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < parallel; i++ {
		i := i
		g.Go(func() error {
			return f(ctx, i)
		})
	}
	return g.Wait()
}

// newAllocator builds the configured allocator for [worker]. Its metrics are
// labeled with the worker index so workers can share the registry.
func newAllocator(worker int) (buffer.Allocator, error) {
	r := prometheus.WrapRegistererWith(prometheus.Labels{"worker": strconv.Itoa(worker)}, registry)
	return cfg.NewAllocator(log, r)
}
