// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/ava-labs/octonaut/buffer"
	"github.com/ava-labs/octonaut/utils"
)

var (
	numBytes  int
	chunkSize int

	bufferCmd = &cobra.Command{
		Use:   "buffer",
		Short: "Stream random bytes through a buffer and verify them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if numBytes <= 0 || chunkSize <= 0 {
				return fmt.Errorf("%w: bytes %d chunk %d", ErrInvalidArgument, numBytes, chunkSize)
			}
			return runParallel(cmd.Context(), runBuffer)
		},
	}
)

func init() {
	bufferCmd.Flags().IntVar(&numBytes, "bytes", 16<<20, "number of bytes to stream")
	bufferCmd.Flags().IntVar(&chunkSize, "chunk", 1_500, "largest single write or read")
}

// runBuffer interleaves writes and reads of random sizes so the buffer
// keeps acquiring and releasing segments.
func runBuffer(ctx context.Context, worker int) error {
	alloc, err := newAllocator(worker)
	if err != nil {
		return err
	}
	b := buffer.New(alloc, cfg.SegmentSize)
	defer b.Destroy()

	r := rand.New(rand.NewSource(uint64(worker)))
	src := make([]byte, numBytes)
	_, _ = r.Read(src)
	dst := make([]byte, 0, numBytes)
	chunk := make([]byte, chunkSize)

	var (
		written int
		peak    int
		start   = time.Now()
	)
	for len(dst) < numBytes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if written < numBytes {
			n := min(1+r.Intn(chunkSize), numBytes-written)
			w, err := b.Write(src[written : written+n])
			written += w
			if err != nil {
				return fmt.Errorf("worker %d after %d bytes: %w", worker, written, err)
			}
			peak = max(peak, b.Segments())
		}
		// Read less than was written on average so the queue grows. The
		// only error is io.EOF on an empty buffer.
		n, _ := b.Read(chunk[:1+r.Intn(chunkSize*3/4+1)])
		dst = append(dst, chunk[:n]...)
	}
	elapsed := time.Since(start)

	if !bytes.Equal(src, dst) {
		return fmt.Errorf("%w: worker %d", ErrMismatch, worker)
	}
	log.Debug("buffer run finished",
		zap.Int("worker", worker),
		zap.Int("bytes", numBytes),
		zap.Int("peakSegments", peak),
		zap.Duration("elapsed", elapsed),
	)
	utils.Outf(
		"{{green}}worker %d:{{/}} streamed %s peak %d segments {{yellow}}%s{{/}}\n",
		worker,
		utils.FormatBytes(numBytes),
		peak,
		utils.Throughput(numBytes, elapsed),
	)
	return nil
}
