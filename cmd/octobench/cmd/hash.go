// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/octonaut/htable"
	"github.com/ava-labs/octonaut/utils"
)

var (
	numKeys int

	hashCmd = &cobra.Command{
		Use:   "hash",
		Short: "Fill a hash table, report chain lengths and pop every key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if numKeys <= 0 {
				return fmt.Errorf("%w: keys %d", ErrInvalidArgument, numKeys)
			}
			return runParallel(cmd.Context(), runHash)
		},
	}
)

func init() {
	hashCmd.Flags().IntVar(&numKeys, "keys", 10_000, "number of keys to insert")
}

type keyRecord struct {
	htable.Entry
	id int
}

type chainStats struct {
	buckets int
	empty   int
	longest int
	mean    float64

	// chain length --> number of buckets
	histogram map[int]int
}

func (s chainStats) formatHistogram() string {
	lengths := maps.Keys(s.histogram)
	slices.Sort(lengths)
	parts := make([]string, len(lengths))
	for i, l := range lengths {
		parts[i] = fmt.Sprintf("%d:%d", l, s.histogram[l])
	}
	return strings.Join(parts, " ")
}

func collectStats(t *htable.Table, fn htable.Func, seed uint32, records []keyRecord) chainStats {
	chains := make([]int, t.Buckets())
	for i := range records {
		chains[t.BucketOf(fn(records[i].Key(), seed))]++
	}
	s := chainStats{
		buckets:   len(chains),
		histogram: make(map[int]int),
	}
	used := 0
	for _, n := range chains {
		s.histogram[n]++
		if n == 0 {
			s.empty++
			continue
		}
		used++
		s.longest = max(s.longest, n)
	}
	if used > 0 {
		s.mean = float64(len(records)) / float64(used)
	}
	return s
}

func runHash(ctx context.Context, worker int) error {
	fn, err := cfg.HashFunc()
	if err != nil {
		return err
	}
	t, err := htable.New(fn, cfg.HashSeed, cfg.HashBucketsLog2)
	if err != nil {
		return err
	}
	defer t.Destroy()

	start := time.Now()
	records := make([]keyRecord, numKeys)
	for i := range records {
		records[i].id = i
		if !t.Add(&records[i].Entry, []byte(fmt.Sprintf("worker-%d/key-%d", worker, i))) {
			return fmt.Errorf("%w: duplicate key %q", ErrLostEntries, records[i].Key())
		}
		if i%1_024 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	filled := time.Since(start)

	if size := t.Len(); size != numKeys {
		return fmt.Errorf("%w: %d of %d resident", ErrLostEntries, size, numKeys)
	}
	stats := collectStats(t, fn, cfg.HashSeed, records)

	start = time.Now()
	for i := range records {
		e, ok := t.Pop(records[i].Key())
		if !ok || e != &records[i].Entry {
			return fmt.Errorf("%w: key %q", ErrLostEntries, records[i].Key())
		}
	}
	popped := time.Since(start)
	if size := t.Len(); size != 0 {
		return fmt.Errorf("%w: %d left after popping", ErrLostEntries, size)
	}

	log.Debug("hash run finished",
		zap.Int("worker", worker),
		zap.Duration("fill", filled),
		zap.Duration("pop", popped),
		zap.String("chains", stats.formatHistogram()),
	)
	utils.Outf(
		"{{green}}worker %d:{{/}} %d keys in %d buckets (%d empty) longest chain {{yellow}}%d{{/}} mean %.2f fill %s pop %s\n",
		worker,
		numKeys,
		stats.buckets,
		stats.empty,
		stats.longest,
		stats.mean,
		filled,
		popped,
	)
	return nil
}
