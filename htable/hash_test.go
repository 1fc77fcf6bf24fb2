// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package htable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashFuncs(t *testing.T) {
	for _, name := range []string{XXH3Name, XXHashName, XXHash3Name} {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			fn, err := HashFunc(name)
			require.NoError(err)

			key := []byte("content-length")
			require.Equal(fn(key, 1), fn(key, 1))
			require.NotEqual(fn(key, 1), fn(key, 2))
			require.NotEqual(fn(key, 1), fn([]byte("content-type"), 1))

			// The low bits spread keys over the buckets
			buckets := map[uint32]int{}
			for i := 0; i < 1024; i++ {
				buckets[fn([]byte(fmt.Sprintf("header-%d", i)), 0)&15]++
			}
			require.Len(buckets, 16)
			for _, n := range buckets {
				require.Greater(n, 16)
			}
		})
	}
}

func TestHashFuncUnknown(t *testing.T) {
	_, err := HashFunc("crc32")
	require.ErrorIs(t, err, ErrUnknownHashFunc)
}
