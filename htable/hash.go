// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package htable

import (
	"errors"
	"fmt"

	"github.com/bytedance/gopkg/util/xxhash3"
	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

var (
	_ Func = XXH3
	_ Func = XXHash
	_ Func = XXHash3

	ErrUnknownHashFunc = errors.New("unknown hash function")
)

// Names accepted by [HashFunc].
const (
	XXH3Name    = "xxh3"
	XXHashName  = "xxhash"
	XXHash3Name = "xxhash3"
)

// XXH3 is a seeded 64-bit xxh3 folded to its low 32 bits.
func XXH3(key []byte, seed uint32) uint32 {
	return uint32(xxh3.HashSeed(key, uint64(seed)))
}

// XXHash is a seeded 64-bit xxhash folded to its low 32 bits.
func XXHash(key []byte, seed uint32) uint32 {
	d := xxhash.NewWithSeed(uint64(seed))
	_, _ = d.Write(key)
	return uint32(d.Sum64())
}

// XXHash3 is the unseeded xxhash3 from gopkg with [seed] mixed into the
// digest. Keys hash identically across tables that share a seed.
func XXHash3(key []byte, seed uint32) uint32 {
	return uint32(xxhash3.Hash(key)) ^ mix(seed)
}

// mix is the murmur3 finalizer.
func mix(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return x
}

// HashFunc returns the hash function registered under [name].
func HashFunc(name string) (Func, error) {
	switch name {
	case XXH3Name:
		return XXH3, nil
	case XXHashName:
		return XXHash, nil
	case XXHash3Name:
		return XXHash3, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHashFunc, name)
	}
}
