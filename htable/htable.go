// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package htable

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ava-labs/octonaut/list"
)

// MaxLog2Size bounds the number of buckets to 1 << (MaxLog2Size - 1).
const MaxLog2Size = 32

var (
	ErrInvalidSize = fmt.Errorf("log2 size must be less than %d", MaxLog2Size)
	ErrNoHashFunc  = errors.New("hash function is required")
	ErrDestroyed   = errors.New("table used after destroy")
)

// Func maps a key to a 32-bit digest. It must be deterministic; the low bits
// of the digest select a bucket so they must be well distributed.
type Func func(key []byte, seed uint32) uint32

// Entry is embedded by records stored in a [Table].
//
// The table does not copy keys: the bytes passed to [Entry.SetKey] are
// borrowed and must not change while the entry is resident.
type Entry struct {
	link list.Link
	key  []byte
}

func (e *Entry) SetKey(key []byte) {
	e.key = key
}

func (e *Entry) Key() []byte {
	return e.key
}

// Resident returns true if [e] is linked into a table.
func (e *Entry) Resident() bool {
	return !e.link.Empty()
}

var entryOffset = list.Offset(func(e *Entry) *list.Link { return &e.link })

func entryOf(l *list.Link) *Entry {
	return list.ContainerOf[Entry](l, entryOffset)
}

// Table is an intrusive, fixed size, chained hash table. Keys are unique,
// this is not a multimap.
//
// The number of buckets is a power of two so a bucket is selected by masking
// the digest rather than by a modulus. The table is never resized; choosing
// a size that bounds the expected chain length is up to the caller.
//
// Table is not thread-safe and requires the caller synchronize usage.
type Table struct {
	fn   Func
	seed uint32
	mask uint32
	bins []list.Link
}

// New returns a table with 1 << [log2Size] buckets.
func New(fn Func, seed uint32, log2Size uint) (*Table, error) {
	t := &Table{}
	if err := t.Init(fn, seed, log2Size); err != nil {
		return nil, err
	}
	return t, nil
}

// Init allocates 1 << [log2Size] empty buckets. Any entries previously in
// [t] are forgotten, not detached.
func (t *Table) Init(fn Func, seed uint32, log2Size uint) error {
	if log2Size >= MaxLog2Size {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, log2Size)
	}
	if fn == nil {
		return ErrNoHashFunc
	}
	n := uint32(1) << log2Size
	if !powerOfTwo(n) {
		return fmt.Errorf("%w: %d buckets", ErrInvalidSize, n)
	}
	t.fn = fn
	t.seed = seed
	t.mask = n - 1
	t.bins = make([]list.Link, n)
	for i := range t.bins {
		t.bins[i].Init()
	}
	return nil
}

// Destroy releases the buckets. Entries are not walked: callers that own
// resources through their entries must pop them first.
func (t *Table) Destroy() {
	t.fn = nil
	t.seed = 0
	t.mask = 0
	t.bins = nil
}

func powerOfTwo(x uint32) bool {
	return x != 0 && x&(x-1) == 0
}

// live panics if [t] was destroyed or never initialized.
func (t *Table) live() {
	if t.bins == nil {
		panic(ErrDestroyed)
	}
}

// Buckets returns the number of buckets.
func (t *Table) Buckets() int {
	t.live()
	return len(t.bins)
}

// BucketOf returns the index of the bucket holding keys with [digest].
func (t *Table) BucketOf(digest uint32) int {
	t.live()
	return int(digest & t.mask)
}

func (t *Table) bin(key []byte) *list.Link {
	t.live()
	return &t.bins[t.fn(key, t.seed)&t.mask]
}

func find(bin *list.Link, key []byte) *Entry {
	var found *Entry
	bin.Foreach(func(pos *list.Link) bool {
		e := entryOf(pos)
		if bytes.Equal(e.key, key) {
			found = e
			return false
		}
		return true
	})
	return found
}

func (t *Table) Has(key []byte) bool {
	return find(t.bin(key), key) != nil
}

func (t *Table) Get(key []byte) (*Entry, bool) {
	e := find(t.bin(key), key)
	return e, e != nil
}

// Put links [e] at the head of its bucket. It returns false, leaving the
// table unchanged, if an entry with an equal key is already resident.
//
// [e] must not be resident in any table.
func (t *Table) Put(e *Entry) bool {
	bin := t.bin(e.key)
	if find(bin, e.key) != nil {
		return false
	}
	bin.Prepend(&e.link)
	return true
}

// Add sets the key of [e] and puts it.
func (t *Table) Add(e *Entry, key []byte) bool {
	e.SetKey(key)
	return t.Put(e)
}

// Pop unlinks and returns the entry with [key]. The entry remains owned by
// the caller.
func (t *Table) Pop(key []byte) (*Entry, bool) {
	e := find(t.bin(key), key)
	if e == nil {
		return nil, false
	}
	e.link.Remove()
	return e, true
}

// Delete unlinks [e], which must be resident in [t] or detached.
func (t *Table) Delete(e *Entry) {
	t.live()
	e.link.Remove()
}

// Len returns the number of resident entries. It walks every bucket.
func (t *Table) Len() int {
	t.live()
	size := 0
	for i := range t.bins {
		size += t.bins[i].Len()
	}
	return size
}

// Foreach calls [f] on every entry until [f] returns false. The order is
// unspecified. [f] may delete the entry it is given.
func (t *Table) Foreach(f func(*Entry) bool) {
	t.live()
	for i := range t.bins {
		stop := false
		t.bins[i].Foreach(func(pos *list.Link) bool {
			if !f(entryOf(pos)) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return
		}
	}
}
