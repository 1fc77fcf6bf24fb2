// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package htable

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/octonaut/list"
)

// identity uses up to the first four key bytes as the digest.
func identity(key []byte, _ uint32) uint32 {
	var b [4]byte
	copy(b[:], key)
	return binary.LittleEndian.Uint32(b[:])
}

// fixed returns a hash function that maps each key to a chosen digest.
func fixed(digests map[string]uint32) Func {
	return func(key []byte, _ uint32) uint32 {
		return digests[string(key)]
	}
}

type testRecord struct {
	value int
	entry Entry
}

var testRecordOffset = list.Offset(func(r *testRecord) *Entry { return &r.entry })

func recordOf(e *Entry) *testRecord {
	return list.ContainerOf[testRecord](e, testRecordOffset)
}

// requireConsistent checks every resident entry sits in the bucket its
// digest selects and that Len matches the bucket chains.
func requireConsistent(t *testing.T, table *Table) {
	require := require.New(t)
	total := 0
	for i := range table.bins {
		table.bins[i].Foreach(func(pos *list.Link) bool {
			e := entryOf(pos)
			require.Equal(i, table.BucketOf(table.fn(e.key, table.seed)))
			total++
			return true
		})
	}
	require.Equal(total, table.Len())
}

func TestTablePutGetPop(t *testing.T) {
	require := require.New(t)

	table, err := New(identity, 0, 4)
	require.NoError(err)
	require.Equal(16, table.Buckets())

	first := &testRecord{value: 1}
	second := &testRecord{value: 2}
	require.True(table.Add(&first.entry, []byte("ab")))
	require.False(table.Add(&second.entry, []byte("ab")))
	require.False(second.entry.Resident())
	require.Equal(1, table.Len())

	e, ok := table.Get([]byte("ab"))
	require.True(ok)
	require.Same(&first.entry, e)
	require.Equal(1, recordOf(e).value)
	require.True(table.Has([]byte("ab")))

	e, ok = table.Pop([]byte("ab"))
	require.True(ok)
	require.Same(&first.entry, e)
	require.False(e.Resident())

	e, ok = table.Get([]byte("ab"))
	require.False(ok)
	require.Nil(e)
	require.False(table.Has([]byte("ab")))
	require.Zero(table.Len())

	e, ok = table.Pop([]byte("ab"))
	require.False(ok)
	require.Nil(e)
}

func TestTableKeyLength(t *testing.T) {
	require := require.New(t)

	// Every key lands in the same bucket so only the comparison separates them
	table, err := New(func([]byte, uint32) uint32 { return 0 }, 0, 2)
	require.NoError(err)

	var ab, abc, empty Entry
	require.True(table.Add(&ab, []byte("ab")))
	require.True(table.Add(&abc, []byte("abc")))
	require.True(table.Add(&empty, []byte{}))
	require.Equal(3, table.Len())

	e, ok := table.Get([]byte("ab"))
	require.True(ok)
	require.Same(&ab, e)

	e, ok = table.Get([]byte("abc"))
	require.True(ok)
	require.Same(&abc, e)

	e, ok = table.Get(nil)
	require.True(ok)
	require.Same(&empty, e)

	require.False(table.Has([]byte("a")))
	requireConsistent(t, table)
}

func TestTableCollisionChain(t *testing.T) {
	require := require.New(t)

	fn := fixed(map[string]uint32{
		"low":  0x00000000,
		"high": 0x80000000,
	})
	table, err := New(fn, 0, 1)
	require.NoError(err)
	require.Equal(table.BucketOf(0x00000000), table.BucketOf(0x80000000))

	low := &testRecord{value: 1}
	high := &testRecord{value: 2}
	require.True(table.Add(&low.entry, []byte("low")))
	require.True(table.Add(&high.entry, []byte("high")))
	require.Equal(2, table.bins[0].Len())
	require.True(table.bins[1].Empty())

	e, ok := table.Get([]byte("low"))
	require.True(ok)
	require.Equal(1, recordOf(e).value)
	e, ok = table.Get([]byte("high"))
	require.True(ok)
	require.Equal(2, recordOf(e).value)

	_, ok = table.Pop([]byte("low"))
	require.True(ok)
	e, ok = table.Get([]byte("high"))
	require.True(ok)
	require.Equal(2, recordOf(e).value)
	requireConsistent(t, table)
}

func TestTableSingleBucket(t *testing.T) {
	require := require.New(t)

	table, err := New(XXH3, 7, 0)
	require.NoError(err)
	require.Equal(1, table.Buckets())

	records := make([]testRecord, 10)
	for i := range records {
		records[i].value = i
		require.True(table.Add(&records[i].entry, []byte(fmt.Sprintf("key-%d", i))))
	}
	require.Equal(10, table.Len())
	require.Equal(10, table.bins[0].Len())
	for i := range records {
		e, ok := table.Get([]byte(fmt.Sprintf("key-%d", i)))
		require.True(ok)
		require.Equal(i, recordOf(e).value)
	}
}

func TestTableInvalidSize(t *testing.T) {
	require := require.New(t)

	_, err := New(XXH3, 0, 32)
	require.ErrorIs(err, ErrInvalidSize)

	_, err = New(XXH3, 0, 64)
	require.ErrorIs(err, ErrInvalidSize)

	_, err = New(nil, 0, 4)
	require.ErrorIs(err, ErrNoHashFunc)

	table, err := New(XXH3, 0, 16)
	require.NoError(err)
	require.Equal(1<<16, table.Buckets())
	require.Equal(0xffff, table.BucketOf(0xffffffff))
}

func TestTableDestroy(t *testing.T) {
	require := require.New(t)

	var table Table
	require.NoError(table.Init(XXHash, 1, 3))
	var e Entry
	require.True(table.Add(&e, []byte("key")))
	_, ok := table.Pop([]byte("key"))
	require.True(ok)

	var resident Entry
	require.True(table.Add(&resident, []byte("resident")))

	table.Destroy()
	for name, use := range map[string]func(){
		"has":      func() { table.Has([]byte("key")) },
		"get":      func() { table.Get([]byte("key")) },
		"put":      func() { table.Put(&e) },
		"pop":      func() { table.Pop([]byte("resident")) },
		"delete":   func() { table.Delete(&resident) },
		"len":      func() { table.Len() },
		"foreach":  func() { table.Foreach(func(*Entry) bool { return true }) },
		"buckets":  func() { table.Buckets() },
		"bucketOf": func() { table.BucketOf(7) },
	} {
		require.PanicsWithValue(ErrDestroyed, use, name)
	}

	// init; destroy; init behaves like a fresh table
	require.NoError(table.Init(XXHash, 1, 3))
	require.Equal(8, table.Buckets())
	require.Zero(table.Len())
	require.False(table.Has([]byte("key")))
	require.True(table.Add(&e, []byte("key")))
	require.Equal(1, table.Len())
}

func TestTablePutPopRoundTrip(t *testing.T) {
	require := require.New(t)

	table, err := New(XXHash3, 42, 6)
	require.NoError(err)

	records := make([]testRecord, 500)
	for i := range records {
		records[i].value = i
		require.True(table.Add(&records[i].entry, []byte(fmt.Sprintf("record/%03d", i))))
	}
	require.Equal(len(records), table.Len())
	requireConsistent(t, table)

	for i := range records {
		key := records[i].entry.Key()
		e, ok := table.Pop(key)
		require.True(ok)
		require.Same(&records[i].entry, e)
		require.True(table.Put(e))
	}
	require.Equal(len(records), table.Len())
	requireConsistent(t, table)
}

func TestTableForeachDelete(t *testing.T) {
	require := require.New(t)

	table, err := New(XXH3, 0, 3)
	require.NoError(err)

	records := make([]testRecord, 32)
	for i := range records {
		records[i].value = i
		require.True(table.Add(&records[i].entry, []byte(fmt.Sprintf("%d", i))))
	}

	seen := map[int]bool{}
	table.Foreach(func(e *Entry) bool {
		r := recordOf(e)
		seen[r.value] = true
		if r.value%2 == 1 {
			table.Delete(e)
		}
		return true
	})
	require.Len(seen, len(records))
	require.Equal(len(records)/2, table.Len())
	for i := range records {
		require.Equal(i%2 == 0, records[i].entry.Resident())
	}

	visited := 0
	table.Foreach(func(*Entry) bool {
		visited++
		return false
	})
	require.Equal(1, visited)
	requireConsistent(t, table)
}
