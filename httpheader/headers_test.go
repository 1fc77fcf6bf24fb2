// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package httpheader

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/octonaut/buffer"
	"github.com/ava-labs/octonaut/htable"
)

func names(h *Headers) []string {
	var out []string
	h.Each(func(hdr *Header) bool {
		out = append(out, hdr.Name())
		return true
	})
	return out
}

func TestHeadersSetGet(t *testing.T) {
	require := require.New(t)

	h, err := NewHeaders(DefaultOptions())
	require.NoError(err)

	require.NoError(h.Set("Content-Type", "text/plain"))
	require.NoError(h.Set("Host", "example.com"))
	require.Equal(2, h.Len())

	for _, field := range []string{"content-type", "CONTENT-TYPE", "Content-Type"} {
		v, ok := h.Value(field)
		require.True(ok, field)
		require.Equal("text/plain", v)
	}

	hdr, ok := h.Get("host")
	require.True(ok)
	require.Equal("Host", hdr.Name())
	require.Equal([]byte("host"), hdr.Key())
	require.True(hdr.Resident())

	_, ok = h.Get("Accept")
	require.False(ok)
	_, ok = h.Value("Hos")
	require.False(ok)
}

func TestHeadersSetReplaces(t *testing.T) {
	require := require.New(t)

	h, err := NewHeaders(DefaultOptions())
	require.NoError(err)

	require.NoError(h.Set("Accept", "*/*"))
	require.NoError(h.Set("Host", "a"))
	require.NoError(h.Set("accept", "text/html"))
	require.Equal(2, h.Len())
	require.Equal([]string{"Accept", "Host"}, names(h))

	v, ok := h.Value("Accept")
	require.True(ok)
	require.Equal("text/html", v)
}

func TestHeadersAddCombines(t *testing.T) {
	require := require.New(t)

	h, err := NewHeaders(DefaultOptions())
	require.NoError(err)

	require.NoError(h.Add("Cache-Control", "no-cache"))
	require.NoError(h.Add("cache-control", "no-store"))
	require.NoError(h.Add("Cache-Control", "max-age=0"))
	require.Equal(1, h.Len())

	v, ok := h.Value("CACHE-CONTROL")
	require.True(ok)
	require.Equal("no-cache, no-store, max-age=0", v)
}

func TestHeadersDel(t *testing.T) {
	require := require.New(t)

	h, err := NewHeaders(DefaultOptions())
	require.NoError(err)

	require.NoError(h.Set("A", "1"))
	require.NoError(h.Set("B", "2"))
	require.NoError(h.Set("C", "3"))

	hdr, ok := h.Get("b")
	require.True(ok)
	require.True(h.Del("b"))
	require.False(hdr.Resident())
	require.Zero(hdr.Value.Len())
	require.False(h.Del("b"))

	require.Equal(2, h.Len())
	require.Equal([]string{"A", "C"}, names(h))
	_, ok = h.Get("B")
	require.False(ok)

	require.NoError(h.Set("B", "4"))
	require.Equal([]string{"A", "C", "B"}, names(h))
}

func TestHeadersInvalidField(t *testing.T) {
	tests := []struct {
		name  string
		field string
		err   error
	}{
		{
			name:  "empty",
			field: "",
			err:   ErrEmptyField,
		},
		{
			name:  "colon",
			field: "Host:",
			err:   ErrInvalidField,
		},
		{
			name:  "line break",
			field: "X-Evil\r\nHost",
			err:   ErrInvalidField,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			h, err := NewHeaders(DefaultOptions())
			require.NoError(err)
			require.ErrorIs(h.Set(tt.field, "v"), tt.err)
			require.ErrorIs(h.Add(tt.field, "v"), tt.err)
			require.Zero(h.Len())
		})
	}
}

func TestHeadersWriteTo(t *testing.T) {
	require := require.New(t)

	h, err := NewHeaders(Options{
		SegmentSize: 4,
		HashFunc:    htable.XXHash,
		HashSeed:    7,
		Log2Buckets: 1,
	})
	require.NoError(err)

	require.NoError(h.Set("Host", "example.com"))
	require.NoError(h.Set("User-Agent", "octobench"))
	require.NoError(h.Add("Accept", "text/html"))
	require.NoError(h.Add("Accept", "application/json"))

	var out bytes.Buffer
	n, err := h.WriteTo(&out)
	require.NoError(err)
	expected := "Host: example.com\r\n" +
		"User-Agent: octobench\r\n" +
		"Accept: text/html, application/json\r\n"
	require.Equal(expected, out.String())
	require.Equal(int64(len(expected)), n)

	// Writing does not consume
	out.Reset()
	_, err = h.WriteTo(&out)
	require.NoError(err)
	require.Equal(expected, out.String())
}

func TestHeadersPoolExhausted(t *testing.T) {
	require := require.New(t)

	pool, err := buffer.NewPoolAllocator(nil, nil, 3, 8, false)
	require.NoError(err)

	h, err := NewHeaders(Options{
		Allocator:   pool,
		SegmentSize: 8,
	})
	require.NoError(err)

	// One segment for the field and one for the value
	require.NoError(h.Set("Host", "example"))
	require.Equal(1, pool.Available())

	// The field fits in the last segment but the value does not
	err = h.Set("Accept", "*/*")
	require.ErrorIs(err, buffer.ErrOutOfResources)
	require.Equal(1, h.Len())
	require.Equal(1, pool.Available())
	_, ok := h.Get("Accept")
	require.False(ok)

	h.Destroy()
	require.Equal(3, pool.Available())
}

func TestHeaderDestroyReleases(t *testing.T) {
	require := require.New(t)

	pool, err := buffer.NewPoolAllocator(nil, nil, 2, 16, false)
	require.NoError(err)

	hdr := NewHeader(pool, 16)
	require.NoError(hdr.setField([]byte("Content-Length")))
	_, err = hdr.Value.WriteString("42")
	require.NoError(err)
	require.Zero(pool.Available())
	require.Equal([]byte("content-length"), hdr.Key())
	require.Equal("42", hdr.String())

	hdr.Destroy()
	require.Equal(2, pool.Available())
	require.Nil(hdr.Key())
}

func TestHeadersBuckets(t *testing.T) {
	require := require.New(t)

	h, err := NewHeaders(DefaultOptions())
	require.NoError(err)
	require.Equal(1<<DefaultLog2Buckets, h.table.Buckets())

	// A single bucket is a valid size, every field shares one chain
	single := DefaultOptions()
	single.Log2Buckets = 0
	h, err = NewHeaders(single)
	require.NoError(err)
	require.Equal(1, h.table.Buckets())

	require.NoError(h.Set("Host", "a"))
	require.NoError(h.Set("Accept", "b"))
	v, ok := h.Value("host")
	require.True(ok)
	require.Equal("a", v)

	_, err = NewHeaders(Options{Log2Buckets: htable.MaxLog2Size})
	require.ErrorIs(err, htable.ErrInvalidSize)
}

func TestHeadersAddExhausted(t *testing.T) {
	require := require.New(t)

	pool, err := buffer.NewPoolAllocator(nil, nil, 4, 8, false)
	require.NoError(err)

	opts := DefaultOptions()
	opts.Allocator = pool
	opts.SegmentSize = 8
	h, err := NewHeaders(opts)
	require.NoError(err)

	// The value leaves a single free byte and the pool ends up empty
	require.NoError(h.Set("Host", "abcdefg"))
	require.NoError(h.Set("X", "y"))
	require.Zero(pool.Available())

	// The separator overflows the value segment
	err = h.Add("host", "z")
	require.ErrorIs(err, buffer.ErrOutOfResources)
	_, ok := h.Get("Host")
	require.False(ok)
	require.Equal(1, h.Len())
	require.Equal(2, pool.Available())

	var out bytes.Buffer
	_, err = h.WriteTo(&out)
	require.NoError(err)
	require.Equal("X: y\r\n", out.String())
}
