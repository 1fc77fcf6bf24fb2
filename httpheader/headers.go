// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package httpheader

import (
	"bytes"
	"errors"
	"io"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"

	"github.com/ava-labs/octonaut/buffer"
	"github.com/ava-labs/octonaut/htable"
	"github.com/ava-labs/octonaut/list"
)

const (
	// DefaultLog2Buckets sizes the lookup table for a typical request.
	DefaultLog2Buckets = 5

	// DefaultSegmentSize is small since field names and values are short.
	DefaultSegmentSize = 64
)

var (
	ErrEmptyField   = errors.New("header field name is empty")
	ErrInvalidField = errors.New("header field name contains a separator")

	separator = []byte(": ")
	crlf      = []byte("\r\n")
	comma     = []byte(", ")
)

type Options struct {
	Log       logging.Logger
	Allocator buffer.Allocator

	// SegmentSize is the segment size of the field and value buffers
	SegmentSize int

	HashFunc htable.Func
	HashSeed uint32
	// Log2Buckets is used as given, 0 is a single bucket
	Log2Buckets uint
}

func DefaultOptions() Options {
	return Options{
		Log:         logging.NoLog{},
		SegmentSize: DefaultSegmentSize,
		HashFunc:    htable.XXH3,
		Log2Buckets: DefaultLog2Buckets,
	}
}

// Headers is an ordered set of header fields with case-insensitive lookup.
// Lookups go through a [htable.Table] keyed by the lower cased field name
// while iteration follows insertion order.
//
// Headers is not thread-safe and requires the caller synchronize usage.
type Headers struct {
	log         logging.Logger
	alloc       buffer.Allocator
	segmentSize int

	table htable.Table
	order *list.List[Header]
}

func NewHeaders(opts Options) (*Headers, error) {
	if opts.Log == nil {
		opts.Log = logging.NoLog{}
	}
	if opts.HashFunc == nil {
		opts.HashFunc = htable.XXH3
	}
	if opts.SegmentSize <= 0 {
		opts.SegmentSize = DefaultSegmentSize
	}
	h := &Headers{
		log:         opts.Log,
		alloc:       opts.Allocator,
		segmentSize: opts.SegmentSize,
		order:       list.New(func(h *Header) *list.Link { return &h.link }),
	}
	if err := h.table.Init(opts.HashFunc, opts.HashSeed, opts.Log2Buckets); err != nil {
		return nil, err
	}
	return h, nil
}

func checkField(field string) error {
	switch {
	case len(field) == 0:
		return ErrEmptyField
	case bytes.ContainsAny([]byte(field), ":\r\n"):
		return ErrInvalidField
	default:
		return nil
	}
}

func lookupKey(field string) []byte {
	return bytes.ToLower([]byte(field))
}

// Get returns the header for [field], matched case-insensitively.
func (h *Headers) Get(field string) (*Header, bool) {
	e, ok := h.table.Get(lookupKey(field))
	if !ok {
		return nil, false
	}
	return headerOf(e), true
}

// Value returns the value of [field].
func (h *Headers) Value(field string) (string, bool) {
	hdr, ok := h.Get(field)
	if !ok {
		return "", false
	}
	return hdr.String(), true
}

// insert creates a header for [field] and links it last.
func (h *Headers) insert(field string) (*Header, error) {
	hdr := NewHeader(h.alloc, h.segmentSize)
	if err := hdr.setField([]byte(field)); err != nil {
		hdr.Destroy()
		return nil, err
	}
	h.table.Put(&hdr.Entry)
	h.order.PushBack(hdr)
	return hdr, nil
}

// remove unlinks [hdr] and releases its buffers.
func (h *Headers) remove(hdr *Header) {
	h.table.Delete(&hdr.Entry)
	h.order.Remove(hdr)
	hdr.Destroy()
}

// Set replaces the value of [field], adding the field if it is missing. A
// replaced field keeps its position and original spelling.
func (h *Headers) Set(field, value string) error {
	if err := checkField(field); err != nil {
		return err
	}
	hdr, ok := h.Get(field)
	if !ok {
		var err error
		hdr, err = h.insert(field)
		if err != nil {
			return err
		}
	} else {
		hdr.Value.Destroy()
	}
	if _, err := hdr.Value.WriteString(value); err != nil {
		h.drop(hdr, err)
		return err
	}
	return nil
}

// drop removes [hdr] after a failed value write left it incomplete.
func (h *Headers) drop(hdr *Header, err error) {
	h.log.Debug("dropping header",
		zap.String("field", hdr.Name()),
		zap.Error(err),
	)
	h.remove(hdr)
}

// Add appends [value] to [field]. Repeated fields are combined into a
// single comma separated value. A field whose value cannot be written is
// removed, as with [Headers.Set].
func (h *Headers) Add(field, value string) error {
	hdr, ok := h.Get(field)
	if !ok {
		return h.Set(field, value)
	}
	if _, err := hdr.Value.Write(comma); err != nil {
		h.drop(hdr, err)
		return err
	}
	if _, err := hdr.Value.WriteString(value); err != nil {
		h.drop(hdr, err)
		return err
	}
	return nil
}

// Del removes [field] and returns true if it was present.
func (h *Headers) Del(field string) bool {
	e, ok := h.table.Pop(lookupKey(field))
	if !ok {
		return false
	}
	hdr := headerOf(e)
	h.order.Remove(hdr)
	hdr.Destroy()
	return true
}

// Len returns the number of distinct fields.
func (h *Headers) Len() int {
	return h.order.Len()
}

// Each calls [f] on every header in insertion order until [f] returns false.
func (h *Headers) Each(f func(*Header) bool) {
	h.order.Each(f)
}

// WriteTo writes every header as a "Field: value\r\n" line. The headers are
// not consumed.
func (h *Headers) WriteTo(w io.Writer) (int64, error) {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	h.order.Each(func(hdr *Header) bool {
		_, _ = bb.Write(hdr.Field.Bytes())
		_, _ = bb.Write(separator)
		_, _ = bb.Write(hdr.Value.Bytes())
		_, _ = bb.Write(crlf)
		return true
	})
	return bb.WriteTo(w)
}

// Destroy removes every header and releases the lookup table. [h] must not
// be used afterwards.
func (h *Headers) Destroy() {
	h.order.Each(func(hdr *Header) bool {
		h.remove(hdr)
		return true
	})
	h.table.Destroy()
}
