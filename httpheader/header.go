// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package httpheader

import (
	"bytes"

	"github.com/ava-labs/octonaut/buffer"
	"github.com/ava-labs/octonaut/htable"
	"github.com/ava-labs/octonaut/list"
)

// Header is a single header field. It is at the same time an entry of the
// lookup table of a [Headers], a node in its insertion order list and the
// owner of the buffers holding the field name and value.
type Header struct {
	htable.Entry
	link list.Link

	// key is the lower cased field name the table borrows
	key []byte

	Field buffer.Buffer
	Value buffer.Buffer
}

var headerOffset = list.Offset(func(h *Header) *htable.Entry { return &h.Entry })

func headerOf(e *htable.Entry) *Header {
	return list.ContainerOf[Header](e, headerOffset)
}

// NewHeader returns an empty header whose buffers acquire segments of
// [segmentSize] bytes from [alloc].
func NewHeader(alloc buffer.Allocator, segmentSize int) *Header {
	return new(Header).Init(alloc, segmentSize)
}

// Init empties [h]. [h] must not be resident in a [Headers].
func (h *Header) Init(alloc buffer.Allocator, segmentSize int) *Header {
	h.link.Init()
	h.key = nil
	h.SetKey(nil)
	h.Field.Init(alloc, segmentSize)
	h.Value.Init(alloc, segmentSize)
	return h
}

// Destroy releases the segments of both buffers.
func (h *Header) Destroy() {
	h.Field.Destroy()
	h.Value.Destroy()
	h.key = nil
	h.SetKey(nil)
}

// setField writes [field] and keys [h] by its lower cased copy.
func (h *Header) setField(field []byte) error {
	if _, err := h.Field.Write(field); err != nil {
		return err
	}
	h.key = bytes.ToLower(field)
	h.SetKey(h.key)
	return nil
}

// Name returns the field name as it was first written.
func (h *Header) Name() string {
	return string(h.Field.Bytes())
}

// String returns the field value.
func (h *Header) String() string {
	return string(h.Value.Bytes())
}
