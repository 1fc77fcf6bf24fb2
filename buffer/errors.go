// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package buffer

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfResources  = errors.New("out of resources")
	ErrPoolExhausted   = fmt.Errorf("%w: segment pool exhausted", ErrOutOfResources)
	ErrNoFreeSpace     = errors.New("allocator returned a segment without free space")
	ErrInvalidPoolSize = errors.New("pool must hold at least one segment")
	ErrInvalidSegSize  = errors.New("segment size must be greater than 0")

	errInvalidWriteCount = errors.New("buffer: invalid Write count")
)
