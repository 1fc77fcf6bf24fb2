// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import "errors"

var (
	ErrInvalidParallel = errors.New("parallel must be at least 1")
	ErrInvalidArgument = errors.New("argument must be greater than 0")
	ErrMismatch        = errors.New("bytes read back differ from bytes written")
	ErrLostEntries     = errors.New("table lost entries")
	ErrMalformedLine   = errors.New("header line has no colon")
)
