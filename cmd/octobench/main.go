// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "octobench" exercises the octonaut containers from the command line.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/ava-labs/octonaut/cmd/octobench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		color.Red("octobench failed: %v", err)
		os.Exit(1)
	}
	os.Exit(0)
}
