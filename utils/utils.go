// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/ava-labs/avalanchego/utils/units"

	formatter "github.com/onsi/ginkgo/v2/formatter"
)

func InitSubDirectory(rootPath string, name string) (string, error) {
	p := path.Join(rootPath, name)
	return p, os.MkdirAll(p, perms.ReadWriteExecute)
}

// Outputs to stdout.
//
// e.g.,
//
//	Out("{{green}}{{bold}}hi there %q{{/}}", "aa")
//	Out("{{magenta}}{{bold}}hi therea{{/}} {{cyan}}{{underline}}b{{/}}")
//
// ref.
// https://github.com/onsi/ginkgo/blob/v2.0.0/formatter/formatter.go#L52-L73
func Outf(format string, args ...interface{}) {
	s := formatter.F(format, args...)
	fmt.Fprint(formatter.ColorableStdOut, s)
}

// FormatBytes renders [n] with the largest binary unit that keeps it above 1.
func FormatBytes(n int) string {
	switch {
	case n >= units.GiB:
		return fmt.Sprintf("%.2fGiB", float64(n)/units.GiB)
	case n >= units.MiB:
		return fmt.Sprintf("%.2fMiB", float64(n)/units.MiB)
	case n >= units.KiB:
		return fmt.Sprintf("%.2fKiB", float64(n)/units.KiB)
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// Throughput returns the rate of moving [n] bytes in [d] as a formatted
// per second value.
func Throughput(n int, d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	return FormatBytes(int(float64(n)/d.Seconds())) + "/s"
}
