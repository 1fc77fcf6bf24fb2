// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/octonaut/httpheader"
)

var (
	headersFile string

	headersCmd = &cobra.Command{
		Use:   "headers",
		Short: "Load \"Field: value\" lines into a header set and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := io.Reader(os.Stdin)
			if headersFile != "" && headersFile != "-" {
				f, err := os.Open(headersFile)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runHeaders(in, cmd.OutOrStdout())
		},
	}
)

func init() {
	headersCmd.Flags().StringVar(&headersFile, "file", "-", "header file, - reads stdin")
}

func runHeaders(in io.Reader, out io.Writer) error {
	alloc, err := newAllocator(0)
	if err != nil {
		return err
	}
	fn, err := cfg.HashFunc()
	if err != nil {
		return err
	}
	h, err := httpheader.NewHeaders(httpheader.Options{
		Log:         log,
		Allocator:   alloc,
		HashFunc:    fn,
		HashSeed:    cfg.HashSeed,
		Log2Buckets: cfg.HashBucketsLog2,
	})
	if err != nil {
		return err
	}
	defer h.Destroy()

	if err := loadHeaders(h, in); err != nil {
		return err
	}
	log.Debug("loaded headers", zap.Int("fields", h.Len()))
	_, err = h.WriteTo(out)
	return err
}

// loadHeaders adds every line of [in] to [h] until the first empty line.
func loadHeaders(h *httpheader.Headers, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			break
		}
		field, value, ok := strings.Cut(text, ":")
		if !ok {
			return fmt.Errorf("%w: line %d", ErrMalformedLine, line)
		}
		if err := h.Add(strings.TrimSpace(field), strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%w: line %d", err, line)
		}
	}
	return scanner.Err()
}
