// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/octonaut/buffer"
	"github.com/ava-labs/octonaut/htable"
)

const (
	HeapAllocator   = "heap"
	PoolAllocator   = "pool"
	MCacheAllocator = "mcache"
)

var (
	ErrInvalidConfigFormat = errors.New("config is neither JSON nor YAML")
	ErrInvalidSegmentSize  = errors.New("segment size must be greater than 0")
	ErrInvalidPoolSegments = errors.New("pool must hold at least one segment")
	ErrUnknownAllocator    = errors.New("unknown allocator")
	ErrInvalidBuckets      = fmt.Errorf("hash buckets log2 must be less than %d", htable.MaxLog2Size)
)

type Config struct {
	SegmentSize     int    `json:"segmentSize"     yaml:"segmentSize"`
	Allocator       string `json:"allocator"       yaml:"allocator"`
	PoolSegments    int    `json:"poolSegments"    yaml:"poolSegments"`
	PoolFallback    bool   `json:"poolFallback"    yaml:"poolFallback"`
	HashFunction    string `json:"hashFunction"    yaml:"hashFunction"`
	HashSeed        uint32 `json:"hashSeed"        yaml:"hashSeed"`
	HashBucketsLog2 uint   `json:"hashBucketsLog2" yaml:"hashBucketsLog2"`
	LogLevel        string `json:"logLevel"        yaml:"logLevel"`
}

func NewConfig() Config {
	return Config{
		SegmentSize:     4 * units.KiB,
		Allocator:       PoolAllocator,
		PoolSegments:    1_024, // 4MB at 4KB segments
		PoolFallback:    true,
		HashFunction:    htable.XXH3Name,
		HashSeed:        0,
		HashBucketsLog2: 10,
		LogLevel:        logging.Info.String(),
	}
}

// Load overrides the defaults with the fields set in [b], which may be JSON
// or YAML. Empty input yields the defaults.
func Load(b []byte) (Config, error) {
	c := NewConfig()
	if len(b) == 0 {
		return c, nil
	}
	switch {
	case isJSON(b):
		if err := json.Unmarshal(b, &c); err != nil {
			return Config{}, err
		}
	case isYAML(b):
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, ErrInvalidConfigFormat
	}
	return c, c.Validate()
}

func isJSON(b []byte) bool {
	var js map[string]interface{}
	return json.Unmarshal(b, &js) == nil
}

func isYAML(b []byte) bool {
	var y map[string]interface{}
	return yaml.Unmarshal(b, &y) == nil
}

func (c Config) Validate() error {
	if c.SegmentSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSegmentSize, c.SegmentSize)
	}
	switch c.Allocator {
	case HeapAllocator, MCacheAllocator:
	case PoolAllocator:
		if c.PoolSegments <= 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidPoolSegments, c.PoolSegments)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAllocator, c.Allocator)
	}
	if _, err := htable.HashFunc(c.HashFunction); err != nil {
		return err
	}
	if c.HashBucketsLog2 >= htable.MaxLog2Size {
		return fmt.Errorf("%w: got %d", ErrInvalidBuckets, c.HashBucketsLog2)
	}
	_, err := c.Level()
	return err
}

func (c Config) Level() (logging.Level, error) {
	return logging.ToLevel(c.LogLevel)
}

// NewAllocator builds the configured segment allocator. Allocator metrics
// are registered with [r].
func (c Config) NewAllocator(log logging.Logger, r prometheus.Registerer) (buffer.Allocator, error) {
	switch c.Allocator {
	case HeapAllocator:
		return buffer.HeapAllocator{}, nil
	case PoolAllocator:
		return buffer.NewPoolAllocator(log, r, c.PoolSegments, c.SegmentSize, c.PoolFallback)
	case MCacheAllocator:
		return buffer.NewMCacheAllocator(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAllocator, c.Allocator)
	}
}

func (c Config) HashFunc() (htable.Func, error) {
	return htable.HashFunc(c.HashFunction)
}
