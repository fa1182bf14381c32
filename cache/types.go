// SPDX-License-Identifier: MIT

package cache

import (
	"errors"

	"github.com/katalvlaran/rigmap/rigmapper"
)

// DefaultSize is the default maximum number of cached mappings.
const DefaultSize = 128

var (
	// ErrBuildFailed indicates the definition did not yield a valid mapping.
	ErrBuildFailed = errors.New("cache: definition did not build a valid mapping")

	// ErrBadSize indicates a non-positive cache size.
	ErrBadSize = errors.New("cache: size must be positive")
)

// Option configures a Cache.
type Option func(*Options)

// Options holds Cache settings.
type Options struct {
	// Size bounds the number of cached mappings. Default DefaultSize.
	Size int

	// MapperOptions are passed to every rigmapper.New call.
	MapperOptions []rigmapper.Option
}

// DefaultOptions returns Options with Size DefaultSize.
func DefaultOptions() Options {
	return Options{Size: DefaultSize}
}

// WithSize sets the LRU bound.
func WithSize(n int) Option {
	return func(o *Options) { o.Size = n }
}

// WithMapperOptions appends options used when building mappers.
func WithMapperOptions(opts ...rigmapper.Option) Option {
	return func(o *Options) { o.MapperOptions = append(o.MapperOptions, opts...) }
}

// Stats is a snapshot of cache counters. Evictions counts entries dropped
// for any reason: capacity, Invalidate or Purge.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Builds    uint64
	Failures  uint64
	Evictions uint64
	Entries   int
}
