// SPDX-License-Identifier: MIT

package processor

import (
	"errors"

	"github.com/katalvlaran/rigmap/cache"
)

var (
	// ErrNoStages indicates a processor built without stages.
	ErrNoStages = errors.New("processor: no stages")

	// ErrInvalidStage indicates a stage whose mapping is not valid.
	ErrInvalidStage = errors.New("processor: invalid stage")
)

// Option configures a Processor built from definitions.
type Option func(*Options)

// Options holds NewFromDefinitions settings.
type Options struct {
	// Cache, if non-nil, supplies built mappings by definition identity.
	Cache *cache.Cache

	// ValidateChain runs definition.ValidateChain before building.
	ValidateChain bool

	// IDs, if set, are the cache keys per stage; otherwise each
	// definition's content identity is used.
	IDs []string
}

// DefaultOptions returns Options without cache or chain validation.
func DefaultOptions() Options {
	return Options{}
}

// WithCache builds stages through c.
func WithCache(c *cache.Cache) Option {
	return func(o *Options) { o.Cache = c }
}

// WithChainValidation rejects definitions that do not line up stage to stage.
func WithChainValidation() Option {
	return func(o *Options) { o.ValidateChain = true }
}

// WithIDs sets explicit cache keys, one per definition.
func WithIDs(ids ...string) Option {
	return func(o *Options) { o.IDs = ids }
}
