// SPDX-License-Identifier: MIT

package cache

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/katalvlaran/rigmap/definition"
	"github.com/katalvlaran/rigmap/logger"
	"github.com/katalvlaran/rigmap/rigmapper"
)

// Cache maps definition identity → built RigMapper.
type Cache struct {
	opts    Options
	entries *lru.Cache[string, *rigmapper.RigMapper]

	buildMu sync.Mutex // serializes builds so one id is built once

	hits      atomic.Uint64
	misses    atomic.Uint64
	builds    atomic.Uint64
	failures  atomic.Uint64
	evictions atomic.Uint64
}

// New creates an empty Cache.
func New(opts ...Option) (*Cache, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Size <= 0 {
		return nil, ErrBadSize
	}
	c := &Cache{opts: o}
	entries, err := lru.NewWithEvict[string, *rigmapper.RigMapper](o.Size, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	c.entries = entries

	return c, nil
}

func (c *Cache) onEvict(id string, _ *rigmapper.RigMapper) {
	c.evictions.Add(1)
	logger.Logger().Debug("mapping evicted", slog.String("id", id))
}

// GetOrBuild returns a private clone of the mapping cached under id,
// building it from def on a miss. An empty id means def.Identity().
// Build failures are not cached.
func (c *Cache) GetOrBuild(id string, def *definition.Definition) (*rigmapper.RigMapper, error) {
	if id == "" {
		var err error
		if id, err = def.Identity(); err != nil {
			return nil, err
		}
	}
	if m, ok := c.entries.Get(id); ok {
		c.hits.Add(1)
		return m.Clone(), nil
	}

	c.buildMu.Lock()
	defer c.buildMu.Unlock()
	// another goroutine may have built it while we waited
	if m, ok := c.entries.Get(id); ok {
		c.hits.Add(1)
		return m.Clone(), nil
	}
	c.misses.Add(1)

	m := rigmapper.New(c.opts.MapperOptions...)
	if !m.Load(def) {
		c.failures.Add(1)
		return nil, fmt.Errorf("%w: %s", ErrBuildFailed, id)
	}
	c.builds.Add(1)
	c.entries.Add(id, m)
	logger.Logger().Debug("mapping cached", slog.String("id", id), slog.Int("nodes", m.Collection().Len()))

	return m.Clone(), nil
}

// GetOrLoadFile returns the mapping for the definition file at path, keyed
// by FileKey(path). The file is read only on a miss.
func (c *Cache) GetOrLoadFile(path string) (*rigmapper.RigMapper, error) {
	id := FileKey(path)
	if m, ok := c.entries.Get(id); ok {
		c.hits.Add(1)
		return m.Clone(), nil
	}
	def, err := definition.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return c.GetOrBuild(id, def)
}

// Contains reports whether id is cached, without touching recency.
func (c *Cache) Contains(id string) bool { return c.entries.Contains(id) }

// Invalidate drops the mapping cached under id and reports whether it was present.
func (c *Cache) Invalidate(id string) bool {
	ok := c.entries.Remove(id)
	if ok {
		logger.Logger().Debug("mapping invalidated", slog.String("id", id))
	}

	return ok
}

// Purge drops every cached mapping.
func (c *Cache) Purge() { c.entries.Purge() }

// Len returns the number of cached mappings.
func (c *Cache) Len() int { return c.entries.Len() }

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Builds:    c.builds.Load(),
		Failures:  c.failures.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.entries.Len(),
	}
}

// FileKey returns the cache key used for a definition file: "file:" plus
// the cleaned absolute path.
func FileKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	return "file:" + filepath.Clean(path)
}
