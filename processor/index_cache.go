// SPDX-License-Identifier: MIT

package processor

import (
	"log/slog"

	"github.com/katalvlaran/rigmap/logger"
	"github.com/katalvlaran/rigmap/rigmapper"
)

// notFound marks an upstream curve the stage has no input for.
const notFound = -1

// indexCache maps upstream curve position → stage input index.
type indexCache struct {
	names   []string // names the table was built for
	index   []int
	built   bool
	rebuilt int // number of rebuilds, for diagnostics and tests
}

// resolve returns the index table for names against stage, rebuilding it
// when names differ from the cached ones. String equality short-circuits
// on shared backing data, so the common stable-layout check is cheap.
func (c *indexCache) resolve(names []string, stage *rigmapper.RigMapper) []int {
	if c.matches(names) {
		return c.index
	}
	c.names = append(c.names[:0], names...)
	c.index = c.index[:0]
	for _, name := range names {
		i, ok := stage.InputIndex(name)
		if !ok {
			i = notFound
		}
		c.index = append(c.index, i)
	}
	c.built = true
	c.rebuilt++
	logger.Logger().Debug("index cache rebuilt",
		slog.String("stage", stage.Name()),
		slog.Int("curves", len(names)))

	return c.index
}

func (c *indexCache) matches(names []string) bool {
	if !c.built || len(names) != len(c.names) {
		return false
	}
	for i := range names {
		if names[i] != c.names[i] {
			return false
		}
	}

	return true
}
