// SPDX-License-Identifier: MIT

package watch

import (
	"errors"

	"github.com/fsnotify/fsnotify"
)

var (
	// ErrNilCache indicates New was called without a cache.
	ErrNilCache = errors.New("watch: nil cache")

	// ErrNotFile indicates Add was given a directory.
	ErrNotFile = errors.New("watch: path is a directory")

	// ErrClosed indicates the watcher was already closed.
	ErrClosed = errors.New("watch: watcher closed")
)

// Event reports one change to a watched definition file.
type Event struct {
	// Path is the cleaned absolute path of the file.
	Path string

	// Op is the fsnotify operation that triggered the event.
	Op fsnotify.Op

	// Invalidated reports whether a cached mapping was dropped.
	Invalidated bool
}

// Option configures a Watcher.
type Option func(*Options)

// Options holds Watcher settings.
type Options struct {
	// OnChange is called from Run for every relevant event. Nil disables it.
	OnChange func(Event)
}

// WithOnChange installs a change callback.
func WithOnChange(fn func(Event)) Option {
	return func(o *Options) { o.OnChange = fn }
}

// relevant is the set of operations that make a cached mapping stale.
const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
