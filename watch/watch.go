// SPDX-License-Identifier: MIT

package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/katalvlaran/rigmap/cache"
	"github.com/katalvlaran/rigmap/logger"
)

// Watcher invalidates cache entries of changed definition files.
type Watcher struct {
	cache *cache.Cache
	opts  Options
	fs    *fsnotify.Watcher

	mu     sync.Mutex
	files  map[string]struct{}
	dirs   map[string]struct{}
	closed bool
}

// New creates a Watcher feeding invalidations into c.
func New(c *cache.Cache, opts ...Option) (*Watcher, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	return &Watcher{
		cache: c,
		opts:  o,
		fs:    fw,
		files: make(map[string]struct{}),
		dirs:  make(map[string]struct{}),
	}, nil
}

// Add starts watching the definition file at path. The file must exist.
// Adding the same file twice is a no-op.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	abs = filepath.Clean(abs)
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotFile, abs)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	dir := filepath.Dir(abs)
	if _, ok := w.dirs[dir]; !ok {
		if err = w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch: %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.files[abs] = struct{}{}
	logger.Logger().Debug("watching definition", slog.String("path", abs))

	return nil
}

// Files returns the watched files, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)

	return out
}

// Run processes file events until ctx is done or the watcher is closed.
// It returns ctx.Err() on cancellation and nil after Close.
// Watch errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Logger().Warn("watch error", slog.Any("err", err))
		}
	}
}

// Close stops watching. Run returns once the event channel drains.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	return w.fs.Close()
}

// handle invalidates the cache entry of a watched file on a relevant event.
func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&relevant == 0 {
		return
	}
	path := filepath.Clean(ev.Name)
	w.mu.Lock()
	_, watched := w.files[path]
	w.mu.Unlock()
	if !watched {
		return
	}

	dropped := w.cache.Invalidate(cache.FileKey(path))
	logger.Logger().Debug("definition changed",
		slog.String("path", path),
		slog.String("op", ev.Op.String()),
		slog.Bool("invalidated", dropped))
	if w.opts.OnChange != nil {
		w.opts.OnChange(Event{Path: path, Op: ev.Op, Invalidated: dropped})
	}
}
