// SPDX-License-Identifier: MIT

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/katalvlaran/rigmap/cache"
	"github.com/katalvlaran/rigmap/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passThrough = `{"inputs": ["jaw"], "outputs": {"jaw_out": "jaw"}}`

// writeDef writes a definition file into dir and returns its path.
func writeDef(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

// newWatcher returns a watcher on a fresh cache, closed at test end.
func newWatcher(t *testing.T, opts ...watch.Option) (*watch.Watcher, *cache.Cache) {
	t.Helper()
	c, err := cache.New()
	require.NoError(t, err)
	w, err := watch.New(c, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	return w, c
}

// TestNew_NilCache verifies a cache is required.
func TestNew_NilCache(t *testing.T) {
	_, err := watch.New(nil)
	assert.ErrorIs(t, err, watch.ErrNilCache)
}

// TestAdd_Errors covers missing files, directories and closed watchers.
func TestAdd_Errors(t *testing.T) {
	dir := t.TempDir()
	w, _ := newWatcher(t)

	assert.ErrorIs(t, w.Add(filepath.Join(dir, "missing.json")), os.ErrNotExist)
	assert.ErrorIs(t, w.Add(dir), watch.ErrNotFile)

	path := writeDef(t, dir, "face.json", passThrough)
	require.NoError(t, w.Add(path))
	require.NoError(t, w.Add(path))
	assert.Equal(t, []string{path}, w.Files())

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Add(path), watch.ErrClosed)
}

// TestHandle_Filters verifies only relevant ops on watched files invalidate.
func TestHandle_Filters(t *testing.T) {
	dir := t.TempDir()
	path := writeDef(t, dir, "face.json", passThrough)
	other := writeDef(t, dir, "other.json", passThrough)

	var events []watch.Event
	w, c := newWatcher(t, watch.WithOnChange(func(ev watch.Event) { events = append(events, ev) }))
	require.NoError(t, w.Add(path))
	_, err := c.GetOrLoadFile(path)
	require.NoError(t, err)

	w.Handle(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	w.Handle(fsnotify.Event{Name: other, Op: fsnotify.Write})
	assert.Empty(t, events)
	assert.True(t, c.Contains(cache.FileKey(path)))

	w.Handle(fsnotify.Event{Name: path, Op: fsnotify.Write})
	require.Len(t, events, 1)
	assert.Equal(t, watch.Event{Path: path, Op: fsnotify.Write, Invalidated: true}, events[0])
	assert.False(t, c.Contains(cache.FileKey(path)))

	w.Handle(fsnotify.Event{Name: path, Op: fsnotify.Remove})
	require.Len(t, events, 2)
	assert.False(t, events[1].Invalidated, "nothing left to drop")
}

// TestRun_InvalidatesOnWrite exercises the real fsnotify loop: rewriting a
// watched file drops its entry and the next load sees the new content.
func TestRun_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeDef(t, dir, "face.json", passThrough)

	changed := make(chan watch.Event, 16)
	w, c := newWatcher(t, watch.WithOnChange(func(ev watch.Event) { changed <- ev }))
	require.NoError(t, w.Add(path))

	m, err := c.GetOrLoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"jaw_out"}, m.OutputNames())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeDef(t, dir, "face.json", `{"inputs": ["jaw"], "outputs": {"mouth": "jaw"}}`)

	select {
	case ev := <-changed:
		assert.Equal(t, path, ev.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change event")
	}
	require.Eventually(t, func() bool { return !c.Contains(cache.FileKey(path)) }, 5*time.Second, 10*time.Millisecond)

	m, err = c.GetOrLoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"mouth"}, m.OutputNames())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

// TestRun_ReturnsAfterClose verifies Close ends the loop cleanly.
func TestRun_ReturnsAfterClose(t *testing.T) {
	w, _ := newWatcher(t)
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	require.NoError(t, w.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}
