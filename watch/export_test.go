// SPDX-License-Identifier: MIT

package watch

import "github.com/fsnotify/fsnotify"

// Handle exposes the event handler so tests can feed synthetic events.
func (w *Watcher) Handle(ev fsnotify.Event) { w.handle(ev) }
