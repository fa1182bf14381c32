// SPDX-License-Identifier: MIT

// Package watch drops cached rig mappings when their definition files change
// on disk, so the next cache.GetOrLoadFile rebuilds from the new content.
//
// A Watcher watches the parent directory of every added file through
// github.com/fsnotify/fsnotify. Editors commonly save by writing a temp file
// and renaming it over the original, which only a directory watch observes.
// Events for files that were not added are ignored.
//
//	w, _ := watch.New(c, watch.WithOnChange(func(ev watch.Event) { ... }))
//	_ = w.Add("face.json")
//	go w.Run(ctx)
//	defer w.Close()
package watch
