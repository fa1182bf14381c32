// SPDX-License-Identifier: MIT

// Package cache keeps built rig mappings keyed by definition identity, so
// repeated loads of the same definition reuse one graph.
//
// A Cache is an explicit value, not a global: whoever constructs processors
// owns it and passes it along, and tests use independent instances.
//
// GetOrBuild hands out a Clone of the cached mapper, so the cached topology
// is only ever read and callers each get their own per-frame state. That
// makes a single Cache safe to share between goroutines.
//
// Entries are bounded by an LRU (github.com/hashicorp/golang-lru/v2);
// Invalidate drops one entry when its definition changes, Purge drops all.
package cache
