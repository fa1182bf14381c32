// SPDX-License-Identifier: MIT

// Package rigmap evaluates facial animation curve mappings: named input
// curves flow through a small graph of weighted sums, piecewise-linear
// curves and products into named output curves, and stages chain so the
// outputs of one mapping feed the next.
//
// What is inside:
//
//	definition/  the declarative JSON/YAML mapping format, validation and chain checks
//	rigmapper/   the node arena and the lazily evaluated, memoized mapper
//	processor/   multi-stage evaluation with cached name → input index resolution
//	cache/       LRU of built mappers keyed by definition identity or file path
//	watch/       drops cached mappers when their definition files change
//	config/      YAML run configuration with RIGMAP_* overrides
//	logger/      the slog logger shared by all packages (silent by default)
//	cmd/rigmap   validate, inspect, eval and watch from the command line
//
// A frame is always: Reset, set inputs, read outputs.
//
//	m := rigmapper.NewFromDefinition(def)
//	m.Reset()
//	m.SetDirectValueByName("jawOpen", 0.4)
//	out := m.OutputValues(false)
//
//	go get github.com/katalvlaran/rigmap
package rigmap
