// SPDX-License-Identifier: MIT

// Package rigmapper evaluates one rig mapping stage: a small directed graph of
// named inputs and features (weighted sums, piecewise-linear curves, products)
// whose values are computed lazily and memoized once per frame.
//
// Graph representation:
//
//	Nodes live in a NodeCollection, one slice per kind. Edges are NodeRef
//	values {Kind, Slot} resolving into that collection, so no node owns
//	another and a whole graph is cloned by copying four slices.
//
// Frame cycle:
//
//	m.Reset()                       // dirty: forget every memoized value
//	m.SetDirectValueByName("a", .5) // drive inputs for this frame
//	out := m.OutputValues(false)    // lazily evaluates what outputs need
//
// Reset must come first: it clears input values too, so an input not set
// after Reset reads as absent for the frame. Querying outputs without a
// Reset returns the previous frame's memoized values for features.
//
// Absence:
//
//	Every node value is optional. An unset input, a feature whose references
//	did not all resolve at load time, or a feature whose inputs are all
//	absent reads as absent rather than 0; see the per-kind rules on
//	WeightedSumNode, PiecewiseLinearNode and MultiplyNode.
//
// Concurrency:
//
//	A RigMapper mutates its per-node cache while evaluating and is not safe
//	for concurrent use. Topology is immutable after Load, so Clone is cheap
//	and gives every goroutine its own evaluation state.
package rigmapper
