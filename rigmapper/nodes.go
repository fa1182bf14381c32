// SPDX-License-Identifier: MIT

package rigmapper

import (
	"cmp"
	"slices"

	"github.com/katalvlaran/rigmap/definition"
)

// evalState is the per-frame evaluation state of a node.
type evalState uint8

const (
	stateUnset      evalState = iota // not evaluated since the last Reset
	stateEvaluating                  // on the current evaluation path
	stateAbsent                      // evaluated, no value
	statePresent                     // evaluated, value held
)

// cache is the memoized value of a node for the current frame.
type cache struct {
	state evalState
	value float64
}

func (c *cache) reset() { *c = cache{} }

func (c *cache) set(v float64) { *c = cache{state: statePresent, value: v} }

// lookup reports the memoized result when the node was already evaluated
// this frame (done == true).
// A node re-entered while stateEvaluating belongs to a reference loop: the
// inner request reads absent and the guard counter in col is bumped.
func (c *cache) lookup(col *NodeCollection) (v float64, ok, done bool) {
	switch c.state {
	case statePresent:
		return c.value, true, true
	case stateAbsent:
		return 0, false, true
	case stateEvaluating:
		col.guardTrips++
		return 0, false, true
	}
	c.state = stateEvaluating

	return 0, false, false
}

// store records the result of an evaluation.
func (c *cache) store(v float64, ok bool) {
	if ok {
		c.set(v)
		return
	}
	c.state = stateAbsent
}

// InputNode holds a value driven from outside the graph.
type InputNode struct {
	cache cache
}

// TryGetValue returns the value set since the last Reset, if any.
func (n *InputNode) TryGetValue(*NodeCollection) (float64, bool) {
	if n.cache.state == statePresent {
		return n.cache.value, true
	}

	return 0, false
}

// SetDirect sets the input value for the current frame.
func (n *InputNode) SetDirect(v float64) { n.cache.set(v) }

// Reset clears the input value.
func (n *InputNode) Reset() { n.cache.reset() }

// WeightedSumNode computes sum(weight·input) clamped to optional bounds.
//
// Absent inputs contribute 0 to the sum; the node itself is present iff at
// least one input is present, so a sum over nothing reads as unset rather
// than a meaningless 0.
type WeightedSumNode struct {
	refs        []NodeRef
	weights     []float64
	lower       float64
	upper       float64
	hasLower    bool
	hasUpper    bool
	initialized bool
	cache       cache
}

// initialize resolves the feature's terms against names. The node is
// initialized only if every term resolves.
func (n *WeightedSumNode) initialize(f *definition.WeightedSumFeature, names map[string]NodeRef) bool {
	n.refs = make([]NodeRef, 0, len(f.Inputs))
	n.weights = make([]float64, 0, len(f.Inputs))
	n.initialized = true
	for _, term := range f.Inputs {
		ref, ok := names[term.Name]
		if !ok {
			n.initialized = false
			continue
		}
		n.refs = append(n.refs, ref)
		n.weights = append(n.weights, term.Weight)
	}
	if f.Range.Lower != nil {
		n.lower, n.hasLower = *f.Range.Lower, true
	}
	if f.Range.Upper != nil {
		n.upper, n.hasUpper = *f.Range.Upper, true
	}

	return n.initialized
}

// TryGetValue returns the memoized value, evaluating it on first request.
func (n *WeightedSumNode) TryGetValue(col *NodeCollection) (float64, bool) {
	if !n.initialized {
		return 0, false
	}

	if v, ok, done := n.cache.lookup(col); done {
		return v, ok
	}
	v, ok := n.evaluate(col)
	n.cache.store(v, ok)

	return v, ok
}

func (n *WeightedSumNode) evaluate(col *NodeCollection) (float64, bool) {
	sum := 0.0
	found := false
	for i, ref := range n.refs {
		v, ok := ref.TryGetValue(col)
		if ok {
			found = true
		}
		sum += n.weights[i] * v
	}
	if n.hasLower && sum < n.lower {
		sum = n.lower
	}
	if n.hasUpper && sum > n.upper {
		sum = n.upper
	}

	return sum, found
}

// SetDirect forces the memoized value, bypassing evaluation.
func (n *WeightedSumNode) SetDirect(v float64) { n.cache.set(v) }

// Reset makes the node eligible for re-evaluation.
func (n *WeightedSumNode) Reset() { n.cache.reset() }

// Key is one control point of a piecewise-linear curve.
type Key struct {
	X, Y float64
}

// PiecewiseLinearNode maps its single input through sorted keys.
//
// Below the first key the first Y is held, above the last key the last Y.
// Curves usually carry two to four keys, so evaluation is a forward scan
// rather than a binary search.
type PiecewiseLinearNode struct {
	input       NodeRef
	keys        []Key
	initialized bool
	cache       cache
}

// initialize resolves the input and sorts the keys by X once.
// Equal X keys keep their declaration order.
func (n *PiecewiseLinearNode) initialize(f *definition.PiecewiseLinearFeature, names map[string]NodeRef) bool {
	n.keys = make([]Key, len(f.Keys))
	for i, k := range f.Keys {
		n.keys[i] = Key{X: k.In, Y: k.Out}
	}
	slices.SortStableFunc(n.keys, func(a, b Key) int { return cmp.Compare(a.X, b.X) })

	ref, ok := names[f.Input]
	n.input = ref
	n.initialized = ok

	return ok
}

// TryGetValue returns the memoized value, evaluating it on first request.
func (n *PiecewiseLinearNode) TryGetValue(col *NodeCollection) (float64, bool) {
	if !n.initialized {
		return 0, false
	}

	if v, ok, done := n.cache.lookup(col); done {
		return v, ok
	}
	v, ok := n.evaluate(col)
	n.cache.store(v, ok)

	return v, ok
}

func (n *PiecewiseLinearNode) evaluate(col *NodeCollection) (float64, bool) {
	x, ok := n.input.TryGetValue(col)
	if !ok || len(n.keys) == 0 {
		return 0, false
	}

	return interpolate(n.keys, x), true
}

// interpolate evaluates the curve through keys (sorted, non-empty) at x.
func interpolate(keys []Key, x float64) float64 {
	first, last := keys[0], keys[len(keys)-1]
	if x <= first.X {
		return first.Y
	}
	if x >= last.X {
		return last.Y
	}
	for j := 1; j < len(keys); j++ {
		k := keys[j]
		if x == k.X {
			return k.Y
		}
		if x < k.X {
			p := keys[j-1]
			return p.Y + (x-p.X)/(k.X-p.X)*(k.Y-p.Y)
		}
	}

	return last.Y
}

// SetDirect forces the memoized value, bypassing evaluation.
func (n *PiecewiseLinearNode) SetDirect(v float64) { n.cache.set(v) }

// Reset makes the node eligible for re-evaluation.
func (n *PiecewiseLinearNode) Reset() { n.cache.reset() }

// MultiplyNode computes the product of its inputs.
//
// Absent inputs count as 1, the multiplicative identity; the node is
// present iff at least one input is present. Without inputs it is absent.
type MultiplyNode struct {
	refs        []NodeRef
	initialized bool
	cache       cache
}

// initialize resolves every factor; the node is initialized only if all do.
func (n *MultiplyNode) initialize(f *definition.MultiplyFeature, names map[string]NodeRef) bool {
	n.refs = make([]NodeRef, 0, len(f.Inputs))
	n.initialized = true
	for _, name := range f.Inputs {
		ref, ok := names[name]
		if !ok {
			n.initialized = false
			continue
		}
		n.refs = append(n.refs, ref)
	}

	return n.initialized
}

// TryGetValue returns the memoized value, evaluating it on first request.
func (n *MultiplyNode) TryGetValue(col *NodeCollection) (float64, bool) {
	if !n.initialized {
		return 0, false
	}

	if v, ok, done := n.cache.lookup(col); done {
		return v, ok
	}
	v, ok := n.evaluate(col)
	n.cache.store(v, ok)

	return v, ok
}

func (n *MultiplyNode) evaluate(col *NodeCollection) (float64, bool) {
	if len(n.refs) == 0 {
		return 0, false
	}
	product := 1.0
	found := false
	for _, ref := range n.refs {
		if v, ok := ref.TryGetValue(col); ok {
			product *= v
			found = true
		}
	}

	return product, found
}

// SetDirect forces the memoized value, bypassing evaluation.
func (n *MultiplyNode) SetDirect(v float64) { n.cache.set(v) }

// Reset makes the node eligible for re-evaluation.
func (n *MultiplyNode) Reset() { n.cache.reset() }
