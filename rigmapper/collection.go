// SPDX-License-Identifier: MIT

package rigmapper

// NodeCollection is the arena holding every node of one mapping, one slice
// per kind. Nodes are addressed only through NodeRef.Slot.
type NodeCollection struct {
	Inputs           []InputNode
	WeightedSums     []WeightedSumNode
	PiecewiseLinears []PiecewiseLinearNode
	Multiplies       []MultiplyNode

	// guardTrips counts re-entries into a node already on the evaluation
	// path, i.e. reference loops cut short since the last Reset.
	guardTrips int
}

// AddInput appends an input node and returns its reference.
func (c *NodeCollection) AddInput() NodeRef {
	c.Inputs = append(c.Inputs, InputNode{})
	return NodeRef{Kind: KindInput, Slot: len(c.Inputs) - 1}
}

// AddWeightedSum appends an empty weighted-sum node and returns its reference.
func (c *NodeCollection) AddWeightedSum() NodeRef {
	c.WeightedSums = append(c.WeightedSums, WeightedSumNode{})
	return NodeRef{Kind: KindWeightedSum, Slot: len(c.WeightedSums) - 1}
}

// AddPiecewiseLinear appends an empty piecewise-linear node and returns its reference.
func (c *NodeCollection) AddPiecewiseLinear() NodeRef {
	c.PiecewiseLinears = append(c.PiecewiseLinears, PiecewiseLinearNode{})
	return NodeRef{Kind: KindPiecewiseLinear, Slot: len(c.PiecewiseLinears) - 1}
}

// AddMultiply appends an empty multiply node and returns its reference.
func (c *NodeCollection) AddMultiply() NodeRef {
	c.Multiplies = append(c.Multiplies, MultiplyNode{})
	return NodeRef{Kind: KindMultiply, Slot: len(c.Multiplies) - 1}
}

// Len returns the total number of nodes.
func (c *NodeCollection) Len() int {
	return len(c.Inputs) + len(c.WeightedSums) + len(c.PiecewiseLinears) + len(c.Multiplies)
}

// Count returns the number of nodes of kind k.
func (c *NodeCollection) Count(k NodeKind) int {
	switch k {
	case KindInput:
		return len(c.Inputs)
	case KindWeightedSum:
		return len(c.WeightedSums)
	case KindPiecewiseLinear:
		return len(c.PiecewiseLinears)
	case KindMultiply:
		return len(c.Multiplies)
	default:
		return 0
	}
}

// ResetAll clears the memoized value of every node, inputs included.
func (c *NodeCollection) ResetAll() {
	for i := range c.Inputs {
		c.Inputs[i].Reset()
	}
	for i := range c.WeightedSums {
		c.WeightedSums[i].Reset()
	}
	for i := range c.PiecewiseLinears {
		c.PiecewiseLinears[i].Reset()
	}
	for i := range c.Multiplies {
		c.Multiplies[i].Reset()
	}
	c.guardTrips = 0
}

// GuardTrips returns how many reference-loop re-entries were cut short
// since the last ResetAll.
func (c *NodeCollection) GuardTrips() int { return c.guardTrips }

// Clone copies the per-node state. Topology slices (refs, weights, keys)
// are immutable after load and stay shared with c.
func (c *NodeCollection) Clone() NodeCollection {
	return NodeCollection{
		Inputs:           append([]InputNode(nil), c.Inputs...),
		WeightedSums:     append([]WeightedSumNode(nil), c.WeightedSums...),
		PiecewiseLinears: append([]PiecewiseLinearNode(nil), c.PiecewiseLinears...),
		Multiplies:       append([]MultiplyNode(nil), c.Multiplies...),
	}
}

// valid reports whether r addresses an existing slot of c.
func (r NodeRef) valid(c *NodeCollection) bool {
	return r.Slot >= 0 && r.Slot < c.Count(r.Kind)
}

// TryGetValue dispatches to the referenced node. A KindNone or
// out-of-range reference is absent.
func (r NodeRef) TryGetValue(c *NodeCollection) (float64, bool) {
	if !r.valid(c) {
		return 0, false
	}
	switch r.Kind {
	case KindInput:
		return c.Inputs[r.Slot].TryGetValue(c)
	case KindWeightedSum:
		return c.WeightedSums[r.Slot].TryGetValue(c)
	case KindPiecewiseLinear:
		return c.PiecewiseLinears[r.Slot].TryGetValue(c)
	case KindMultiply:
		return c.Multiplies[r.Slot].TryGetValue(c)
	}

	return 0, false
}

// GetValue returns the referenced value, or 0 when absent.
func (r NodeRef) GetValue(c *NodeCollection) float64 {
	v, _ := r.TryGetValue(c)
	return v
}

// SetDirect writes v into the referenced node's cache. On feature nodes
// this overrides evaluation until the next reset.
func (r NodeRef) SetDirect(c *NodeCollection, v float64) {
	if !r.valid(c) {
		return
	}
	switch r.Kind {
	case KindInput:
		c.Inputs[r.Slot].SetDirect(v)
	case KindWeightedSum:
		c.WeightedSums[r.Slot].SetDirect(v)
	case KindPiecewiseLinear:
		c.PiecewiseLinears[r.Slot].SetDirect(v)
	case KindMultiply:
		c.Multiplies[r.Slot].SetDirect(v)
	}
}

// Reset clears the referenced node's cache, whatever its kind.
func (r NodeRef) Reset(c *NodeCollection) {
	if !r.valid(c) {
		return
	}
	switch r.Kind {
	case KindInput:
		c.Inputs[r.Slot].Reset()
	case KindWeightedSum:
		c.WeightedSums[r.Slot].Reset()
	case KindPiecewiseLinear:
		c.PiecewiseLinears[r.Slot].Reset()
	case KindMultiply:
		c.Multiplies[r.Slot].Reset()
	}
}
