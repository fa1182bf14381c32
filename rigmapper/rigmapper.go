// SPDX-License-Identifier: MIT

package rigmapper

import (
	"log/slog"

	"github.com/katalvlaran/rigmap/definition"
	"github.com/katalvlaran/rigmap/logger"
)

// RigMapper owns one mapping graph: its node arena plus the name tables
// for inputs, outputs and every named node.
type RigMapper struct {
	opts Options

	nodes      map[string]NodeRef // every named node, inputs included
	collection NodeCollection

	inputNames []string
	inputRefs  []NodeRef
	inputIndex map[string]int // input name → position in inputNames

	outputNames []string
	outputRefs  []NodeRef

	cycleWarned bool
}

// New returns an empty, invalid mapper. Call Load to build a graph.
func New(opts ...Option) *RigMapper {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &RigMapper{opts: o}
}

// NewFromDefinition is New followed by Load. It returns nil if Load fails.
func NewFromDefinition(def *definition.Definition, opts ...Option) *RigMapper {
	m := New(opts...)
	if !m.Load(def) {
		return nil
	}

	return m
}

// clear drops every node and name table.
func (m *RigMapper) clear() {
	m.nodes = nil
	m.collection = NodeCollection{}
	m.inputNames, m.inputRefs, m.inputIndex = nil, nil, nil
	m.outputNames, m.outputRefs = nil, nil
	m.cycleWarned = false
}

// Load builds the graph described by def and reports whether the result is
// valid. On failure the mapper is left empty.
//
// Steps:
//  1. Drop any previous graph.
//  2. Register inputs in declared order.
//  3. Register feature names: multiply, weighted sum, piecewise linear.
//     All names exist before any feature body is resolved, so features may
//     reference each other regardless of declaration order.
//  4. Resolve outputs; an output linked to an unknown name is dropped.
//  5. If the graph is valid, resolve every feature body. A feature with any
//     unresolved reference stays uninitialized and reads as absent.
//
// Empty or colliding names fail the load, as does any definition.Validate
// error when the mapper was built WithStrict.
func (m *RigMapper) Load(def *definition.Definition) bool {
	log := logger.Logger().With(slog.String("mapper", m.opts.Name))

	// 1. Reset
	m.clear()
	if def == nil {
		return false
	}
	if m.opts.Strict {
		if err := def.Validate(); err != nil {
			log.Warn("definition rejected", slog.Any("err", err))
			return false
		}
	}

	// 2. Inputs
	m.nodes = make(map[string]NodeRef, len(def.Inputs)+def.Features.Len())
	m.inputNames = make([]string, 0, len(def.Inputs))
	m.inputRefs = make([]NodeRef, 0, len(def.Inputs))
	m.inputIndex = make(map[string]int, len(def.Inputs))
	for _, name := range def.Inputs {
		ref, ok := m.register(name, m.collection.AddInput)
		if !ok {
			log.Warn("invalid input name", slog.String("name", name))
			m.clear()
			return false
		}
		m.inputIndex[name] = len(m.inputNames)
		m.inputNames = append(m.inputNames, name)
		m.inputRefs = append(m.inputRefs, ref)
	}

	// 3. Feature names
	for _, f := range def.Features.Multiply {
		if _, ok := m.register(f.Name, m.collection.AddMultiply); !ok {
			log.Warn("invalid feature name", slog.String("name", f.Name))
			m.clear()
			return false
		}
	}
	for _, f := range def.Features.WeightedSum {
		if _, ok := m.register(f.Name, m.collection.AddWeightedSum); !ok {
			log.Warn("invalid feature name", slog.String("name", f.Name))
			m.clear()
			return false
		}
	}
	for _, f := range def.Features.PiecewiseLinear {
		if _, ok := m.register(f.Name, m.collection.AddPiecewiseLinear); !ok {
			log.Warn("invalid feature name", slog.String("name", f.Name))
			m.clear()
			return false
		}
	}

	// 4. Outputs
	m.outputNames = make([]string, 0, len(def.Outputs))
	m.outputRefs = make([]NodeRef, 0, len(def.Outputs))
	seen := make(map[string]struct{}, len(def.Outputs))
	for _, o := range def.Outputs {
		if _, dup := seen[o.Name]; dup || o.Name == "" {
			log.Warn("invalid output name", slog.String("name", o.Name))
			m.clear()
			return false
		}
		seen[o.Name] = struct{}{}
		ref, ok := m.nodes[o.Linked]
		if !ok {
			log.Warn("output dropped", slog.String("output", o.Name), slog.String("linked", o.Linked))
			continue
		}
		m.outputNames = append(m.outputNames, o.Name)
		m.outputRefs = append(m.outputRefs, ref)
	}

	// 5. Validate, then resolve bodies
	if !m.IsValid() {
		log.Warn("mapping invalid",
			slog.Int("nodes", len(m.nodes)),
			slog.Int("inputs", len(m.inputRefs)),
			slog.Int("outputs", len(m.outputRefs)))
		m.clear()
		return false
	}
	uninitialized := 0
	for i := range def.Features.Multiply {
		f := &def.Features.Multiply[i]
		if !m.collection.Multiplies[i].initialize(f, m.nodes) {
			uninitialized++
			log.Warn("feature uninitialized", slog.String("feature", f.Name), slog.String("kind", KindMultiply.String()))
		}
	}
	for i := range def.Features.WeightedSum {
		f := &def.Features.WeightedSum[i]
		if !m.collection.WeightedSums[i].initialize(f, m.nodes) {
			uninitialized++
			log.Warn("feature uninitialized", slog.String("feature", f.Name), slog.String("kind", KindWeightedSum.String()))
		}
	}
	for i := range def.Features.PiecewiseLinear {
		f := &def.Features.PiecewiseLinear[i]
		if !m.collection.PiecewiseLinears[i].initialize(f, m.nodes) {
			uninitialized++
			log.Warn("feature uninitialized", slog.String("feature", f.Name), slog.String("kind", KindPiecewiseLinear.String()))
		}
	}
	log.Debug("mapping loaded",
		slog.Int("nodes", m.collection.Len()),
		slog.Int("inputs", len(m.inputNames)),
		slog.Int("outputs", len(m.outputNames)),
		slog.Int("uninitialized", uninitialized))

	return true
}

// register adds name to the node table using add to allocate its slot.
// Empty and already registered names are refused.
func (m *RigMapper) register(name string, add func() NodeRef) (NodeRef, bool) {
	if name == "" {
		return NodeRef{}, false
	}
	if _, dup := m.nodes[name]; dup {
		return NodeRef{}, false
	}
	ref := add()
	m.nodes[name] = ref

	return ref, true
}

// IsValid reports whether the mapper has nodes, at least one input and one
// output, and consistent name/ref tables.
func (m *RigMapper) IsValid() bool {
	return len(m.nodes) > 0 &&
		len(m.inputRefs) > 0 &&
		len(m.outputRefs) > 0 &&
		len(m.inputNames) == len(m.inputRefs) &&
		len(m.outputNames) == len(m.outputRefs)
}

// SetDirectValue sets the input at index (position in InputNames).
// It reports false for an unknown index.
func (m *RigMapper) SetDirectValue(index int, v float64) bool {
	if index < 0 || index >= len(m.inputRefs) {
		return false
	}
	m.inputRefs[index].SetDirect(&m.collection, v)

	return true
}

// SetDirectValueByName sets the named input. It reports false if name is
// not an input of this mapping.
func (m *RigMapper) SetDirectValueByName(name string, v float64) bool {
	index, ok := m.inputIndex[name]
	if !ok {
		return false
	}

	return m.SetDirectValue(index, v)
}

// Reset marks the graph dirty: every memoized value, inputs included, is
// forgotten. Call it once per frame before setting inputs.
func (m *RigMapper) Reset() {
	m.collection.ResetAll()
}

// OutputValues evaluates every output and returns them by name.
// Absent outputs are reported as 0, or omitted when skipUnset is true.
func (m *RigMapper) OutputValues(skipUnset bool) map[string]float64 {
	out := make(map[string]float64, len(m.outputRefs))
	for i, ref := range m.outputRefs {
		v, ok := ref.TryGetValue(&m.collection)
		if !ok && skipUnset {
			continue
		}
		out[m.outputNames[i]] = v
	}
	m.warnCycles()

	return out
}

// OutputValuesInOrder writes the outputs, in OutputNames order, into out
// (reused when its capacity suffices) and returns it. Absent outputs are 0.
func (m *RigMapper) OutputValuesInOrder(out []float64) []float64 {
	out = out[:0]
	for _, ref := range m.outputRefs {
		out = append(out, ref.GetValue(&m.collection))
	}
	m.warnCycles()

	return out
}

// OptionalOutputValuesInOrder is OutputValuesInOrder preserving absence.
func (m *RigMapper) OptionalOutputValuesInOrder(out []Optional) []Optional {
	out = out[:0]
	for _, ref := range m.outputRefs {
		v, ok := ref.TryGetValue(&m.collection)
		out = append(out, Optional{Value: v, Set: ok})
	}
	m.warnCycles()

	return out
}

// warnCycles logs the first reference loop met since Load.
func (m *RigMapper) warnCycles() {
	if m.cycleWarned || m.collection.guardTrips == 0 {
		return
	}
	m.cycleWarned = true
	logger.Logger().Warn("reference loop cut during evaluation",
		slog.String("mapper", m.opts.Name),
		slog.Int("trips", m.collection.guardTrips))
}

// Value evaluates the named node, whatever its kind.
func (m *RigMapper) Value(name string) (float64, bool) {
	ref, ok := m.nodes[name]
	if !ok {
		return 0, false
	}

	return ref.TryGetValue(&m.collection)
}

// InputNames returns the input names in declared order. The slice is owned
// by the mapper and must not be modified.
func (m *RigMapper) InputNames() []string { return m.inputNames }

// OutputNames returns the resolved output names in declared order. The
// slice is owned by the mapper and must not be modified.
func (m *RigMapper) OutputNames() []string { return m.outputNames }

// InputIndex returns the position of the named input.
func (m *RigMapper) InputIndex(name string) (int, bool) {
	i, ok := m.inputIndex[name]
	return i, ok
}

// NodeRef returns the reference registered for name.
func (m *RigMapper) NodeRef(name string) (NodeRef, bool) {
	ref, ok := m.nodes[name]
	return ref, ok
}

// Collection exposes the node arena, e.g. for per-kind counts.
func (m *RigMapper) Collection() *NodeCollection { return &m.collection }

// Name returns the mapper's log label.
func (m *RigMapper) Name() string { return m.opts.Name }

// Clone returns a mapper sharing this one's immutable topology (name tables,
// edges, keys) with its own per-frame state. Clones may be evaluated
// concurrently with each other.
func (m *RigMapper) Clone() *RigMapper {
	return &RigMapper{
		opts:        m.opts,
		nodes:       m.nodes,
		collection:  m.collection.Clone(),
		inputNames:  m.inputNames,
		inputRefs:   m.inputRefs,
		inputIndex:  m.inputIndex,
		outputNames: m.outputNames,
		outputRefs:  m.outputRefs,
	}
}
