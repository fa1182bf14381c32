// SPDX-License-Identifier: MIT

package processor

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/katalvlaran/rigmap/definition"
	"github.com/katalvlaran/rigmap/logger"
	"github.com/katalvlaran/rigmap/rigmapper"
)

// Processor evaluates an ordered chain of rig mapping stages.
type Processor struct {
	stages  []*rigmapper.RigMapper
	caches  []indexCache           // one per stage; stage 0 keyed by caller names
	buffers [][]rigmapper.Optional // per-stage output scratch
}

// New returns a processor over stages, evaluated in order. Stages are used
// as given (not cloned); hand each processor its own mappers.
func New(stages ...*rigmapper.RigMapper) *Processor {
	return &Processor{
		stages:  stages,
		caches:  make([]indexCache, len(stages)),
		buffers: make([][]rigmapper.Optional, len(stages)),
	}
}

// NewFromDefinitions builds one stage per definition, through the cache
// when one is configured, and returns ErrInvalidStage for any definition
// that does not load.
func NewFromDefinitions(defs []*definition.Definition, opts ...Option) (*Processor, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if len(defs) == 0 {
		return nil, ErrNoStages
	}
	if o.IDs != nil && len(o.IDs) != len(defs) {
		return nil, fmt.Errorf("processor: %d ids for %d definitions", len(o.IDs), len(defs))
	}
	if o.ValidateChain {
		if err := definition.ValidateChain(defs...); err != nil {
			return nil, err
		}
	}

	stages := make([]*rigmapper.RigMapper, len(defs))
	for i, def := range defs {
		name := fmt.Sprintf("stage%d", i)
		if o.Cache != nil {
			id := ""
			if o.IDs != nil {
				id = o.IDs[i]
			}
			m, err := o.Cache.GetOrBuild(id, def)
			if err != nil {
				return nil, fmt.Errorf("%w %d: %w", ErrInvalidStage, i, err)
			}
			stages[i] = m
			continue
		}
		m := rigmapper.New(rigmapper.WithName(name))
		if !m.Load(def) {
			return nil, fmt.Errorf("%w %d", ErrInvalidStage, i)
		}
		stages[i] = m
	}
	logger.Logger().Debug("processor built", slog.Int("stages", len(stages)))

	return New(stages...), nil
}

// IsValid reports whether the processor has stages and all of them are valid.
func (p *Processor) IsValid() bool {
	if len(p.stages) == 0 {
		return false
	}
	for _, s := range p.stages {
		if s == nil || !s.IsValid() {
			return false
		}
	}

	return true
}

// Stages returns the stage mappers in order.
func (p *Processor) Stages() []*rigmapper.RigMapper { return p.stages }

// InputNames returns the first stage's input names, or nil without stages.
func (p *Processor) InputNames() []string {
	if len(p.stages) == 0 || p.stages[0] == nil {
		return nil
	}

	return p.stages[0].InputNames()
}

// OutputNames returns the last stage's output names, or nil without stages.
func (p *Processor) OutputNames() []string {
	if len(p.stages) == 0 || p.stages[len(p.stages)-1] == nil {
		return nil
	}

	return p.stages[len(p.stages)-1].OutputNames()
}

// EvaluateFrame runs one frame through every stage. names and values are
// parallel; absent values are not set. The last stage's outputs, parallel
// to OutputNames, are written into out (reused when large enough) and
// returned.
//
// It reports false, without touching any stage, when the processor is not
// valid or len(names) != len(values).
func (p *Processor) EvaluateFrame(names []string, values, out []rigmapper.Optional) ([]rigmapper.Optional, bool) {
	out = out[:0]
	if len(names) != len(values) || !p.IsValid() {
		return out, false
	}

	curveNames, curveValues := names, values
	for i, stage := range p.stages {
		index := p.caches[i].resolve(curveNames, stage)
		stage.Reset()
		for j, v := range curveValues {
			if v.Set && index[j] != notFound {
				stage.SetDirectValue(index[j], v.Value)
			}
		}
		p.buffers[i] = stage.OptionalOutputValuesInOrder(p.buffers[i])
		curveNames, curveValues = stage.OutputNames(), p.buffers[i]
	}

	return append(out, curveValues...), true
}

// EvaluateFrames runs every frame with the shared names. Processing is
// best-effort: a failing frame yields an empty result and clears the
// returned flag, but later frames still run.
func (p *Processor) EvaluateFrames(names []string, frames [][]rigmapper.Optional) ([][]rigmapper.Optional, bool) {
	results := make([][]rigmapper.Optional, len(frames))
	allOK := true
	for i, frame := range frames {
		out, ok := p.EvaluateFrame(names, frame, nil)
		if !ok {
			allOK = false
		}
		results[i] = out
	}

	return results, allOK
}

// EvaluatePose runs one frame given as a name → value mapping and returns
// the last stage's outputs by name. Absent outputs are omitted when
// skipUnset is true and reported as 0 otherwise.
func (p *Processor) EvaluatePose(pose map[string]float64, skipUnset bool) (map[string]float64, bool) {
	// sorted so that a stable pose layout keeps the stage 0 index cache warm
	names := make([]string, 0, len(pose))
	for name := range pose {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]rigmapper.Optional, len(names))
	for i, name := range names {
		values[i] = rigmapper.Some(pose[name])
	}

	out, ok := p.EvaluateFrame(names, values, nil)
	if !ok {
		return nil, false
	}
	outNames := p.OutputNames()
	result := make(map[string]float64, len(out))
	for i, v := range out {
		if !v.Set && skipUnset {
			continue
		}
		result[outNames[i]] = v.Value
	}

	return result, true
}

// Clone returns a processor over clones of every stage, for use from
// another goroutine.
func (p *Processor) Clone() *Processor {
	stages := make([]*rigmapper.RigMapper, len(p.stages))
	for i, s := range p.stages {
		if s != nil {
			stages[i] = s.Clone()
		}
	}

	return New(stages...)
}
