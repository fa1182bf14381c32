// SPDX-License-Identifier: MIT

package definition

import (
	"errors"
	"path/filepath"
	"strings"
)

// Sentinel errors reported by parsing and validation.
var (
	// ErrEmptyName indicates an input, feature, output or reference with an empty name.
	ErrEmptyName = errors.New("definition: empty name")

	// ErrDuplicateName indicates a name registered twice across inputs and features.
	ErrDuplicateName = errors.New("definition: duplicate name")

	// ErrUnresolvedReference indicates a feature referencing an unknown name.
	ErrUnresolvedReference = errors.New("definition: unresolved reference")

	// ErrMissingOutput indicates an output linked to an unknown name.
	ErrMissingOutput = errors.New("definition: output links to unknown name")

	// ErrNoInputs indicates a definition without inputs.
	ErrNoInputs = errors.New("definition: no inputs")

	// ErrNoOutputs indicates a definition without outputs.
	ErrNoOutputs = errors.New("definition: no outputs")

	// ErrNoKeys indicates a piecewise-linear feature without keys.
	ErrNoKeys = errors.New("definition: piecewise-linear feature has no keys")

	// ErrNoFeatureInputs indicates a weighted-sum or multiply feature without inputs.
	ErrNoFeatureInputs = errors.New("definition: feature has no inputs")

	// ErrCycle indicates features that reference each other in a loop.
	ErrCycle = errors.New("definition: cycle detected")

	// ErrNullOutputConflict indicates a null output that is also a real output.
	ErrNullOutputConflict = errors.New("definition: null output shadows an output")

	// ErrChainMismatch indicates a stage input that the previous stage neither outputs nor nulls.
	ErrChainMismatch = errors.New("definition: stage input not provided by previous stage")

	// ErrUnknownFormat indicates an unsupported serialization format.
	ErrUnknownFormat = errors.New("definition: unknown format")

	// ErrNilDefinition indicates a nil *Definition argument.
	ErrNilDefinition = errors.New("definition: nil definition")
)

// Format selects the serialization used by Parse and Marshal.
type Format int

const (
	// FormatJSON is the canonical human-editable form.
	FormatJSON Format = iota

	// FormatYAML carries the same shape as FormatJSON.
	FormatYAML
)

// String returns the lower-case format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatFromPath picks a Format by file extension (.json, .yaml, .yml).
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, ErrUnknownFormat
	}
}

// Definition is the declarative description of one mapping stage.
type Definition struct {
	Inputs      []string    `json:"inputs" yaml:"inputs"`
	Features    Features    `json:"features" yaml:"features"`
	Outputs     OutputLinks `json:"outputs" yaml:"outputs"`
	NullOutputs []string    `json:"null_outputs,omitempty" yaml:"null_outputs,omitempty"`
}

// Features groups the composite node declarations by kind.
type Features struct {
	Multiply        []MultiplyFeature        `json:"multiply,omitempty" yaml:"multiply,omitempty"`
	WeightedSum     []WeightedSumFeature     `json:"weighted_sum,omitempty" yaml:"weighted_sum,omitempty"`
	PiecewiseLinear []PiecewiseLinearFeature `json:"piecewise_linear,omitempty" yaml:"piecewise_linear,omitempty"`
}

// Len returns the total number of declared features.
func (f Features) Len() int {
	return len(f.Multiply) + len(f.WeightedSum) + len(f.PiecewiseLinear)
}

// MultiplyFeature is the product of its inputs.
type MultiplyFeature struct {
	Name   string   `json:"name" yaml:"name"`
	Inputs []string `json:"inputs" yaml:"inputs"`
}

// WeightedSumFeature is sum(weight·input), optionally clamped to Range.
type WeightedSumFeature struct {
	Name   string         `json:"name" yaml:"name"`
	Inputs WeightedInputs `json:"inputs" yaml:"inputs"`
	Range  Range          `json:"range,omitzero" yaml:"range,omitempty"`
}

// WeightedInput is one (name, weight) term of a weighted sum.
type WeightedInput struct {
	Name   string
	Weight float64
}

// WeightedInputs keeps weighted-sum terms in declaration order.
// On the wire it is an object {"name": weight, ...}.
type WeightedInputs []WeightedInput

// Range holds the optional clamp bounds of a weighted sum.
// A nil bound is not applied; bounds are independent of each other.
type Range struct {
	Lower *float64 `json:"lower_bound,omitempty" yaml:"lower_bound,omitempty"`
	Upper *float64 `json:"upper_bound,omitempty" yaml:"upper_bound,omitempty"`
}

// IsZero reports whether neither bound is set (used by omitempty in YAML).
func (r Range) IsZero() bool { return r.Lower == nil && r.Upper == nil }

// PiecewiseLinearFeature maps its single input through sorted Keys.
type PiecewiseLinearFeature struct {
	Name  string `json:"name" yaml:"name"`
	Input string `json:"input" yaml:"input"`
	Keys  []Key  `json:"keys" yaml:"keys"`
}

// Key is one (in, out) control point of a piecewise-linear curve.
type Key struct {
	In  float64 `json:"in" yaml:"in"`
	Out float64 `json:"out" yaml:"out"`
}

// OutputLink binds an output curve name to the node that produces it.
type OutputLink struct {
	Name   string
	Linked string
}

// OutputLinks keeps outputs in declaration order.
// On the wire it is an object {"output": "linked", ...}.
type OutputLinks []OutputLink

// Names returns the output names in order.
func (o OutputLinks) Names() []string {
	names := make([]string, len(o))
	for i := range o {
		names[i] = o[i].Name
	}

	return names
}

// Bound returns a pointer to v, for building Range literals.
func Bound(v float64) *float64 { return &v }
