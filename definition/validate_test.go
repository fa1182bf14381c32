// SPDX-License-Identifier: MIT

package definition_test

import (
	"testing"

	"github.com/katalvlaran/rigmap/definition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base returns a small valid definition for mutation by tests.
func base() *definition.Definition {
	return &definition.Definition{
		Inputs: []string{"a", "b"},
		Features: definition.Features{
			Multiply: []definition.MultiplyFeature{{Name: "m", Inputs: []string{"a", "b"}}},
			WeightedSum: []definition.WeightedSumFeature{{
				Name: "w", Inputs: definition.WeightedInputs{{Name: "m", Weight: 1}},
			}},
			PiecewiseLinear: []definition.PiecewiseLinearFeature{{
				Name: "p", Input: "w", Keys: []definition.Key{{In: 0, Out: 0}, {In: 1, Out: 1}},
			}},
		},
		Outputs: definition.OutputLinks{{Name: "out", Linked: "p"}},
	}
}

// TestValidate_OK verifies the base definition passes.
func TestValidate_OK(t *testing.T) {
	assert.NoError(t, base().Validate())
}

// TestValidate_Errors maps each structural defect onto its sentinel.
func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *definition.Definition)
		want   error
	}{
		{"no inputs", func(d *definition.Definition) { d.Inputs = nil }, definition.ErrNoInputs},
		{"no outputs", func(d *definition.Definition) { d.Outputs = nil }, definition.ErrNoOutputs},
		{"empty input", func(d *definition.Definition) { d.Inputs = append(d.Inputs, "") }, definition.ErrEmptyName},
		{"duplicate input", func(d *definition.Definition) { d.Inputs = append(d.Inputs, "a") }, definition.ErrDuplicateName},
		{"feature shadows input", func(d *definition.Definition) { d.Features.Multiply[0].Name = "a" }, definition.ErrDuplicateName},
		{"unresolved multiply", func(d *definition.Definition) {
			d.Features.Multiply[0].Inputs = []string{"ghost"}
		}, definition.ErrUnresolvedReference},
		{"unresolved weight", func(d *definition.Definition) {
			d.Features.WeightedSum[0].Inputs[0].Name = "ghost"
		}, definition.ErrUnresolvedReference},
		{"unresolved curve", func(d *definition.Definition) {
			d.Features.PiecewiseLinear[0].Input = "ghost"
		}, definition.ErrUnresolvedReference},
		{"empty reference", func(d *definition.Definition) {
			d.Features.PiecewiseLinear[0].Input = ""
		}, definition.ErrEmptyName},
		{"no keys", func(d *definition.Definition) { d.Features.PiecewiseLinear[0].Keys = nil }, definition.ErrNoKeys},
		{"no multiply inputs", func(d *definition.Definition) { d.Features.Multiply[0].Inputs = nil }, definition.ErrNoFeatureInputs},
		{"no weighted inputs", func(d *definition.Definition) { d.Features.WeightedSum[0].Inputs = nil }, definition.ErrNoFeatureInputs},
		{"missing output", func(d *definition.Definition) { d.Outputs[0].Linked = "ghost" }, definition.ErrMissingOutput},
		{"empty output", func(d *definition.Definition) { d.Outputs[0].Name = "" }, definition.ErrEmptyName},
		{"duplicate output", func(d *definition.Definition) {
			d.Outputs = append(d.Outputs, definition.OutputLink{Name: "out", Linked: "a"})
		}, definition.ErrDuplicateName},
		{"null output clash", func(d *definition.Definition) { d.NullOutputs = []string{"out"} }, definition.ErrNullOutputConflict},
		{"cycle", func(d *definition.Definition) {
			d.Features.Multiply[0].Inputs = []string{"a", "p"}
		}, definition.ErrCycle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := base()
			tc.mutate(d)
			assert.ErrorIs(t, d.Validate(), tc.want)
		})
	}

	var nilDef *definition.Definition
	assert.ErrorIs(t, nilDef.Validate(), definition.ErrNilDefinition)
}

// TestValidate_ReportsEverything verifies independent defects are all joined.
func TestValidate_ReportsEverything(t *testing.T) {
	d := base()
	d.Features.PiecewiseLinear[0].Keys = nil
	d.Outputs[0].Linked = "ghost"
	err := d.Validate()
	assert.ErrorIs(t, err, definition.ErrNoKeys)
	assert.ErrorIs(t, err, definition.ErrMissingOutput)
}

// TestValidate_CycleMessage verifies the reported loop names its members in order.
func TestValidate_CycleMessage(t *testing.T) {
	d := base()
	d.Features.Multiply[0].Inputs = []string{"p"}
	err := d.Validate()
	require.ErrorIs(t, err, definition.ErrCycle)
	assert.Contains(t, err.Error(), "m -> p -> w -> m")
}

// TestValidateChain verifies stage inputs must come from the previous stage's
// outputs or null outputs.
func TestValidateChain(t *testing.T) {
	first := base()
	second := &definition.Definition{
		Inputs:  []string{"out", "dropped"},
		Outputs: definition.OutputLinks{{Name: "final", Linked: "out"}},
	}

	err := definition.ValidateChain(first, second)
	assert.ErrorIs(t, err, definition.ErrChainMismatch)
	assert.Contains(t, err.Error(), `"dropped"`)

	first.NullOutputs = []string{"dropped"}
	assert.NoError(t, definition.ValidateChain(first, second))

	second.Outputs = nil
	assert.ErrorIs(t, definition.ValidateChain(first, second), definition.ErrNoOutputs)
	assert.NoError(t, definition.ValidateChain())
}
