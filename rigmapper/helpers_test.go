// SPDX-License-Identifier: MIT

package rigmapper_test

import (
	"testing"

	"github.com/katalvlaran/rigmap/definition"
	"github.com/katalvlaran/rigmap/rigmapper"
	"github.com/stretchr/testify/require"
)

// Common curve names used across rigmapper tests.
const (
	InA = "A"
	InB = "B"
	InC = "C"

	OutX = "X"
	OutY = "Y"
	OutZ = "Z"
)

// tolerance for float comparisons after arithmetic.
const tolerance = 1e-9

// passThrough returns a definition with inputs A, B whose outputs X, Y link
// directly to them.
func passThrough() *definition.Definition {
	return &definition.Definition{
		Inputs: []string{InA, InB},
		Outputs: definition.OutputLinks{
			{Name: OutX, Linked: InA},
			{Name: OutY, Linked: InB},
		},
	}
}

// withFeature returns a definition over inputs A, B, C with features f and
// a single output X linked to target.
func withFeature(f definition.Features, target string) *definition.Definition {
	return &definition.Definition{
		Inputs:   []string{InA, InB, InC},
		Features: f,
		Outputs:  definition.OutputLinks{{Name: OutX, Linked: target}},
	}
}

// mustLoad builds a mapper from def and fails the test if Load refuses it.
func mustLoad(t *testing.T, def *definition.Definition, opts ...rigmapper.Option) *rigmapper.RigMapper {
	t.Helper()
	m := rigmapper.New(opts...)
	require.True(t, m.Load(def), "Load must succeed")
	require.True(t, m.IsValid())

	return m
}

// frame resets m, sets the given inputs and returns the optional value of
// output X.
func frame(m *rigmapper.RigMapper, inputs map[string]float64) rigmapper.Optional {
	m.Reset()
	for name, v := range inputs {
		m.SetDirectValueByName(name, v)
	}
	out := m.OptionalOutputValuesInOrder(nil)

	return out[0]
}
