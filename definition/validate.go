// SPDX-License-Identifier: MIT

package definition

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Visitation colors for the feature dependency walk.
const (
	white = iota // not visited yet
	gray         // on the current DFS path
	black        // fully explored
)

// Validate checks the structural soundness of d and reports every problem
// found, joined with errors.Join. Each joined error wraps one of the
// package sentinels so callers can test with errors.Is.
//
// Checks, in order:
//  1. at least one input and one output;
//  2. non-empty names, unique across inputs and features;
//  3. feature bodies: references resolve, weighted sums and multiplies have
//     inputs, piecewise-linear curves have keys;
//  4. outputs link to known names and are unique; null outputs do not
//     shadow outputs;
//  5. the feature reference graph is acyclic.
//
// Complexity: O(N + E) for N names and E references.
func (d *Definition) Validate() error {
	if d == nil {
		return ErrNilDefinition
	}
	var errs []error
	// 1. Shape
	if len(d.Inputs) == 0 {
		errs = append(errs, ErrNoInputs)
	}
	if len(d.Outputs) == 0 {
		errs = append(errs, ErrNoOutputs)
	}

	// 2. Name registration
	known := make(map[string]struct{}, len(d.Inputs)+d.Features.Len())
	register := func(kind, name string) {
		if name == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrEmptyName, kind))
			return
		}
		if _, dup := known[name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateName, name))
			return
		}
		known[name] = struct{}{}
	}
	for _, in := range d.Inputs {
		register("input", in)
	}
	for _, f := range d.Features.Multiply {
		register("multiply feature", f.Name)
	}
	for _, f := range d.Features.WeightedSum {
		register("weighted_sum feature", f.Name)
	}
	for _, f := range d.Features.PiecewiseLinear {
		register("piecewise_linear feature", f.Name)
	}

	// 3. Feature bodies
	resolve := func(feature, ref string) {
		if ref == "" {
			errs = append(errs, fmt.Errorf("%w: reference in %q", ErrEmptyName, feature))
			return
		}
		if _, ok := known[ref]; !ok {
			errs = append(errs, fmt.Errorf("%w: %q references %q", ErrUnresolvedReference, feature, ref))
		}
	}
	for _, f := range d.Features.Multiply {
		if len(f.Inputs) == 0 {
			errs = append(errs, fmt.Errorf("%w: %q", ErrNoFeatureInputs, f.Name))
		}
		for _, ref := range f.Inputs {
			resolve(f.Name, ref)
		}
	}
	for _, f := range d.Features.WeightedSum {
		if len(f.Inputs) == 0 {
			errs = append(errs, fmt.Errorf("%w: %q", ErrNoFeatureInputs, f.Name))
		}
		for _, term := range f.Inputs {
			resolve(f.Name, term.Name)
		}
	}
	for _, f := range d.Features.PiecewiseLinear {
		if len(f.Keys) == 0 {
			errs = append(errs, fmt.Errorf("%w: %q", ErrNoKeys, f.Name))
		}
		resolve(f.Name, f.Input)
	}

	// 4. Outputs and null outputs
	outputs := make(map[string]struct{}, len(d.Outputs))
	for _, o := range d.Outputs {
		if o.Name == "" {
			errs = append(errs, fmt.Errorf("%w: output", ErrEmptyName))
			continue
		}
		if _, dup := outputs[o.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: output %q", ErrDuplicateName, o.Name))
		}
		outputs[o.Name] = struct{}{}
		if _, ok := known[o.Linked]; !ok {
			errs = append(errs, fmt.Errorf("%w: %q -> %q", ErrMissingOutput, o.Name, o.Linked))
		}
	}
	for _, n := range d.NullOutputs {
		if _, clash := outputs[n]; clash {
			errs = append(errs, fmt.Errorf("%w: %q", ErrNullOutputConflict, n))
		}
	}

	// 5. Cycles
	if cycle := d.findCycle(); cycle != nil {
		errs = append(errs, fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> ")))
	}

	return errors.Join(errs...)
}

// ValidateChain checks that defs can run in series: every input of stage
// i > 0 must be an output or a null output of stage i-1. Each definition is
// validated on its own first.
func ValidateChain(defs ...*Definition) error {
	var errs []error
	for i, d := range defs {
		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("stage %d: %w", i, err))
			continue
		}
		if i == 0 {
			continue
		}
		prev := defs[i-1]
		if prev == nil {
			continue
		}
		provided := make(map[string]struct{}, len(prev.Outputs)+len(prev.NullOutputs))
		for _, o := range prev.Outputs {
			provided[o.Name] = struct{}{}
		}
		for _, n := range prev.NullOutputs {
			provided[n] = struct{}{}
		}
		for _, in := range d.Inputs {
			if _, ok := provided[in]; !ok {
				errs = append(errs, fmt.Errorf("stage %d: %w: %q", i, ErrChainMismatch, in))
			}
		}
	}

	return errors.Join(errs...)
}

// dependencies returns feature name → referenced names (features only;
// inputs are leaves and cannot close a loop).
func (d *Definition) dependencies() map[string][]string {
	deps := make(map[string][]string, d.Features.Len())
	for _, f := range d.Features.Multiply {
		deps[f.Name] = append(deps[f.Name], f.Inputs...)
	}
	for _, f := range d.Features.WeightedSum {
		for _, term := range f.Inputs {
			deps[f.Name] = append(deps[f.Name], term.Name)
		}
	}
	for _, f := range d.Features.PiecewiseLinear {
		deps[f.Name] = append(deps[f.Name], f.Input)
	}

	return deps
}

// findCycle returns the first feature cycle found (closed: first == last),
// or nil. Roots are visited in sorted order so the report is deterministic.
func (d *Definition) findCycle() []string {
	deps := d.dependencies()
	roots := make([]string, 0, len(deps))
	for name := range deps {
		roots = append(roots, name)
	}
	sort.Strings(roots)

	state := make(map[string]int, len(deps))
	path := make([]string, 0, len(deps))
	var visit func(name string) []string
	visit = func(name string) []string {
		state[name] = gray
		path = append(path, name)
		for _, next := range deps[name] {
			if _, isFeature := deps[next]; !isFeature {
				continue
			}
			switch state[next] {
			case white:
				if c := visit(next); c != nil {
					return c
				}
			case gray:
				// back-edge: the cycle is the path suffix starting at next
				idx := slices.Index(path, next)
				cycle := append(slices.Clone(path[idx:]), next)

				return cycle
			}
		}
		path = path[:len(path)-1]
		state[name] = black

		return nil
	}
	for _, r := range roots {
		if state[r] == white {
			if c := visit(r); c != nil {
				return c
			}
		}
	}

	return nil
}
