// SPDX-License-Identifier: MIT

package rigmapper

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// NodeKind tags which slice of a NodeCollection a NodeRef points into.
type NodeKind uint8

const (
	KindNone            NodeKind = iota // unresolved reference, always absent
	KindInput                           // externally driven value
	KindWeightedSum                     // clamped linear combination
	KindPiecewiseLinear                 // 1-D lookup curve
	KindMultiply                        // product of inputs
)

// String returns the definition-file spelling of k.
func (k NodeKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindWeightedSum:
		return "weighted_sum"
	case KindPiecewiseLinear:
		return "piecewise_linear"
	case KindMultiply:
		return "multiply"
	default:
		return "none"
	}
}

// NodeRef is a tagged index into a NodeCollection.
// The zero value has KindNone and never resolves.
type NodeRef struct {
	Kind NodeKind
	Slot int
}

// IsNone reports whether r is an unresolved reference.
func (r NodeRef) IsNone() bool { return r.Kind == KindNone }

// String renders r as kind[slot].
func (r NodeRef) String() string {
	return r.Kind.String() + "[" + strconv.Itoa(r.Slot) + "]"
}

// Optional is a value that may be absent. It is the per-curve currency of
// the positional APIs and of multi-stage processing.
// In JSON an absent value is null.
type Optional struct {
	Value float64
	Set   bool
}

// Some returns a present Optional holding v.
func Some(v float64) Optional { return Optional{Value: v, Set: true} }

// None returns an absent Optional.
func None() Optional { return Optional{} }

// Get returns the value and whether it is present.
func (o Optional) Get() (float64, bool) { return o.Value, o.Set }

// Or returns the value, or def when absent.
func (o Optional) Or(def float64) float64 {
	if o.Set {
		return o.Value
	}

	return def
}

// MarshalJSON encodes an absent value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}

	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes null as absent and a number as present.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)

	return nil
}

// Option configures a RigMapper at construction.
type Option func(*Options)

// Options holds RigMapper construction settings.
type Options struct {
	// Name labels the mapper in log records. Default "rigmapper".
	Name string

	// Strict makes Load reject any definition failing definition.Validate,
	// instead of applying the soft-failure policy (uninitialized features,
	// dropped outputs). Default false.
	Strict bool
}

// DefaultOptions returns Options with Name "rigmapper" and Strict off.
func DefaultOptions() Options {
	return Options{Name: "rigmapper"}
}

// WithName sets the log label.
func WithName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Name = name
		}
	}
}

// WithStrict enables up-front definition validation in Load.
func WithStrict() Option {
	return func(o *Options) { o.Strict = true }
}
