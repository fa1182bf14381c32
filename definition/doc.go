// SPDX-License-Identifier: MIT

// Package definition describes a rig mapping declaratively and loads it from
// its human-editable JSON or YAML form.
//
// A Definition lists:
//   - Inputs     : the curve names driven by the host each frame;
//   - Features   : named multiply, weighted-sum and piecewise-linear nodes
//     computed from inputs or other features;
//   - Outputs    : an ordered mapping output-name → linked node name;
//   - NullOutputs: names deliberately left without a node in this stage so
//     that a downstream stage may still declare them as inputs.
//
// Wire shape (JSON; YAML mirrors it):
//
//	{
//	  "inputs": ["jawOpen", "smileL"],
//	  "features": {
//	    "multiply":         [{"name": "m", "inputs": ["jawOpen", "smileL"]}],
//	    "weighted_sum":     [{"name": "w", "inputs": {"jawOpen": 0.5}, "range": {"upper_bound": 1}}],
//	    "piecewise_linear": [{"name": "p", "input": "w", "keys": [{"in": 0, "out": 0}, {"in": 1, "out": 1}]}]
//	  },
//	  "outputs": {"CTRL_jaw": "p", "CTRL_smile": "smileL"},
//	  "null_outputs": ["CTRL_unused"]
//	}
//
// Object order of "outputs" and of weighted-sum "inputs" is significant and
// preserved by both codecs: it defines output ordering and summation order.
//
// Validate reports every structural problem at once (errors.Join of
// sentinel-wrapped errors); ValidateChain checks that consecutive stages
// line up. Neither is required by the evaluation core, which applies a
// soft-failure policy of its own.
package definition
