// SPDX-License-Identifier: MIT

// Package processor chains rig mappings in series: the outputs of stage i,
// matched by name, become the inputs of stage i+1, and the last stage's
// outputs are the result.
//
// Frame flow:
//
//	names/values ─▶ stage 0 ─▶ outputs₀ ─▶ stage 1 ─▶ … ─▶ outputsₙ
//
// Each stage is Reset, fed, then read. Absent values are never forwarded:
// a curve missing mid-chain leaves the downstream input unset for the frame
// rather than reading 0.
//
// Name matching is cached per stage as an index table from upstream curve
// position to stage input slot, so a stable curve layout costs no string
// lookups after the first frame. The table is rebuilt whenever the incoming
// names differ from those it was built for, in length or content.
//
// A Processor is not safe for concurrent use; Clone one per goroutine.
package processor
