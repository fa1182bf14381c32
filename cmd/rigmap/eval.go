// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/katalvlaran/rigmap/rigmapper"
	"github.com/spf13/cobra"
)

var (
	errFrames    = errors.New("one or more frames could not be evaluated")
	errNoOutputs = errors.New("pose could not be evaluated")
)

// frameBatch is the positional input and output form: names once, then one
// row of values per frame, null for absent.
type frameBatch struct {
	Names  []string               `json:"names"`
	Frames [][]rigmapper.Optional `json:"frames"`
}

func newEvalCmd() *cobra.Command {
	var (
		flags  stageFlags
		frames string
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate frames through a chain of definitions",
		Long: `Read frames as JSON from --frames or stdin and write the last stage's
outputs as JSON to stdout.

Two input forms are accepted:
  {"names": ["jaw", ...], "frames": [[0.2, null, ...], ...]}
      positional batch; the result has the same shape with output names.
  {"jaw": 0.2, ...}
      a single pose; the result maps output names to values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			p, err := buildProcessor(cfg)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, frames)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			var probe map[string]json.RawMessage
			if err = json.Unmarshal(raw, &probe); err != nil {
				return fmt.Errorf("frames: %w", err)
			}
			if _, batch := probe["frames"]; batch {
				var in frameBatch
				if err = json.Unmarshal(raw, &in); err != nil {
					return fmt.Errorf("frames: %w", err)
				}
				results, ok := p.EvaluateFrames(in.Names, in.Frames)
				if err = enc.Encode(frameBatch{Names: p.OutputNames(), Frames: results}); err != nil {
					return err
				}
				if !ok {
					return errFrames
				}

				return nil
			}

			var pose map[string]float64
			if err = json.Unmarshal(raw, &pose); err != nil {
				return fmt.Errorf("pose: %w", err)
			}
			out, ok := p.EvaluatePose(pose, cfg.SkipUnset)
			if !ok {
				return errNoOutputs
			}

			return enc.Encode(out)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&frames, "frames", "", "frames JSON file (default stdin)")

	return cmd
}

// readInput returns the contents of path, or of stdin for "" and "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	return os.ReadFile(path)
}
