// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/rigmap/definition"
	"github.com/spf13/cobra"
)

var errInvalid = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate DEF...",
		Short: "Check definitions and, for several, that they chain",
		Long: `Parse and validate each definition file. With more than one file the
definitions are also checked as a chain: every input of a stage must be an
output or a null output of the stage before it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	defs := make([]*definition.Definition, 0, len(args))
	failed := false
	for _, path := range args {
		def, err := definition.LoadFile(path)
		if err == nil {
			err = def.Validate()
		}
		if err != nil {
			failed = true
			fmt.Fprintf(out, "FAIL %s\n", path)
			printIndented(out, err)
			continue
		}
		defs = append(defs, def)
		fmt.Fprintf(out, "ok   %s (%d inputs, %d features, %d outputs)\n",
			path, len(def.Inputs), def.Features.Len(), len(def.Outputs))
	}
	if failed {
		return errInvalid
	}

	if len(defs) > 1 {
		if err := definition.ValidateChain(defs...); err != nil {
			fmt.Fprintln(out, "FAIL chain")
			printIndented(out, err)
			return errInvalid
		}
		fmt.Fprintf(out, "ok   chain of %d stages\n", len(defs))
	}

	return nil
}
