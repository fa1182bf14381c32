// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/katalvlaran/rigmap/definition"
	"github.com/katalvlaran/rigmap/rigmapper"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect DEF",
		Short: "Print the node graph built from a definition",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	def, err := definition.LoadFile(path)
	if err != nil {
		return err
	}
	m := rigmapper.New(rigmapper.WithName(filepath.Base(path)))
	if !m.Load(def) {
		if verr := def.Validate(); verr != nil {
			return fmt.Errorf("%s: %w", path, verr)
		}

		return fmt.Errorf("%s: %w", path, errInvalid)
	}

	col := m.Collection()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "mapping\t%s\n", m.Name())
	fmt.Fprintf(tw, "nodes\t%d\n", col.Len())
	for _, k := range []rigmapper.NodeKind{
		rigmapper.KindInput, rigmapper.KindWeightedSum, rigmapper.KindPiecewiseLinear, rigmapper.KindMultiply,
	} {
		fmt.Fprintf(tw, "  %s\t%d\n", k, col.Count(k))
	}
	fmt.Fprintf(tw, "outputs\t%d\n", len(m.OutputNames()))
	for _, o := range def.Outputs {
		ref, ok := m.NodeRef(o.Linked)
		if !ok {
			fmt.Fprintf(tw, "  %s\t<- %s\t(dropped)\n", o.Name, o.Linked)
			continue
		}
		fmt.Fprintf(tw, "  %s\t<- %s\t%s\n", o.Name, o.Linked, ref)
	}
	if len(def.NullOutputs) > 0 {
		fmt.Fprintf(tw, "null outputs\t%s\n", strings.Join(def.NullOutputs, ", "))
	}

	return tw.Flush()
}

// printIndented writes each line of err's message indented by two spaces.
func printIndented(w io.Writer, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
