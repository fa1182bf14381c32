// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/katalvlaran/rigmap/cache"
	"github.com/katalvlaran/rigmap/rigmapper"
	"github.com/katalvlaran/rigmap/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch DEF...",
		Short: "Rebuild definitions whenever they change on disk",
		Long: `Build each definition, then rebuild and report it every time the file is
written, replaced or removed. Runs until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := cache.New(cache.WithMapperOptions(rigmapper.WithStrict()))
	if err != nil {
		return err
	}

	var mu sync.Mutex
	out := cmd.OutOrStdout()
	report := func(path string) {
		m, err := c.GetOrLoadFile(path)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintf(out, "FAIL %s\n", path)
			printIndented(out, err)
			return
		}
		fmt.Fprintf(out, "ok   %s (%d outputs)\n", path, len(m.OutputNames()))
	}

	w, err := watch.New(c, watch.WithOnChange(func(ev watch.Event) { report(ev.Path) }))
	if err != nil {
		return err
	}
	defer w.Close()
	for _, path := range args {
		if err = w.Add(path); err != nil {
			return err
		}
	}
	for _, path := range w.Files() {
		report(path)
	}

	if err = w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
