// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/katalvlaran/rigmap/cache"
	"github.com/katalvlaran/rigmap/config"
	"github.com/katalvlaran/rigmap/definition"
	"github.com/katalvlaran/rigmap/logger"
	"github.com/katalvlaran/rigmap/processor"
	"github.com/katalvlaran/rigmap/rigmapper"
	"github.com/spf13/cobra"
)

// Flag names shared between commands.
const (
	flagLogLevel  = "log-level"
	flagDef       = "def"
	flagConfig    = "config"
	flagSkipUnset = "skip-unset"
	flagStrict    = "strict"
)

var errNoStages = errors.New("no stages: pass --def or --config")

// newRootCmd assembles the command tree. Each call returns a fresh tree so
// tests can run commands independently.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rigmap",
		Short: "Evaluate facial rig mapping chains",
		Long: `rigmap drives chains of rig mapping definitions: named input curves pass
through weighted sums, piecewise-linear curves and products to produce
named output curves, and each stage feeds the next.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := cmd.Flags().GetString(flagLogLevel)
			if err != nil {
				return err
			}

			return setupLogging(cmd.ErrOrStderr(), level)
		},
	}
	root.PersistentFlags().String(flagLogLevel, "warn", "log level: debug, info, warn or error")
	root.AddCommand(newValidateCmd(), newInspectCmd(), newEvalCmd(), newWatchCmd())

	return root
}

// setupLogging installs a text slog handler on w at level.
func setupLogging(w io.Writer, level string) error {
	lvl, ok := logger.ParseLevel(level)
	if !ok {
		return fmt.Errorf("%w: %q", config.ErrBadLogLevel, level)
	}
	logger.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))

	return nil
}

// stageFlags are the flags of commands that build a processor.
type stageFlags struct {
	defs       []string
	configPath string
	skipUnset  bool
	strict     bool
}

func (f *stageFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringArrayVar(&f.defs, flagDef, nil, "definition file of the next stage (repeatable)")
	fs.StringVar(&f.configPath, flagConfig, "", "YAML run configuration")
	fs.BoolVar(&f.skipUnset, flagSkipUnset, false, "omit absent outputs instead of reporting 0")
	fs.BoolVar(&f.strict, flagStrict, false, "fully validate each definition before building it")
}

// resolve merges defaults, the config file, RIGMAP_* variables and flags,
// in increasing precedence, and reinstalls logging at the resulting level.
func (f *stageFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
		if err = cfg.ApplyEnvironment(); err != nil {
			return nil, err
		}
	}

	fs := cmd.Flags()
	if len(f.defs) > 0 {
		cfg.Stages = f.defs
	}
	if fs.Changed(flagSkipUnset) {
		cfg.SkipUnset = f.skipUnset
	}
	if fs.Changed(flagStrict) {
		cfg.Strict = f.strict
	}
	if fs.Changed(flagLogLevel) {
		if cfg.LogLevel, err = fs.GetString(flagLogLevel); err != nil {
			return nil, err
		}
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Stages) == 0 {
		return nil, errNoStages
	}

	return cfg, setupLogging(cmd.ErrOrStderr(), cfg.LogLevel)
}

// buildProcessor loads cfg.Stages and chains them through a cache keyed by
// file path.
func buildProcessor(cfg *config.Config) (*processor.Processor, error) {
	var mopts []rigmapper.Option
	if cfg.Strict {
		mopts = append(mopts, rigmapper.WithStrict())
	}
	c, err := cache.New(cache.WithSize(cfg.CacheSize), cache.WithMapperOptions(mopts...))
	if err != nil {
		return nil, err
	}

	defs := make([]*definition.Definition, len(cfg.Stages))
	ids := make([]string, len(cfg.Stages))
	for i, path := range cfg.Stages {
		if defs[i], err = definition.LoadFile(path); err != nil {
			return nil, err
		}
		ids[i] = cache.FileKey(path)
	}

	opts := []processor.Option{processor.WithCache(c), processor.WithIDs(ids...)}
	if cfg.ValidateChain {
		opts = append(opts, processor.WithChainValidation())
	}

	return processor.NewFromDefinitions(defs, opts...)
}
