// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajroetker/go-lumahist/hist/experiment"
)

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:           "lumahist",
		Short:         "Compare luminance histogram update strategies",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &Config{}
			if cfgPath != "" {
				loaded, err := LoadConfig(cfgPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			if err := applyFlags(cmd.Flags(), cfg); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				if errors.Is(err, ErrNoSize) {
					return fmt.Errorf("%w (use --bitmap-size or a config file with sizes)", err)
				}
				return err
			}
			cmd.SilenceUsage = true

			logger := newLogger(cmd.ErrOrStderr(), verbose)
			return run(cmd, cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgPath, "config", "", "TOML sweep configuration file")
	flags.Int("bitmap-size", 0, "number of pixels to synthesize")
	flags.Int("nthreads", 0, "requested worker count (0 = default of 2)")
	flags.Int("repeat", 1, "runs per strategy, fastest kept")
	flags.StringSlice("strategies", nil, "strategies to run (default all available)")
	flags.StringArray("family", nil, "update family override as kind=direct|aggregate (repeatable)")
	flags.Bool("print-histogram", false, "print the reference histogram")
	flags.Bool("raw", false, "print one line per size: size followed by seconds per strategy")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log per-run diagnostics to stderr")

	cmd.AddCommand(newInfoCmd())
	return cmd
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(flags *pflag.FlagSet, cfg *Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Changed(name) {
			err = apply()
		}
	}
	set("bitmap-size", func() error {
		n, err := flags.GetInt("bitmap-size")
		cfg.Sizes = []int{n}
		return err
	})
	set("nthreads", func() (err error) {
		cfg.NThreads, err = flags.GetInt("nthreads")
		return err
	})
	set("repeat", func() (err error) {
		cfg.Repeat, err = flags.GetInt("repeat")
		return err
	})
	set("strategies", func() (err error) {
		cfg.Strategies, err = flags.GetStringSlice("strategies")
		return err
	})
	set("family", func() error {
		values, err := flags.GetStringArray("family")
		if err != nil {
			return err
		}
		for _, v := range values {
			if err := cfg.parseFamilyFlag(v); err != nil {
				return err
			}
		}
		return nil
	})
	set("print-histogram", func() (err error) {
		cfg.PrintHistogram, err = flags.GetBool("print-histogram")
		return err
	})
	set("raw", func() (err error) {
		cfg.Raw, err = flags.GetBool("raw")
		return err
	})
	return err
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(cmd *cobra.Command, cfg *Config, logger *slog.Logger) error {
	kinds, err := cfg.Kinds()
	if err != nil {
		return err
	}
	overrides, err := cfg.FamilyOverrides()
	if err != nil {
		return err
	}

	opts := []experiment.Option{
		experiment.WithWorkers(cfg.NThreads),
		experiment.WithRepeat(cfg.Repeat),
		experiment.WithLogger(logger),
	}
	for k, f := range overrides {
		opts = append(opts, experiment.WithFamily(k, f))
	}

	reports, err := experiment.Sweep(cmd.Context(), cfg.Sizes, kinds, opts...)

	out := cmd.OutOrStdout()
	for _, r := range reports {
		if cfg.Raw {
			writeRaw(out, r, kinds)
		} else {
			writeReport(out, r)
		}
		if cfg.PrintHistogram {
			writeHistogram(out, r.Reference)
		}
	}
	return err
}
