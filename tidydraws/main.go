// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tidydraws reshapes and summarizes posterior draws.
//
// Draws are read from Stan CSV files, one chain per file. The spread
// and gather commands turn the draws of the named parameters into a
// tidy table with one row per draw and index combination:
//
//	tidydraws spread -p 'b[i,j] sigma' chain1.csv chain2.csv
//
// summarize, compare, terms, and plot operate on such tables, read
// either from a CSV or TSV file or, with -p, spread directly from
// draws:
//
//	tidydraws summarize -p 'b[i]' --method mode_hdi --prob 0.8,0.95 chain*.csv
//
// compose prints the variables a model would be fit to, and can save
// the map used to label index values again with --recover.
//
// Tables are printed aligned on a terminal and as TSV otherwise.
// Every persistent flag can also be set in the environment as
// TIDYDRAWS_<FLAG> (for example TIDYDRAWS_METHOD) or in a --config
// file.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := newConfig()
	root := &cobra.Command{
		Use:          "tidydraws",
		Short:        "Reshape and summarize posterior draws",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if path := v.GetString("config"); path != "" {
				if err := readConfigFile(v, path); err != nil {
					return err
				}
			}
			level := log.InfoLevel
			if v.GetBool("verbose") {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.String("config", "", "read settings from YAML or TOML `file`")
	pf.String("recover", "", "label index values using the recovery map in `file`")
	pf.String("method", "median_qi", "point estimate and interval `method`, such as mean_qi or mode_hdi")
	pf.Int("parallel", 1, "summarize up to `n` groups concurrently")

	root.AddCommand(newSpreadCmd(v, false))
	root.AddCommand(newSpreadCmd(v, true))
	root.AddCommand(newUnspreadCmd(v))
	root.AddCommand(newSummarizeCmd(v))
	root.AddCommand(newCompareCmd(v))
	root.AddCommand(newTermsCmd(v))
	root.AddCommand(newPlotCmd(v))
	root.AddCommand(newComposeCmd())
	return root
}
