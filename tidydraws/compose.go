// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/aclements/go-tidydraws/compose"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newComposeCmd() *cobra.Command {
	var recoverOut string
	cmd := &cobra.Command{
		Use:   "compose [table]",
		Short: "Print a data table as model input variables",
		Long: `Compose prints the columns of a data table as YAML model input.
String columns are coded as 1-based level numbers with an n_<column>
count, and n gives the number of rows.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			t, err := readTable(path)
			if err != nil {
				return err
			}
			d, err := compose.Compose(t)
			if err != nil {
				return err
			}
			if recoverOut != "" {
				if err := saveRecovery(recoverOut, compose.Recovery(t)); err != nil {
					return err
				}
				loggerFromContext(cmd.Context()).Debug("saved recovery map", "path", recoverOut)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			if err := enc.Encode(d); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&recoverOut, "save-recover", "", "save the index recovery map to `file` (YAML or TOML)")
	return cmd
}
