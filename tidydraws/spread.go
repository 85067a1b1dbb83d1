// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-tidydraws/draws"
	"github.com/aclements/go-tidydraws/tidy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// A tableSource reads a command's input table, either from a table
// file or by spreading draws.
type tableSource struct {
	params []string
	regex  bool
	wide   bool
}

func (ts *tableSource) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVarP(&ts.params, "params", "p", nil, "spread draws of parameter `specs`, such as 'b[i,j] sigma'")
	f.BoolVar(&ts.regex, "regex", false, "match parameter names as regular expressions")
	f.BoolVar(&ts.wide, "wide", false, "read draws from a wide table with .chain and .iteration columns")
}

func (ts *tableSource) specs() ([]tidy.Spec, error) {
	if len(ts.params) == 0 {
		return nil, errors.New("no parameters given (use -p)")
	}
	return parseSpecs(ts.params, ts.regex)
}

// store reads the draws named by args.
func (ts *tableSource) store(args []string) (*draws.Store, error) {
	if ts.wide {
		if len(args) > 1 {
			return nil, errors.New("--wide takes one input table")
		}
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		return readWide(path)
	}
	return readDraws(args)
}

// load returns the input table and, if it was spread from draws, its
// index names.
func (ts *tableSource) load(cmd *cobra.Command, v *viper.Viper, args []string) (*table.Table, []string, error) {
	logger := loggerFromContext(cmd.Context())
	if len(ts.params) == 0 {
		if len(args) > 1 {
			return nil, nil, errors.New("expected one input table")
		}
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		t, err := readTable(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("read table", "path", path, "rows", t.Len(), "columns", len(t.Columns()))
		return t, nil, nil
	}
	t, specs, err := ts.spread(cmd, v, args, tidy.Spread)
	if err != nil {
		return nil, nil, err
	}
	return t, tidy.IndexNames(specs), nil
}

func (ts *tableSource) spread(cmd *cobra.Command, v *viper.Viper, args []string, f func(*draws.Store, []tidy.Spec, tidy.Recovery) (*table.Table, error)) (*table.Table, []tidy.Spec, error) {
	logger := loggerFromContext(cmd.Context())
	specs, err := ts.specs()
	if err != nil {
		return nil, nil, err
	}
	rec, err := recovery(v)
	if err != nil {
		return nil, nil, err
	}
	pr := newProgress(logger)
	s, err := ts.store(args)
	if err != nil {
		return nil, nil, err
	}
	pr.done("read draws", "chains", s.Chains, "iterations", s.Iterations, "parameters", len(s.Names()))

	pr = newProgress(logger)
	t, err := f(s, specs, rec)
	if err != nil {
		return nil, nil, err
	}
	pr.done("spread draws", "rows", t.Len())
	return t, specs, nil
}

// recovery loads the recovery map named by the "recover" setting.
func recovery(v *viper.Viper) (tidy.Recovery, error) {
	path := v.GetString("recover")
	if path == "" {
		return nil, nil
	}
	return loadRecovery(path)
}

func newSpreadCmd(v *viper.Viper, long bool) *cobra.Command {
	var ts tableSource
	cmd := &cobra.Command{
		Use:   "spread -p specs [chain.csv...]",
		Short: "Spread draws into a table with one row per draw and index combination",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := tidy.Spread
			if long {
				f = tidy.Gather
			}
			t, _, err := ts.spread(cmd, v, args, f)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), t)
		},
	}
	if long {
		cmd.Use = "gather -p specs [chain.csv...]"
		cmd.Short = "Gather draws into a long table with term and estimate columns"
	}
	ts.addFlags(cmd)
	return cmd
}

func newUnspreadCmd(v *viper.Viper) *cobra.Command {
	var ts tableSource
	var chain int
	cmd := &cobra.Command{
		Use:   "unspread -p specs [table]",
		Short: "Convert a spread table back into Stan CSV draws",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := ts.specs()
			if err != nil {
				return err
			}
			rec, err := recovery(v)
			if err != nil {
				return err
			}
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			t, err := readTable(path)
			if err != nil {
				return err
			}
			s, err := tidy.Unspread(t, specs, rec)
			if err != nil {
				return err
			}
			if chain < 1 || chain > s.Chains {
				return fmt.Errorf("chain %d out of range [1, %d]", chain, s.Chains)
			}
			return draws.WriteCSV(cmd.OutOrStdout(), s, chain-1)
		},
	}
	cmd.Flags().StringArrayVarP(&ts.params, "params", "p", nil, "parameter `specs` of the table's value columns")
	cmd.Flags().BoolVar(&ts.regex, "regex", false, "match parameter names as regular expressions")
	cmd.Flags().IntVar(&chain, "chain", 1, "write chain `n`")
	return cmd
}
