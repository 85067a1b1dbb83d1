// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-tidydraws/interval"
	"github.com/aclements/go-tidydraws/tidy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func method(v *viper.Viper) (interval.Method, error) {
	return interval.ParseMethod(v.GetString("method"))
}

// defaultKeys returns the columns of a table read from a file that
// identify groups: those that did not parse as floating point, other
// than "."-prefixed draw columns.
func defaultKeys(t *table.Table) []string {
	var keys []string
	for _, col := range t.Columns() {
		if strings.HasPrefix(col, ".") {
			continue
		}
		switch t.MustColumn(col).(type) {
		case []float64, []float32:
			continue
		}
		keys = append(keys, col)
	}
	return keys
}

func newSummarizeCmd(v *viper.Viper) *cobra.Command {
	var (
		ts      tableSource
		keys    []string
		cols    []string
		probs   []float64
		keepNaN bool
	)
	cmd := &cobra.Command{
		Use:   "summarize [table | -p specs chain.csv...]",
		Short: "Compute point estimates and intervals of each group",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := method(v)
			if err != nil {
				return err
			}
			t, index, err := ts.load(cmd, v, args)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				keys = index
				if index == nil {
					keys = defaultKeys(t)
				}
			}
			logger := loggerFromContext(cmd.Context())
			opt := interval.Options{
				KeepNaN:  keepNaN,
				Logger:   logger,
				Parallel: v.GetInt("parallel"),
			}
			pr := newProgress(logger)
			out, err := interval.SummarizeTable(t, keys, cols, probs, m, opt)
			if err != nil {
				return err
			}
			pr.done("summarized", "method", m, "rows", out.Len())
			return writeTable(cmd.OutOrStdout(), out)
		},
	}
	ts.addFlags(cmd)
	f := cmd.Flags()
	f.StringSliceVarP(&keys, "keys", "k", nil, "group by `columns` (default: the spread index columns, or for table input every column that is not floating point)")
	f.StringSliceVar(&cols, "cols", nil, "summarize `columns` (default: all numeric columns)")
	f.Float64SliceVar(&probs, "prob", nil, "interval `probabilities` (default: 0.5,0.8,0.95)")
	f.BoolVar(&keepNaN, "keep-nan", false, "propagate NaN values instead of dropping them")
	return cmd
}

func newCompareCmd(v *viper.Viper) *cobra.Command {
	var (
		ts            tableSource
		value, factor string
		keys, pairs   []string
		control       string
	)
	cmd := &cobra.Command{
		Use:   "compare --value col --factor col [table | -p specs chain.csv...]",
		Short: "Compute differences of a value between levels of a factor",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt := tidy.CompareOptions{Keys: keys, ControlLevel: control}
			for _, p := range pairs {
				l, r, ok := strings.Cut(p, ":")
				if !ok {
					return fmt.Errorf("malformed pair %q (want left:right)", p)
				}
				opt.Pairs = append(opt.Pairs, [2]string{l, r})
			}
			t, _, err := ts.load(cmd, v, args)
			if err != nil {
				return err
			}
			out, err := tidy.CompareLevels(t, value, factor, opt)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), out)
		},
	}
	ts.addFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&value, "value", "", "compare values of `column`")
	f.StringVar(&factor, "factor", "", "compare between levels of `column`")
	f.StringSliceVarP(&keys, "keys", "k", nil, "compare only within groups of `columns`")
	f.StringSliceVar(&pairs, "pairs", nil, "compare level `pairs` given as left:right")
	f.StringVar(&control, "control", "", "compare every level against `level`")
	cmd.MarkFlagRequired("value")
	cmd.MarkFlagRequired("factor")
	return cmd
}

func newTermsCmd(v *viper.Viper) *cobra.Command {
	var (
		ts     tableSource
		keys   []string
		ignore string
	)
	cmd := &cobra.Command{
		Use:   "terms [table | -p specs chain.csv...]",
		Short: "Gather numeric columns into term and estimate columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := regexp.Compile(ignore)
			if err != nil {
				return err
			}
			t, _, err := ts.load(cmd, v, args)
			if err != nil {
				return err
			}
			out, err := tidy.GatherTerms(t, keys, re)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), out)
		},
	}
	ts.addFlags(cmd)
	cmd.Flags().StringSliceVarP(&keys, "keys", "k", nil, "keep `columns` as keys")
	cmd.Flags().StringVar(&ignore, "ignore", tidy.DefaultIgnore.String(), "keep columns matching `regexp` unchanged")
	return cmd
}
