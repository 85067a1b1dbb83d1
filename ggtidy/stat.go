// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ggtidy provides go-gg stats and layers for plotting
// summaries of model draws.
package ggtidy

import (
	"fmt"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-tidydraws/interval"
)

// PointInterval summarizes each group of a table with a point
// estimate and intervals. It is a gg.Stat.
//
// The result of PointInterval has the columns described by
// interval.SummarizeTable, plus any constant columns of the input.
// Columns that vary within a group but should be kept, such as an X
// position, must be listed in Keys.
//
// PointInterval panics if a group cannot be summarized.
type PointInterval struct {
	// Keys are columns that split each group further. Each
	// distinct combination gets its own summary rows.
	Keys []string

	// Cols are the columns to summarize. If empty, all numeric
	// columns except Keys and those starting with "." are used.
	Cols []string

	// Probs are the interval probabilities. If empty,
	// interval.DefaultProbs is used.
	Probs []float64

	// Method is the point estimate and interval method. The zero
	// value is mean_qi.
	Method interval.Method

	// Parallel is the number of sub-groups summarized
	// concurrently within each group.
	Parallel int
}

func (s PointInterval) F(g table.Grouping) table.Grouping {
	return table.MapTables(g, func(gid table.GroupID, t *table.Table) *table.Table {
		opt := interval.Options{Quiet: true, Parallel: s.Parallel}
		out, err := interval.SummarizeTable(t, s.Keys, s.Cols, s.Probs, s.Method, opt)
		if err != nil {
			panic(fmt.Errorf("ggtidy.PointInterval: group %v: %w", gid, err))
		}
		nt := table.NewBuilder(out)
		preserveConsts(nt, t)
		return nt.Done()
	})
}

// preserveConsts copies the constant columns of t that nt does not
// already have.
func preserveConsts(nt *table.Builder, t *table.Table) {
	for _, col := range t.Columns() {
		if nt.Has(col) {
			continue
		}
		if cv, ok := t.Const(col); ok {
			nt.AddConst(col, cv)
		}
	}
}
