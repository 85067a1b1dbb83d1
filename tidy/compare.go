// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tidy

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
)

// CompareOptions control CompareLevels.
type CompareOptions struct {
	// Keys are additional grouping columns. Levels are only
	// compared within rows that agree on every key and on draw
	// identity.
	Keys []string

	// Pairs lists the (left, right) level pairs to compare. If
	// nil, every unordered pair of levels is compared, in level
	// order.
	Pairs [][2]string

	// ControlLevel, if not "", compares every other level against
	// it as (level, ControlLevel). It is ignored if Pairs is set.
	ControlLevel string

	// Fn combines the left and right values. If nil, it is
	// subtraction.
	Fn func(left, right float64) float64
}

// CompareLevels compares the values of column value between levels of
// column factor.
//
// Rows are matched by opt.Keys and draw identity: the ".chain" and
// ".iteration" columns if t has them, and otherwise the position of
// the row among rows with the same keys and level. For each matched
// draw, CompareLevels emits one row per level pair with factor set to
// "left - right" and value set to Fn(left, right). Output rows are
// ordered by draw (in order of first appearance) and then by pair.
//
// Levels are ordered by first appearance in t. If two compared
// levels do not have exactly the same draws within a group, it
// returns an error wrapping ErrUnmatchedDraw.
func CompareLevels(t *table.Table, value, factor string, opt CompareOptions) (*table.Table, error) {
	fn := opt.Fn
	if fn == nil {
		fn = func(l, r float64) float64 { return l - r }
	}
	if t.Column(value) == nil {
		return nil, fmt.Errorf("no value column %q", value)
	}
	if t.Column(factor) == nil {
		return nil, fmt.Errorf("no factor column %q", factor)
	}
	if !isNumeric(table.ColType(t, value).Elem().Kind()) {
		return nil, fmt.Errorf("value column %q is not numeric", value)
	}
	var vals []float64
	slice.Convert(&vals, t.MustColumn(value))
	levelOf := labels(t.MustColumn(factor))

	drawCols := []string{}
	if t.Column(ChainCol) != nil && t.Column(IterationCol) != nil {
		drawCols = []string{ChainCol, IterationCol}
	}
	idCols := append(append([]string(nil), opt.Keys...), drawCols...)
	idLabels := make([][]string, len(idCols))
	for i, col := range idCols {
		if t.Column(col) == nil {
			return nil, fmt.Errorf("no key column %q", col)
		}
		idLabels[i] = labels(t.MustColumn(col))
	}

	// Collect levels and index the rows by draw and level.
	var levels []string
	haveLevel := make(map[string]bool)
	type draw struct {
		row   int // representative row, for key values
		group string
		vals  map[string]float64
	}
	var order []string
	byID := make(map[string]*draw)
	counts := make(map[string]map[string]int) // group -> level -> count
	for i := 0; i < t.Len(); i++ {
		lvl := levelOf[i]
		if !haveLevel[lvl] {
			haveLevel[lvl] = true
			levels = append(levels, lvl)
		}
		group := rowKey(idLabels[:len(opt.Keys)], i)
		if counts[group] == nil {
			counts[group] = make(map[string]int)
		}
		id := group + "\x00" + rowKey(idLabels[len(opt.Keys):], i)
		if len(drawCols) == 0 {
			id += fmt.Sprintf("\x00%d", counts[group][lvl])
		}
		counts[group][lvl]++

		d := byID[id]
		if d == nil {
			d = &draw{row: i, group: group, vals: make(map[string]float64)}
			byID[id] = d
			order = append(order, id)
		}
		if _, dup := d.vals[lvl]; dup {
			return nil, fmt.Errorf("%w: level %q has more than one row for the same draw", ErrUnmatchedDraw, lvl)
		}
		d.vals[lvl] = vals[i]
	}

	pairs := opt.Pairs
	if pairs == nil {
		if opt.ControlLevel != "" {
			if !haveLevel[opt.ControlLevel] {
				return nil, fmt.Errorf("control level %q does not appear in column %q", opt.ControlLevel, factor)
			}
			for _, l := range levels {
				if l != opt.ControlLevel {
					pairs = append(pairs, [2]string{l, opt.ControlLevel})
				}
			}
		} else {
			for i := range levels {
				for j := i + 1; j < len(levels); j++ {
					pairs = append(pairs, [2]string{levels[i], levels[j]})
				}
			}
		}
	}
	for _, p := range pairs {
		for _, l := range p {
			if !haveLevel[l] {
				return nil, fmt.Errorf("level %q does not appear in column %q", l, factor)
			}
		}
		for group, c := range counts {
			if c[p[0]] != c[p[1]] {
				return nil, fmt.Errorf("%w: level %q has %d draws and level %q has %d in group %q", ErrUnmatchedDraw, p[0], c[p[0]], p[1], c[p[1]], strings.ReplaceAll(group, "\x00", " "))
			}
		}
	}

	rows, names, out := []int{}, []string{}, []float64{}
	for _, id := range order {
		d := byID[id]
		for _, p := range pairs {
			l, lok := d.vals[p[0]]
			r, rok := d.vals[p[1]]
			if lok != rok {
				return nil, fmt.Errorf("%w: draw of %q has no matching draw of %q", ErrUnmatchedDraw, p[0], p[1])
			}
			if !lok {
				// Neither level occurs in this group.
				continue
			}
			rows = append(rows, d.row)
			names = append(names, p[0]+" - "+p[1])
			out = append(out, fn(l, r))
		}
	}

	b := new(table.Builder)
	for _, col := range idCols {
		b.Add(col, slice.Select(t.MustColumn(col), rows))
	}
	b.Add(factor, names)
	b.Add(value, out)
	return b.Done(), nil
}

// labels formats each element of a column as a string.
func labels(col interface{}) []string {
	if ss, ok := col.([]string); ok {
		return ss
	}
	var out []string
	v := reflect.ValueOf(col)
	for i := 0; i < v.Len(); i++ {
		out = append(out, fmt.Sprint(v.Index(i).Interface()))
	}
	return out
}

func rowKey(cols [][]string, i int) string {
	var b strings.Builder
	for k, c := range cols {
		if k > 0 {
			b.WriteByte('\x00')
		}
		b.WriteString(c[i])
	}
	return b.String()
}
