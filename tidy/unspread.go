// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tidy

import (
	"fmt"
	"regexp"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-tidydraws/draws"
)

// Unspread is the inverse of Spread. It reconstructs a Store from a
// tidy table t with the columns Spread produces for specs and rec.
//
// The size of each dimension is the number of recovered levels if
// rec has levels for its index, and otherwise the largest index value
// in t. Every element of every draw must appear in t.
//
// For any store S, Unspread(Spread(S, specs, rec), specs, rec) is
// equal to S restricted to the parameters specs selects.
func Unspread(t *table.Table, specs []Spec, rec Recovery) (*draws.Store, error) {
	var chain, iter []int
	if err := intCol(t, ChainCol, &chain); err != nil {
		return nil, err
	}
	if err := intCol(t, IterationCol, &iter); err != nil {
		return nil, err
	}
	chains, iterations := maxInt(chain), maxInt(iter)

	// Decode index columns to 0-based positions.
	names := IndexNames(specs)
	pos := make(map[string][]int)
	card := make(map[string]int)
	for _, name := range names {
		col := t.Column(name)
		if col == nil {
			return nil, fmt.Errorf("table has no index column %q", name)
		}
		ps := make([]int, t.Len())
		if levels := rec.levels(name); levels != nil {
			labels, ok := col.([]string)
			if !ok {
				return nil, fmt.Errorf("index column %q has type %T; want []string labels", name, col)
			}
			lpos := make(map[string]int, len(levels))
			for i, l := range levels {
				lpos[l] = i
			}
			for i, l := range labels {
				p, ok := lpos[l]
				if !ok {
					return nil, fmt.Errorf("index column %q has unknown level %q", name, l)
				}
				ps[i] = p
			}
			card[name] = len(levels)
		} else {
			var xs []int
			if err := intCol(t, name, &xs); err != nil {
				return nil, err
			}
			for i, x := range xs {
				if x < 1 {
					return nil, fmt.Errorf("index column %q has value %d < 1", name, x)
				}
				ps[i] = x - 1
			}
			card[name] = maxInt(xs)
		}
		pos[name] = ps
	}

	// Find the value columns.
	isKey := map[string]bool{ChainCol: true, IterationCol: true}
	for _, name := range names {
		isKey[name] = true
	}
	type target struct {
		name  string
		index []string
	}
	var targets []target
	seen := make(map[string]bool)
	for _, spec := range specs {
		var cols []string
		if spec.Regex {
			re, err := regexp.Compile("^(?:" + spec.Name + ")$")
			if err != nil {
				return nil, fmt.Errorf("parameter pattern %q: %w", spec.Name, err)
			}
			for _, col := range t.Columns() {
				if !isKey[col] && re.MatchString(col) {
					cols = append(cols, col)
				}
			}
		} else if t.Column(spec.Name) != nil {
			cols = []string{spec.Name}
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("%w %q", ErrUnknownParameter, spec.Name)
		}
		for _, col := range cols {
			if !seen[col] {
				seen[col] = true
				targets = append(targets, target{col, spec.Index})
			}
		}
	}

	s := draws.New(chains, iterations)
	for _, tg := range targets {
		if !isNumeric(table.ColType(t, tg.name).Elem().Kind()) {
			return nil, fmt.Errorf("column %s is not numeric", tg.name)
		}
		var vals []float64
		slice.Convert(&vals, t.MustColumn(tg.name))

		var dims []int
		for _, name := range tg.index {
			dims = append(dims, card[name])
		}
		p := &draws.Param{Name: tg.name, Dims: dims}
		strides := p.Strides()
		n := p.Len()
		ds := make([][]float64, s.Draws())
		filled := make([][]bool, s.Draws())
		for d := range ds {
			ds[d] = make([]float64, n)
			filled[d] = make([]bool, n)
		}
		for i, x := range vals {
			if chain[i] < 1 || iter[i] < 1 {
				return nil, fmt.Errorf("row %d has chain %d iteration %d", i, chain[i], iter[i])
			}
			d := (chain[i]-1)*iterations + iter[i] - 1
			off := 0
			for k, name := range tg.index {
				off += pos[name][i] * strides[k]
			}
			ds[d][off] = x
			filled[d][off] = true
		}
		for d := range filled {
			for off, ok := range filled[d] {
				if !ok {
					return nil, fmt.Errorf("table is missing %s for chain %d iteration %d", draws.FormatName(tg.name, p.Index(off)), d/iterations+1, d%iterations+1)
				}
			}
		}
		if err := s.Add(tg.name, dims, ds); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// intCol converts column name of t to []int.
func intCol(t *table.Table, name string, dst *[]int) error {
	col := t.Column(name)
	if col == nil {
		return fmt.Errorf("table has no %s column", name)
	}
	switch col.(type) {
	case []int, []int8, []int16, []int32, []int64, []uint, []uint8, []uint16, []uint32, []uint64:
	default:
		return fmt.Errorf("column %s has type %T; want integers", name, col)
	}
	slice.Convert(dst, col)
	return nil
}

func maxInt(xs []int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
