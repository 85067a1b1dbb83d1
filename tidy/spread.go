// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tidy

import (
	"fmt"
	"regexp"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-tidydraws/draws"
)

// A valueCol is one resolved value column: a parameter and the index
// names of its dimensions.
type valueCol struct {
	param *draws.Param
	index []string
}

// resolve matches specs against the catalogue of s. A parameter
// matched by several specs appears once and must have the same index
// names in each.
func resolve(s *draws.Store, specs []Spec) ([]valueCol, error) {
	if len(specs) == 0 {
		return nil, ErrNoParameters
	}
	var cols []valueCol
	seen := make(map[string][]string)
	for _, spec := range specs {
		var params []*draws.Param
		if spec.Regex {
			re, err := regexp.Compile("^(?:" + spec.Name + ")$")
			if err != nil {
				return nil, fmt.Errorf("parameter pattern %q: %w", spec.Name, err)
			}
			params = s.Match(re)
		} else if p := s.Param(spec.Name); p != nil {
			params = []*draws.Param{p}
		}
		if len(params) == 0 {
			return nil, fmt.Errorf("%w %q", ErrUnknownParameter, spec.Name)
		}

		for _, p := range params {
			if len(p.Dims) != len(spec.Index) {
				return nil, fmt.Errorf("%w: %s has %d dimensions, spec %s names %d", ErrIndexCount, p.Name, len(p.Dims), spec, len(spec.Index))
			}
			dup := make(map[string]bool)
			for _, name := range spec.Index {
				if dup[name] {
					return nil, fmt.Errorf("spec %s repeats index %q", spec, name)
				}
				dup[name] = true
			}
			if prev, ok := seen[p.Name]; ok {
				if !sameNames(prev, spec.Index) {
					return nil, fmt.Errorf("%w: %s requested with indexes %v and %v", ErrConflictingSpecs, p.Name, prev, spec.Index)
				}
				continue
			}
			seen[p.Name] = spec.Index
			cols = append(cols, valueCol{p, spec.Index})
		}
	}
	return cols, nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// cardinalities returns the size of each index in names, checking
// that every use of an index has the same size and that recovered
// domains agree with it.
func cardinalities(cols []valueCol, names []string, rec Recovery) ([]int, error) {
	card := make(map[string]int)
	for _, c := range cols {
		for i, name := range c.index {
			n := c.param.Dims[i]
			if old, ok := card[name]; ok && old != n {
				return nil, fmt.Errorf("%w: index %q has size %d in %s and %d elsewhere", ErrIndexCardinalityMismatch, name, n, c.param.Name, old)
			}
			card[name] = n
		}
	}
	out := make([]int, len(names))
	for i, name := range names {
		n, ok := card[name]
		if !ok {
			return nil, fmt.Errorf("index %q is not used by any requested parameter", name)
		}
		out[i] = n
		if levels := rec.levels(name); levels != nil && len(levels) != out[i] {
			return nil, fmt.Errorf("%w: index %q has size %d but %d recovered levels", ErrIndexCardinalityMismatch, name, out[i], len(levels))
		}
	}
	return out, nil
}

// Spread returns a tidy table of the parameters requested by specs.
//
// The table has columns ".chain", ".iteration", one column per
// distinct index name (in order of first appearance in specs), and
// one float64 column per requested parameter. There is one row for
// every draw and every combination of index values; index
// combinations vary in row-major order within each draw. Parameters
// that do not use an index are repeated across its values, so the
// result is the natural join of the specs on their shared index
// names.
//
// It is an error to request no parameters, or to request one
// parameter twice with different index names.
//
// Index columns are []int numbered from 1, unless rec has levels for
// that index, in which case they are []string of the recovered
// labels.
func Spread(s *draws.Store, specs []Spec, rec Recovery) (*table.Table, error) {
	cols, err := resolve(s, specs)
	if err != nil {
		return nil, err
	}
	names := IndexNames(specs)
	requested := make(map[string]bool)
	for _, c := range cols {
		requested[c.param.Name] = true
	}
	for _, name := range names {
		if name == ChainCol || name == IterationCol || requested[name] {
			return nil, fmt.Errorf("index name %q collides with another column", name)
		}
	}
	card, err := cardinalities(cols, names, rec)
	if err != nil {
		return nil, err
	}

	combos := 1
	for _, n := range card {
		combos *= n
	}
	// Row-major strides of the combined index space.
	gstride := make([]int, len(names))
	st := 1
	for i := len(names) - 1; i >= 0; i-- {
		gstride[i] = st
		st *= card[i]
	}
	// stride[c][g] is the contribution of global index g to the
	// offset in value column c. It is 0 for indexes c does not
	// use.
	pos := make(map[string]int)
	for i, name := range names {
		pos[name] = i
	}
	stride := make([][]int, len(cols))
	for c, col := range cols {
		stride[c] = make([]int, len(names))
		for i, ps := range col.param.Strides() {
			stride[c][pos[col.index[i]]] = ps
		}
	}

	nrows := s.Draws() * combos
	chainCol := make([]int, 0, nrows)
	iterCol := make([]int, 0, nrows)
	idxCols := make([][]int, len(names))
	for i := range idxCols {
		idxCols[i] = make([]int, 0, nrows)
	}
	valCols := make([][]float64, len(cols))
	for i := range valCols {
		valCols[i] = make([]float64, 0, nrows)
	}

	idx := make([]int, len(names))
	for d := 0; d < s.Draws(); d++ {
		for k := 0; k < combos; k++ {
			for g := range names {
				idx[g] = (k / gstride[g]) % card[g]
			}
			chainCol = append(chainCol, d/s.Iterations+1)
			iterCol = append(iterCol, d%s.Iterations+1)
			for g, x := range idx {
				idxCols[g] = append(idxCols[g], x+1)
			}
			for c, col := range cols {
				off := 0
				for g, x := range idx {
					off += x * stride[c][g]
				}
				valCols[c] = append(valCols[c], col.param.Draws[d][off])
			}
		}
	}

	b := new(table.Builder).Add(ChainCol, chainCol).Add(IterationCol, iterCol)
	for g, name := range names {
		if levels := rec.levels(name); levels != nil {
			labels := make([]string, len(idxCols[g]))
			for i, x := range idxCols[g] {
				labels[i] = levels[x-1]
			}
			b.Add(name, labels)
		} else {
			b.Add(name, idxCols[g])
		}
	}
	for c, col := range cols {
		b.Add(col.param.Name, valCols[c])
	}
	return b.Done(), nil
}

// Gather returns the parameters requested by specs in long form: like
// Spread, but with the parameter columns melted into a "term" column
// holding the parameter name and an "estimate" column holding its
// value. Rows for each draw and index combination are adjacent, with
// one row per parameter in spec order.
func Gather(s *draws.Store, specs []Spec, rec Recovery) (*table.Table, error) {
	t, err := Spread(s, specs, rec)
	if err != nil {
		return nil, err
	}
	cols, err := resolve(s, specs)
	if err != nil {
		return nil, err
	}
	terms := make([]string, len(cols))
	for i, c := range cols {
		terms[i] = c.param.Name
	}
	return table.Flatten(table.Unpivot(t, "term", "estimate", terms...)), nil
}
