// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compose turns a data table into the flat list of named
// variables a model fit expects.
//
// Numeric columns are passed through. String columns are replaced by
// 1-based integer codes in sorted level order, and each gets a count
// variable "n_<col>" giving its number of levels. Bool columns become
// 0/1 integers. The variable "n" is the number of rows.
//
// The level orders used to encode a table are exactly those that
// Recovery reports, so draws indexed by the codes can be labeled
// again with tidy.Spread.
package compose

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-tidydraws/tidy"
	"gopkg.in/yaml.v3"
)

// Data is a composed table.
type Data struct {
	// Names lists the variables in order: the table's columns,
	// then the level counts, then "n".
	Names []string

	// Vars maps each variable name to its value: a []float64,
	// []int, or (for counts) an int.
	Vars map[string]interface{}

	// Levels maps each encoded string column to its levels. Code
	// k stands for Levels[col][k-1].
	Levels map[string][]string
}

// Compose composes the columns of t.
func Compose(t *table.Table) (*Data, error) {
	d := &Data{
		Vars:   make(map[string]interface{}),
		Levels: make(map[string][]string),
	}
	var counts []string
	for _, col := range t.Columns() {
		v, levels, err := encode(t.MustColumn(col))
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		d.Names = append(d.Names, col)
		d.Vars[col] = v
		if levels != nil {
			d.Levels[col] = levels
			counts = append(counts, col)
		}
	}
	for _, col := range counts {
		n := "n_" + col
		if _, ok := d.Vars[n]; ok {
			return nil, fmt.Errorf("level count %q collides with a column", n)
		}
		d.Names = append(d.Names, n)
		d.Vars[n] = len(d.Levels[col])
	}
	if _, ok := d.Vars["n"]; ok {
		return nil, fmt.Errorf("row count %q collides with a column", "n")
	}
	d.Names = append(d.Names, "n")
	d.Vars["n"] = t.Len()
	return d, nil
}

// encode converts one column. levels is non-nil for string columns.
func encode(col interface{}) (v interface{}, levels []string, err error) {
	switch col := col.(type) {
	case []string:
		levels = levelsOf(col)
		code := make(map[string]int, len(levels))
		for i, l := range levels {
			code[l] = i + 1
		}
		codes := make([]int, len(col))
		for i, s := range col {
			codes[i] = code[s]
		}
		return codes, levels, nil
	case []bool:
		ints := make([]int, len(col))
		for i, b := range col {
			if b {
				ints[i] = 1
			}
		}
		return ints, nil, nil
	case []int, []float64:
		return col, nil, nil
	}
	switch reflect.TypeOf(col).Elem().Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var ints []int
		slice.Convert(&ints, col)
		return ints, nil, nil
	case reflect.Float32:
		var fs []float64
		slice.Convert(&fs, col)
		return fs, nil, nil
	}
	return nil, nil, fmt.Errorf("cannot compose values of type %T", col)
}

// levelsOf returns the sorted distinct values of xs.
func levelsOf(xs []string) []string {
	seen := make(map[string]bool)
	var levels []string
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			levels = append(levels, x)
		}
	}
	sort.Strings(levels)
	return levels
}

// Recovery returns the index domains of the columns of t: level
// labels for string columns, and numeric domains for integer
// columns. Float and bool columns are omitted.
func Recovery(t *table.Table) tidy.Recovery {
	r := make(tidy.Recovery)
	for _, col := range t.Columns() {
		switch c := t.MustColumn(col).(type) {
		case []string:
			r[col] = tidy.Domain{Levels: levelsOf(c)}
		case []bool, []float64, []float32:
		default:
			switch reflect.TypeOf(c).Elem().Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				r[col] = tidy.Domain{Numeric: true}
			}
		}
	}
	return r
}

// Recovery returns the index domains of the string columns d
// encoded.
func (d *Data) Recovery() tidy.Recovery {
	r := make(tidy.Recovery)
	for col, levels := range d.Levels {
		r[col] = tidy.Domain{Levels: levels}
	}
	return r
}

// MarshalYAML encodes d as a mapping from variable names to values,
// in the order of d.Names.
func (d *Data) MarshalYAML() (interface{}, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range d.Names {
		k := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		v := new(yaml.Node)
		if err := v.Encode(d.Vars[name]); err != nil {
			return nil, err
		}
		if _, ok := d.Vars[name].(int); !ok {
			v.Style = yaml.FlowStyle
		}
		m.Content = append(m.Content, k, v)
	}
	return m, nil
}
