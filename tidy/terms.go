// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tidy

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
)

// DefaultIgnore matches the columns GatherTerms leaves alone by
// default: draw identity and other "."-prefixed bookkeeping columns.
var DefaultIgnore = regexp.MustCompile(`^\.`)

// GatherTerms melts the numeric columns of g into a "term" column
// holding the original column name and an "estimate" column holding
// its value, producing one row per original row and melted column.
//
// Columns in keys and columns matching ignore are kept as they are.
// If ignore is nil, DefaultIgnore is used. Every other column must be
// numeric; a string or other non-numeric column that is neither a key
// nor ignored is an error, since it has no estimate to melt. The result is grouped by
// keys and then by "term".
func GatherTerms(g table.Grouping, keys []string, ignore *regexp.Regexp) (table.Grouping, error) {
	if ignore == nil {
		ignore = DefaultIgnore
	}
	isKey := make(map[string]bool)
	for _, k := range keys {
		if !hasColumn(g, k) {
			return nil, fmt.Errorf("no key column %q", k)
		}
		isKey[k] = true
	}

	var terms []string
	for _, col := range g.Columns() {
		if isKey[col] || ignore.MatchString(col) {
			continue
		}
		if !isNumeric(table.ColType(g, col).Elem().Kind()) {
			return nil, fmt.Errorf("column %q is not numeric", col)
		}
		terms = append(terms, col)
	}
	if len(terms) == 0 {
		return nil, errors.New("no columns to gather")
	}

	g = table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		b := table.NewBuilder(t)
		for _, col := range terms {
			var xs []float64
			slice.Convert(&xs, t.MustColumn(col))
			b.Add(col, xs)
		}
		return b.Done()
	})
	long := table.Unpivot(table.Flatten(g), "term", "estimate", terms...)
	return table.GroupBy(long, append(append([]string(nil), keys...), "term")...), nil
}

func hasColumn(g table.Grouping, col string) bool {
	for _, c := range g.Columns() {
		if c == col {
			return true
		}
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
