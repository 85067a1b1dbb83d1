// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-tidydraws/draws"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sync/errgroup"
)

// open opens path for reading, or returns stdin for "-".
func open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// readDraws reads one chain of Stan CSV from each path and combines
// them in order.
func readDraws(paths []string) (*draws.Store, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	chains := make([]*draws.Store, len(paths))
	var eg errgroup.Group
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			f, err := open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			s, err := draws.ReadStanCSV(f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			chains[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return draws.Combine(chains...)
}

// readTable reads a CSV table, or a TSV table if path ends in
// ".tsv". Numeric columns are converted to numbers.
func readTable(path string) (*table.Table, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cr := csv.NewReader(f)
	cr.Comment = '#'
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		cr.Comma = '\t'
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}
	return table.TableFromStrings(rows[0], rows[1:], true), nil
}

// readWide reads a wide draws table with ".chain" and ".iteration"
// columns.
func readWide(path string) (*draws.Store, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return draws.FromTable(t)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("TERM") == "dumb" {
		return false
	}
	return terminal.IsTerminal(int(f.Fd()))
}

// writeTable writes g to w as an aligned table if w is a terminal,
// or as TSV otherwise.
func writeTable(w io.Writer, g table.Grouping) error {
	if isTerminal(w) {
		table.Fprint(w, g)
		return nil
	}
	return writeTSV(w, table.Flatten(g))
}

func writeTSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	cols := t.Columns()
	if err := cw.Write(cols); err != nil {
		return err
	}
	vals := make([]reflect.Value, len(cols))
	for i, col := range cols {
		vals[i] = reflect.ValueOf(t.MustColumn(col))
	}
	rec := make([]string, len(cols))
	for row := 0; row < t.Len(); row++ {
		for i, v := range vals {
			rec[i] = formatValue(v.Index(row).Interface())
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(x interface{}) string {
	switch x := x.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	}
	return fmt.Sprint(x)
}
