// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package draws

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
)

// ReadStanCSV reads one chain of draws in the CSV format written by
// Stan samplers. Lines starting with '#' (configuration, adaptation,
// and timing comments) are ignored. Element columns may be named
// either "b.1.2" or "b[1,2]".
func ReadStanCSV(r io.Reader) (*Store, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("missing CSV header")
	} else if err != nil {
		return nil, err
	}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}

	cols := make([][]float64, len(names))
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		for i, f := range rec {
			x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("draw %d, column %s: %w", line-1, names[i], err)
			}
			cols[i] = append(cols[i], x)
		}
	}

	iterations := 0
	if len(cols) > 0 {
		iterations = len(cols[0])
	}
	return fromColumns(1, iterations, names, cols)
}

// WriteCSV writes the draws of chain (0-based) of s in the format
// read by ReadStanCSV. Elements of each parameter are written in
// column-major order, the way Stan writes them.
func WriteCSV(w io.Writer, s *Store, chain int) error {
	if chain < 0 || chain >= s.Chains {
		return fmt.Errorf("chain %d out of range [0,%d)", chain, s.Chains)
	}

	type column struct {
		p   *Param
		off int
	}
	var header []string
	var cols []column
	for _, p := range s.params {
		for _, idx := range colMajor(p.Dims) {
			header = append(header, stanName(p.Name, idx))
			cols = append(cols, column{p, p.Offset(idx)})
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(cols))
	for it := 0; it < s.Iterations; it++ {
		d := chain*s.Iterations + it
		for i, c := range cols {
			rec[i] = strconv.FormatFloat(c.p.Draws[d][c.off], 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// colMajor enumerates the 0-based indexes of shape dims with the
// first index varying fastest.
func colMajor(dims []int) [][]int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	out := make([][]int, n)
	for k := range out {
		idx := make([]int, len(dims))
		rem := k
		for i, d := range dims {
			idx[i] = rem % d
			rem /= d
		}
		out[k] = idx
	}
	return out
}

func stanName(name string, idx []int) string {
	var b strings.Builder
	b.WriteString(name)
	for _, x := range idx {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(x + 1))
	}
	return b.String()
}

// FromTable builds a Store from a wide draws table. The table must
// have integer ".chain" and ".iteration" columns, with rows ordered
// by chain and then iteration and every chain having the same number
// of iterations. Every other column is an element column named like
// "b[1,2]" or "b.1.2" and must be numeric.
func FromTable(t *table.Table) (*Store, error) {
	var chain, iter []int
	for _, c := range []struct {
		name string
		dst  *[]int
	}{{".chain", &chain}, {".iteration", &iter}} {
		col := t.Column(c.name)
		if col == nil {
			return nil, fmt.Errorf("draws table has no %s column", c.name)
		}
		if err := convert(c.dst, col); err != nil {
			return nil, fmt.Errorf("column %s: %w", c.name, err)
		}
	}

	chains := 0
	for _, c := range chain {
		if c > chains {
			chains = c
		}
	}
	if chains == 0 || t.Len()%chains != 0 {
		return nil, fmt.Errorf("%d draws do not divide into %d chains", t.Len(), chains)
	}
	iterations := t.Len() / chains
	for i := range chain {
		if chain[i] != i/iterations+1 || iter[i] != i%iterations+1 {
			return nil, fmt.Errorf("draw %d is chain %d iteration %d; want chain %d iteration %d", i, chain[i], iter[i], i/iterations+1, i%iterations+1)
		}
	}

	var names []string
	var cols [][]float64
	for _, name := range t.Columns() {
		if name == ".chain" || name == ".iteration" {
			continue
		}
		var xs []float64
		if err := convert(&xs, t.MustColumn(name)); err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		names = append(names, name)
		cols = append(cols, xs)
	}
	return fromColumns(chains, iterations, names, cols)
}

// convert is slice.Convert, but returns an error instead of
// panicking when the column has the wrong type.
func convert(dst interface{}, col interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	slice.Convert(dst, col)
	return nil
}
