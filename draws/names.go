// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package draws

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatName returns the element name of the 0-based index idx of
// parameter name, using 1-based bracketed indexes. For example,
// FormatName("b", []int{0, 1}) is "b[1,2]". If idx is empty, it
// returns name.
func FormatName(name string, idx []int) string {
	if len(idx) == 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('[')
	for i, x := range idx {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(x + 1))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseName splits an element name into a parameter name and a
// 0-based index. It accepts both bracketed names ("b[1,2]") and the
// dotted names Stan writes in CSV headers ("b.1.2").
func ParseName(elem string) (name string, idx []int, err error) {
	if i := strings.IndexByte(elem, '['); i >= 0 {
		if !strings.HasSuffix(elem, "]") {
			return "", nil, fmt.Errorf("malformed element name %q", elem)
		}
		name = elem[:i]
		for _, f := range strings.Split(elem[i+1:len(elem)-1], ",") {
			x, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil || x < 1 {
				return "", nil, fmt.Errorf("malformed index in element name %q", elem)
			}
			idx = append(idx, x-1)
		}
		return name, idx, nil
	}

	// Dotted names. Trailing all-digit components are indexes;
	// anything else is part of the name (e.g., "lp__").
	parts := strings.Split(elem, ".")
	n := len(parts)
	for n > 1 && isIndex(parts[n-1]) {
		n--
	}
	name = strings.Join(parts[:n], ".")
	for _, f := range parts[n:] {
		x, _ := strconv.Atoi(f)
		idx = append(idx, x-1)
	}
	return name, idx, nil
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	x, err := strconv.Atoi(s)
	return err == nil && x >= 1
}

// An elem is one column of a flattened draws table.
type elem struct {
	idx  []int
	vals []float64
}

// fromColumns assembles a Store from flattened element columns.
// names[i] is the element name of cols[i]; each column has one value
// per draw, chain-major.
func fromColumns(chains, iterations int, names []string, cols [][]float64) (*Store, error) {
	var order []string
	elems := make(map[string][]elem)
	for i, en := range names {
		name, idx, err := ParseName(en)
		if err != nil {
			return nil, err
		}
		if _, ok := elems[name]; !ok {
			order = append(order, name)
		} else if len(elems[name][0].idx) != len(idx) {
			return nil, fmt.Errorf("parameter %q has elements with different numbers of indexes", name)
		}
		elems[name] = append(elems[name], elem{idx, cols[i]})
	}

	s := New(chains, iterations)
	for _, name := range order {
		es := elems[name]
		var dims []int
		if len(es[0].idx) > 0 {
			dims = make([]int, len(es[0].idx))
			for _, e := range es {
				for i, x := range e.idx {
					if x+1 > dims[i] {
						dims[i] = x + 1
					}
				}
			}
		}
		p := &Param{Name: name, Dims: dims}
		if len(es) != p.Len() {
			return nil, fmt.Errorf("parameter %q has %d elements; shape %v needs %d", name, len(es), dims, p.Len())
		}

		draws := make([][]float64, s.Draws())
		for d := range draws {
			draws[d] = make([]float64, p.Len())
		}
		seen := make([]bool, p.Len())
		for _, e := range es {
			off := p.Offset(e.idx)
			if seen[off] {
				return nil, fmt.Errorf("duplicate element %s", FormatName(name, e.idx))
			}
			seen[off] = true
			for d, x := range e.vals {
				draws[d][off] = x
			}
		}
		if err := s.Add(name, dims, draws); err != nil {
			return nil, err
		}
	}
	return s, nil
}
