// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package draws holds posterior draws from a model fit.
//
// A Store is the raw form of a fit: a catalogue of parameters, each
// with a shape, and one flat row-major array of values per draw.
// Draws are ordered chain-major, so draw d belongs to chain
// d/Iterations and iteration d%Iterations (both 0-based here; tables
// built from a Store number chains and iterations from 1).
package draws

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrUnknownParameter is returned when a requested parameter is not
// in a Store's catalogue.
var ErrUnknownParameter = errors.New("unknown parameter")

// A Param is one named parameter of a fit.
type Param struct {
	// Name is the parameter's base name, without indexes.
	Name string

	// Dims is the shape of the parameter. It is nil for scalar
	// parameters.
	Dims []int

	// Draws holds one array of Len() values per draw, in
	// row-major order (the last index varies fastest).
	Draws [][]float64
}

// Len returns the number of values in each draw of p.
func (p *Param) Len() int {
	n := 1
	for _, d := range p.Dims {
		n *= d
	}
	return n
}

// Strides returns the row-major stride of each dimension of p.
func (p *Param) Strides() []int {
	strides := make([]int, len(p.Dims))
	s := 1
	for i := len(p.Dims) - 1; i >= 0; i-- {
		strides[i] = s
		s *= p.Dims[i]
	}
	return strides
}

// Offset returns the position of the 0-based index idx in one draw
// of p.
func (p *Param) Offset(idx []int) int {
	off := 0
	for i, s := range p.Strides() {
		off += idx[i] * s
	}
	return off
}

// Index returns the 0-based index of position off in one draw of p.
func (p *Param) Index(off int) []int {
	if len(p.Dims) == 0 {
		return nil
	}
	idx := make([]int, len(p.Dims))
	for i := len(p.Dims) - 1; i >= 0; i-- {
		idx[i] = off % p.Dims[i]
		off /= p.Dims[i]
	}
	return idx
}

// A Store is the set of draws from one model fit.
type Store struct {
	Chains, Iterations int

	params []*Param
	byName map[string]*Param
}

// New returns an empty Store with the given number of chains and
// iterations per chain.
func New(chains, iterations int) *Store {
	return &Store{
		Chains:     chains,
		Iterations: iterations,
		byName:     make(map[string]*Param),
	}
}

// Draws returns the total number of draws, Chains*Iterations.
func (s *Store) Draws() int {
	return s.Chains * s.Iterations
}

// Add adds a parameter to s. draws must have one entry per draw,
// each with prod(dims) values. Add takes ownership of draws.
func (s *Store) Add(name string, dims []int, draws [][]float64) error {
	if _, ok := s.byName[name]; ok {
		return fmt.Errorf("duplicate parameter %q", name)
	}
	p := &Param{Name: name, Dims: append([]int(nil), dims...), Draws: draws}
	for _, d := range p.Dims {
		if d <= 0 {
			return fmt.Errorf("parameter %q has empty dimension in shape %v", name, dims)
		}
	}
	if len(draws) != s.Draws() {
		return fmt.Errorf("parameter %q has %d draws; want %d", name, len(draws), s.Draws())
	}
	n := p.Len()
	for i, d := range draws {
		if len(d) != n {
			return fmt.Errorf("parameter %q draw %d has %d values; want %d", name, i, len(d), n)
		}
	}
	s.params = append(s.params, p)
	s.byName[name] = p
	return nil
}

// Param returns the parameter called name, or nil if there is no
// such parameter.
func (s *Store) Param(name string) *Param {
	return s.byName[name]
}

// Params returns the parameters of s in catalogue order.
func (s *Store) Params() []*Param {
	return s.params
}

// Names returns the names of the parameters of s in catalogue order.
func (s *Store) Names() []string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.Name
	}
	return names
}

// Match returns the parameters whose name matches re, in catalogue
// order.
func (s *Store) Match(re *regexp.Regexp) []*Param {
	var out []*Param
	for _, p := range s.params {
		if re.MatchString(p.Name) {
			out = append(out, p)
		}
	}
	return out
}

// Select returns a Store containing only the named parameters, in
// the order given. The returned Store shares draws with s.
func (s *Store) Select(names ...string) (*Store, error) {
	ns := New(s.Chains, s.Iterations)
	for _, name := range names {
		p := s.byName[name]
		if p == nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownParameter, name)
		}
		if err := ns.Add(p.Name, p.Dims, p.Draws); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

// Size returns the number of float64 values held by s.
func (s *Store) Size() int {
	n := 0
	for _, p := range s.params {
		n += p.Len() * len(p.Draws)
	}
	return n
}

// Flat returns the draws of s keyed by element name, such as "b[1,2]"
// for a matrix parameter b or "sigma" for a scalar. Each value has
// one entry per draw.
func (s *Store) Flat() map[string][]float64 {
	flat := make(map[string][]float64)
	for _, p := range s.params {
		for off := 0; off < p.Len(); off++ {
			xs := make([]float64, len(p.Draws))
			for d, draw := range p.Draws {
				xs[d] = draw[off]
			}
			flat[FormatName(p.Name, p.Index(off))] = xs
		}
	}
	return flat
}

// FlatNames returns the keys of s.Flat() in catalogue order, with
// the elements of each parameter in row-major order.
func (s *Store) FlatNames() []string {
	var names []string
	for _, p := range s.params {
		for off := 0; off < p.Len(); off++ {
			names = append(names, FormatName(p.Name, p.Index(off)))
		}
	}
	return names
}

// Combine stacks single-chain or multi-chain Stores into one Store.
// All stores must have the same parameters, shapes, and iteration
// counts.
func Combine(stores ...*Store) (*Store, error) {
	if len(stores) == 0 {
		return nil, errors.New("no stores to combine")
	}
	first := stores[0]
	chains := 0
	for i, s := range stores {
		if s.Iterations != first.Iterations {
			return nil, fmt.Errorf("store %d has %d iterations; want %d", i, s.Iterations, first.Iterations)
		}
		if !sameShapes(first, s) {
			return nil, fmt.Errorf("store %d has different parameters", i)
		}
		chains += s.Chains
	}

	out := New(chains, first.Iterations)
	for _, p := range first.params {
		var draws [][]float64
		for _, s := range stores {
			draws = append(draws, s.byName[p.Name].Draws...)
		}
		if err := out.Add(p.Name, p.Dims, draws); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sameShapes(a, b *Store) bool {
	if len(a.params) != len(b.params) {
		return false
	}
	for _, p := range a.params {
		q := b.byName[p.Name]
		if q == nil || len(q.Dims) != len(p.Dims) {
			return false
		}
		for i := range p.Dims {
			if p.Dims[i] != q.Dims[i] {
				return false
			}
		}
	}
	return true
}
