// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tidy converts model draws between their raw store shape
// and tidy tables with one row per draw and index combination.
//
// Tables produced and consumed by this package are
// github.com/aclements/go-gg/table tables. Chain and iteration
// identities are stored in the int columns ".chain" and
// ".iteration", numbered from 1.
package tidy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aclements/go-tidydraws/draws"
)

// Column names for draw identity.
const (
	ChainCol     = ".chain"
	IterationCol = ".iteration"
)

var (
	// ErrUnknownParameter is returned when a Spec matches no
	// parameter. It is the same error as
	// draws.ErrUnknownParameter.
	ErrUnknownParameter = draws.ErrUnknownParameter

	// ErrIndexCardinalityMismatch is returned when an index name
	// is used for dimensions of different sizes, or when a
	// recovered domain's size disagrees with the dimension it
	// labels.
	ErrIndexCardinalityMismatch = errors.New("index cardinality mismatch")

	// ErrIndexCount is returned when a Spec names a different
	// number of indexes than its parameter has dimensions.
	ErrIndexCount = errors.New("wrong number of indexes")

	// ErrUnmatchedDraw is returned by CompareLevels when the
	// levels being compared do not have the same draws.
	ErrUnmatchedDraw = errors.New("unmatched draw")

	// ErrNoParameters is returned when no parameters are requested.
	ErrNoParameters = errors.New("no parameters requested")

	// ErrConflictingSpecs is returned when one parameter is
	// requested twice with different index names.
	ErrConflictingSpecs = errors.New("conflicting specs")
)

// A Spec requests one parameter (or, with Regex, every parameter
// whose name matches a pattern) and names its index dimensions.
type Spec struct {
	// Name is the parameter name, or a regular expression if
	// Regex is set. A pattern must match the whole name.
	Name string

	// Index names one column per dimension of the parameter. It
	// is empty for scalar parameters.
	Index []string

	// Regex makes Name a regular expression.
	Regex bool
}

func (s Spec) String() string {
	if len(s.Index) == 0 {
		return s.Name
	}
	return s.Name + "[" + strings.Join(s.Index, ",") + "]"
}

// ParseSpec parses a spec written as "name" or "name[i,j]".
func ParseSpec(str string) (Spec, error) {
	str = strings.TrimSpace(str)
	i := strings.IndexByte(str, '[')
	if i < 0 {
		if str == "" {
			return Spec{}, errors.New("empty parameter spec")
		}
		return Spec{Name: str}, nil
	}
	if !strings.HasSuffix(str, "]") || i == 0 {
		return Spec{}, fmt.Errorf("malformed parameter spec %q", str)
	}
	spec := Spec{Name: strings.TrimSpace(str[:i])}
	for _, f := range strings.Split(str[i+1:len(str)-1], ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			return Spec{}, fmt.Errorf("empty index name in parameter spec %q", str)
		}
		spec.Index = append(spec.Index, f)
	}
	return spec, nil
}

// ParseSpecs parses each of strs with ParseSpec. If regex is true,
// every resulting Spec has Regex set.
func ParseSpecs(strs []string, regex bool) ([]Spec, error) {
	specs := make([]Spec, 0, len(strs))
	for _, str := range strs {
		spec, err := ParseSpec(str)
		if err != nil {
			return nil, err
		}
		spec.Regex = regex
		specs = append(specs, spec)
	}
	return specs, nil
}

// IndexNames returns the distinct index names of specs in order of
// first appearance. These are the grouping key of a table produced
// by Spread.
func IndexNames(specs []Spec) []string {
	var names []string
	seen := make(map[string]bool)
	for _, s := range specs {
		for _, name := range s.Index {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// A Domain describes the original type of an index.
type Domain struct {
	// Levels, if non-nil, are the labels of index values 1..K in
	// order.
	Levels []string

	// Numeric indicates that the index was originally numeric
	// and is kept as an integer.
	Numeric bool
}

// A Recovery maps index names to the domains they were derived from.
// It is usually built once per fit from the data the model was fit
// to.
type Recovery map[string]Domain

// levels returns the recovered labels of index name, or nil.
func (r Recovery) levels(name string) []string {
	if r == nil {
		return nil
	}
	d, ok := r[name]
	if !ok || d.Numeric {
		return nil
	}
	return d.Levels
}
