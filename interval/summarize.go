// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interval

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptySampleSet is returned when a sample (or a group of
	// a table) has no values to summarize.
	ErrEmptySampleSet = errors.New("empty sample set")

	// ErrInvalidProbability is returned for probabilities
	// outside (0, 1).
	ErrInvalidProbability = errors.New("probability must be in (0, 1)")
)

// DefaultProbs are the probabilities used when none are given.
var DefaultProbs = []float64{0.5, 0.8, 0.95}

// Column names of summary tables.
const (
	ProbCol   = ".prob"
	ApproxCol = ".approx"
	LowCol    = "conf.low"
	HighCol   = "conf.high"
)

// Options control summarization.
type Options struct {
	// KeepNaN propagates NaN values into the estimates instead of
	// dropping them. Any NaN in a sample makes all of its
	// estimates NaN.
	KeepNaN bool

	// Quiet suppresses the warning logged when NaN values are
	// dropped.
	Quiet bool

	// Logger receives warnings. If nil, log.Default() is used.
	Logger *log.Logger

	// Parallel is the number of groups SummarizeTable summarizes
	// concurrently. Values <= 1 summarize sequentially. The
	// result does not depend on Parallel.
	Parallel int
}

func (o *Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// An Estimate is one point estimate and interval.
type Estimate struct {
	Point        float64
	Lower, Upper float64
	Prob         float64

	// Approx is set when an HDI could not be computed from the
	// density estimate and a single window interval was used.
	Approx bool
}

// checkProbs validates probs and returns a sorted copy, or
// DefaultProbs if probs is empty.
func checkProbs(probs []float64) ([]float64, error) {
	if len(probs) == 0 {
		return DefaultProbs, nil
	}
	for _, p := range probs {
		if !(p > 0 && p < 1) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
		}
	}
	ps := append([]float64(nil), probs...)
	sort.Float64s(ps)
	return ps, nil
}

// SummarizeVector summarizes the sample xs at each probability in
// probs (DefaultProbs if empty) using method m. Estimates are ordered
// by increasing probability; HDI estimates of a multimodal sample
// have one Estimate per disjoint interval, in ascending order.
func SummarizeVector(xs []float64, probs []float64, m Method, opt Options) ([]Estimate, error) {
	ps, err := checkProbs(probs)
	if err != nil {
		return nil, err
	}
	return summarize(xs, ps, m, &opt, "")
}

// summarize is SummarizeVector for checked probabilities. where
// describes the sample in warnings.
func summarize(xs []float64, probs []float64, m Method, opt *Options, where string) ([]Estimate, error) {
	clean := xs
	nan := 0
	for _, x := range xs {
		if math.IsNaN(x) {
			nan++
		}
	}
	if nan > 0 && !opt.KeepNaN {
		clean = make([]float64, 0, len(xs)-nan)
		for _, x := range xs {
			if !math.IsNaN(x) {
				clean = append(clean, x)
			}
		}
		if !opt.Quiet {
			opt.logger().Warn("dropped missing values", "n", nan, "sample", where)
		}
	}
	if len(clean) == 0 {
		return nil, ErrEmptySampleSet
	}

	var out []Estimate
	if nan > 0 && opt.KeepNaN {
		for _, p := range probs {
			out = append(out, Estimate{math.NaN(), math.NaN(), math.NaN(), p, false})
		}
		return out, nil
	}

	sorted := sortedCopy(clean)
	point := m.Point.estimate(sorted)
	for _, p := range probs {
		bs, approx := m.Interval.intervals(sorted, p)
		for _, b := range bs {
			out = append(out, Estimate{point, b.Lower, b.Upper, p, approx})
		}
	}
	return out, nil
}

// SummarizeTable summarizes columns cols of g within each group of
// rows that agree on the key columns keys.
//
// Groups are formed from the rows of g (ignoring any existing
// grouping of g) by table.GroupBy, so they nest by key: groups are
// ordered by first appearance of the first key's values, then within
// each of those by first appearance of the second key's values, and
// so on. If cols is empty, all
// numeric columns that are not keys and do not start with "." are
// summarized. If probs is empty, DefaultProbs is used.
//
// The result has the key columns, then for a single summarized
// column x the columns x, "conf.low", and "conf.high", or for several
// columns x, "x.low", and "x.high" for each. These are followed by
// ".prob" and, for HDI methods, ".approx". Rows are ordered by group,
// then by increasing probability, then by interval. For HDI methods,
// if the columns of a group have different numbers of disjoint
// intervals at some probability, columns with fewer intervals have NaN
// bounds in the extra rows.
func SummarizeTable(g table.Grouping, keys, cols []string, probs []float64, m Method, opt Options) (*table.Table, error) {
	ps, err := checkProbs(probs)
	if err != nil {
		return nil, err
	}
	flat := table.Flatten(g)
	isKey := make(map[string]bool)
	for _, k := range keys {
		if flat.Column(k) == nil {
			return nil, fmt.Errorf("no key column %q", k)
		}
		isKey[k] = true
	}
	if len(cols) == 0 {
		for _, col := range flat.Columns() {
			if isKey[col] || strings.HasPrefix(col, ".") {
				continue
			}
			if isNumeric(reflect.TypeOf(flat.Column(col)).Elem().Kind()) {
				cols = append(cols, col)
			}
		}
		if len(cols) == 0 {
			return nil, errors.New("no numeric columns to summarize")
		}
	}
	for _, col := range cols {
		c := flat.Column(col)
		if c == nil {
			return nil, fmt.Errorf("no column %q", col)
		}
		if !isNumeric(reflect.TypeOf(c).Elem().Kind()) {
			return nil, fmt.Errorf("column %q is not numeric", col)
		}
	}

	grouped := table.GroupBy(flat, keys...)
	gids := grouped.Tables()
	results := make([]*groupResult, len(gids))
	summarizeGroup := func(i int) error {
		t := grouped.Table(gids[i])
		r, err := summarizeGroupTable(t, cols, ps, m, &opt, fmt.Sprint(gids[i]))
		if err != nil {
			return fmt.Errorf("group %v: %w", gids[i], err)
		}
		results[i] = r
		return nil
	}
	if opt.Parallel > 1 {
		var eg errgroup.Group
		eg.SetLimit(opt.Parallel)
		for i := range gids {
			i := i
			eg.Go(func() error { return summarizeGroup(i) })
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range gids {
			if err := summarizeGroup(i); err != nil {
				return nil, err
			}
		}
	}

	// Assemble the output columns.
	b := new(table.Builder)
	for _, k := range keys {
		var parts []interface{}
		for i, gid := range gids {
			reps := make([]int, results[i].rows)
			parts = append(parts, slice.Select(grouped.Table(gid).MustColumn(k), reps))
		}
		b.Add(k, concat(flat.MustColumn(k), parts))
	}
	lowName, highName := func(col string) string { return LowCol }, func(col string) string { return HighCol }
	if len(cols) > 1 {
		lowName = func(col string) string { return col + ".low" }
		highName = func(col string) string { return col + ".high" }
	}
	for c, col := range cols {
		var point, low, high []float64
		for _, r := range results {
			point = append(point, r.point[c]...)
			low = append(low, r.low[c]...)
			high = append(high, r.high[c]...)
		}
		b.Add(col, nonNil(point)).Add(lowName(col), nonNil(low)).Add(highName(col), nonNil(high))
	}
	var prob []float64
	var approx []bool
	for _, r := range results {
		prob = append(prob, r.prob...)
		approx = append(approx, r.approx...)
	}
	b.Add(ProbCol, nonNil(prob))
	if m.Interval == HDI {
		if approx == nil {
			approx = []bool{}
		}
		b.Add(ApproxCol, approx)
	}
	return b.Done(), nil
}

// groupResult is the summary of one group, column-wise.
type groupResult struct {
	rows             int
	point, low, high [][]float64 // [col][row]
	prob             []float64
	approx           []bool
}

func summarizeGroupTable(t *table.Table, cols []string, probs []float64, m Method, opt *Options, where string) (*groupResult, error) {
	ests := make([][]Estimate, len(cols))
	for c, col := range cols {
		var xs []float64
		slice.Convert(&xs, t.MustColumn(col))
		es, err := summarize(xs, probs, m, opt, where+" "+col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		ests[c] = es
	}

	r := &groupResult{
		point: make([][]float64, len(cols)),
		low:   make([][]float64, len(cols)),
		high:  make([][]float64, len(cols)),
	}
	next := make([]int, len(cols))
	for _, p := range probs {
		// Number of rows at this probability.
		n := 0
		counts := make([]int, len(cols))
		for c := range cols {
			for j := next[c]; j < len(ests[c]) && ests[c][j].Prob == p; j++ {
				counts[c]++
			}
			if counts[c] > n {
				n = counts[c]
			}
		}
		for row := 0; row < n; row++ {
			approx := false
			for c := range cols {
				var e Estimate
				if row < counts[c] {
					e = ests[c][next[c]+row]
				} else {
					first := ests[c][next[c]]
					e = Estimate{first.Point, math.NaN(), math.NaN(), p, first.Approx}
				}
				r.point[c] = append(r.point[c], e.Point)
				r.low[c] = append(r.low[c], e.Lower)
				r.high[c] = append(r.high[c], e.Upper)
				approx = approx || e.Approx
			}
			r.prob = append(r.prob, p)
			r.approx = append(r.approx, approx)
			r.rows++
		}
		for c := range cols {
			next[c] += counts[c]
		}
	}
	return r, nil
}

// concat concatenates parts, which are slices of the same type as
// like.
func concat(like interface{}, parts []interface{}) interface{} {
	out := reflect.MakeSlice(reflect.TypeOf(like), 0, 0)
	for _, p := range parts {
		out = reflect.AppendSlice(out, reflect.ValueOf(p))
	}
	return out.Interface()
}

func nonNil(xs []float64) []float64 {
	if xs == nil {
		return []float64{}
	}
	return xs
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
