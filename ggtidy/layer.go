// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ggtidy

import (
	"image/color"
	"sort"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-tidydraws/interval"
)

func defaultCol(col *string, def string) {
	if *col == "" {
		*col = def
	}
}

// LineRibbon layers a line through the point estimates of a summary
// table and a shaded ribbon for each interval probability. Wider
// intervals are drawn first and in lighter grays.
type LineRibbon struct {
	// X and Y name the input and the point estimate columns.
	X, Y string

	// Lower and Upper name the interval bound columns. They
	// default to "conf.low" and "conf.high".
	Lower, Upper string

	// Prob names the probability column. It defaults to ".prob".
	Prob string
}

func (l LineRibbon) Apply(p *gg.Plot) {
	defaultCol(&l.Lower, interval.LowCol)
	defaultCol(&l.Upper, interval.HighCol)
	defaultCol(&l.Prob, interval.ProbCol)

	probs := probsOf(p.Data(), l.Prob)
	for i, prob := range probs {
		p.Save()
		p.SetData(table.FilterEq(p.Data(), l.Prob, prob))
		p.Add(gg.LayerArea{
			X:     l.X,
			Upper: l.Upper,
			Lower: l.Lower,
			Fill:  p.Const(shade(i, len(probs))),
		})
		p.Restore()
	}

	// Every probability repeats the point estimate.
	p.Save()
	if len(probs) > 0 {
		p.SetData(table.FilterEq(p.Data(), l.Prob, probs[0]))
	}
	p.Add(gg.LayerLines{X: l.X, Y: l.Y})
	p.Restore()
}

// probsOf returns the distinct values of column col of g in
// decreasing order.
func probsOf(g table.Grouping, col string) []float64 {
	seen := make(map[float64]bool)
	var probs []float64
	for _, gid := range g.Tables() {
		var ps []float64
		slice.Convert(&ps, g.Table(gid).MustColumn(col))
		for _, p := range ps {
			if !seen[p] {
				seen[p] = true
				probs = append(probs, p)
			}
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(probs)))
	return probs
}

// shade returns the fill of the i'th of n ribbons, from light gray
// for the widest to mid gray for the narrowest.
func shade(i, n int) color.Color {
	const light, dark = 224, 128
	if n <= 1 {
		return color.Gray{(light + dark) / 2}
	}
	return color.Gray{uint8(light - i*(light-dark)/(n-1))}
}

// StatLineRibbon summarizes column y of p's data at each distinct
// value of x and layers the result as a LineRibbon.
func StatLineRibbon(p *gg.Plot, x, y string, probs []float64, m interval.Method) *gg.Plot {
	p.Stat(PointInterval{Keys: []string{x}, Cols: []string{y}, Probs: probs, Method: m})
	return p.Add(LineRibbon{X: x, Y: y})
}

// PointIntervals layers a point at each point estimate and a
// vertical segment spanning each interval.
type PointIntervals struct {
	// X names the position column and Y the point estimate.
	X, Y string

	// Lower and Upper name the interval bound columns. They
	// default to "conf.low" and "conf.high".
	Lower, Upper string
}

func (l PointIntervals) Apply(p *gg.Plot) {
	defaultCol(&l.Lower, interval.LowCol)
	defaultCol(&l.Upper, interval.HighCol)

	const ycol, segcol = "[ggtidy-interval]", "[ggtidy-segment]"
	p.Save()
	p.SetData(table.MapTables(p.Data(), func(_ table.GroupID, t *table.Table) *table.Table {
		var lo, hi []float64
		slice.Convert(&lo, t.MustColumn(l.Lower))
		slice.Convert(&hi, t.MustColumn(l.Upper))
		idx := make([]int, 0, 2*len(lo))
		ys := make([]float64, 0, 2*len(lo))
		for i := range lo {
			idx = append(idx, i, i)
			ys = append(ys, lo[i], hi[i])
		}
		nt := new(table.Builder).
			Add(l.X, slice.Select(t.MustColumn(l.X), idx)).
			Add(ycol, ys).
			Add(segcol, idx)
		preserveConsts(nt, t)
		return nt.Done()
	}))
	p.GroupBy(segcol)
	p.Add(gg.LayerPaths{X: l.X, Y: ycol})
	p.Restore()

	p.Add(gg.LayerPoints{X: l.X, Y: l.Y})
}

// DensityPlot layers a kernel density estimate of a column of
// samples and shades the highest-density region.
type DensityPlot struct {
	// X names the sample column.
	X string

	// Prob is the probability of the shaded region. It defaults
	// to 0.95.
	Prob float64
}

func (d DensityPlot) Apply(p *gg.Plot) {
	if d.Prob == 0 {
		d.Prob = 0.95
	}
	const dcol, piece = "probability density", "[ggtidy-piece]"

	// Find the region of each group before the density estimate
	// replaces the samples.
	regions := make(map[table.GroupID][]interval.Bounds)
	data := p.Data()
	for _, gid := range data.Tables() {
		var xs []float64
		slice.Convert(&xs, data.Table(gid).MustColumn(d.X))
		es, err := interval.SummarizeVector(xs, []float64{d.Prob}, interval.ModeHDI, interval.Options{Quiet: true})
		if err != nil {
			continue
		}
		for _, e := range es {
			regions[gid] = append(regions[gid], interval.Bounds{Lower: e.Lower, Upper: e.Upper})
		}
	}

	defer p.Save().Restore()
	p.Stat(ggstat.Density{X: d.X, N: 512})

	p.Save()
	p.SetData(table.MapTables(p.Data(), func(gid table.GroupID, t *table.Table) *table.Table {
		var xs []float64
		slice.Convert(&xs, t.MustColumn(d.X))
		var idx, pieces []int
		for i, x := range xs {
			for j, b := range regions[gid] {
				if b.Lower <= x && x <= b.Upper {
					idx = append(idx, i)
					pieces = append(pieces, j)
					break
				}
			}
		}
		if idx == nil {
			idx, pieces = []int{}, []int{}
		}
		nt := new(table.Builder).
			Add(d.X, slice.Select(xs, idx)).
			Add(dcol, slice.Select(t.MustColumn(dcol), idx)).
			Add(piece, pieces)
		preserveConsts(nt, t)
		return nt.Done()
	}))
	p.GroupBy(piece)
	p.Add(gg.LayerArea{X: d.X, Upper: dcol, Fill: p.Const(color.Gray{192})})
	p.Restore()

	p.Add(gg.LayerLines{X: d.X, Y: dcol})
}
