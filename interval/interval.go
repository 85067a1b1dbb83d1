// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package interval computes point estimates and credible intervals
// from samples.
//
// Point estimates are the mean, median, or mode of a sample.
// Intervals are either quantile intervals (QI), which exclude equal
// mass from both tails, or highest-density intervals (HDI), which are
// the narrowest region containing the requested mass and may be
// split into several disjoint pieces when the sample is multimodal.
package interval

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
)

const (
	// gridPoints is the number of points at which density
	// estimates are evaluated.
	gridPoints = 512

	// modeWiden is how far, in bandwidths, the mode's density
	// grid extends beyond the sample range.
	modeWiden = 3

	// maxBisect bounds the bisection search for the HDI density
	// threshold.
	maxBisect = 100
)

// Bounds is one closed interval [Lower, Upper].
type Bounds struct {
	Lower, Upper float64
}

// Quantile returns the q'th quantile of sorted using linear
// interpolation between order statistics (Hyndman and Fan's type 7,
// the default in R). sorted must be sorted and non-empty.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// QuantileInterval returns the central interval of sorted containing
// probability p, bounded by the (1-p)/2 and (1+p)/2 quantiles.
func QuantileInterval(sorted []float64, p float64) Bounds {
	return Bounds{Quantile(sorted, (1-p)/2), Quantile(sorted, (1+p)/2)}
}

// WindowInterval returns the narrowest interval spanning
// ceil(p*len(sorted)) consecutive order statistics of sorted. This is
// the highest-density interval of a unimodal sample.
func WindowInterval(sorted []float64, p float64) Bounds {
	n := len(sorted)
	k := int(math.Ceil(p*float64(n) - 1e-9))
	if k < 1 {
		k = 1
	} else if k > n {
		k = n
	}
	best := 0
	width := math.Inf(1)
	for i := 0; i+k-1 < n; i++ {
		if w := sorted[i+k-1] - sorted[i]; w < width {
			best, width = i, w
		}
	}
	return Bounds{sorted[best], sorted[best+k-1]}
}

// HDInterval returns the highest-density region of sorted containing
// probability p.
//
// The region is found by evaluating a Gaussian kernel density
// estimate (Silverman's bandwidth) at 512 points spanning the sample
// and bisecting on the density level whose superlevel set holds mass
// p. Each connected piece of that set is one interval, in ascending
// order. If there is only one piece, the tighter WindowInterval is
// returned instead.
//
// approx is true if the density estimate was degenerate or the
// threshold search did not converge; the WindowInterval is returned
// in that case.
func HDInterval(sorted []float64, p float64) (bs []Bounds, approx bool) {
	pieces, ok := densityRegion(sorted, p)
	if !ok {
		return []Bounds{WindowInterval(sorted, p)}, true
	}
	if len(pieces) == 1 {
		return []Bounds{WindowInterval(sorted, p)}, false
	}
	return pieces, false
}

// kde returns a Gaussian KDE of xs, or false if xs has no spread.
func kde(xs []float64) (*stats.KDE, bool) {
	sample := stats.Sample{Xs: xs}
	bw := stats.BandwidthSilverman(sample)
	if !(bw > 0) || math.IsInf(bw, 0) {
		return nil, false
	}
	return &stats.KDE{
		Sample:    sample,
		Kernel:    stats.GaussianKernel,
		Bandwidth: bw,
	}, true
}

func densityRegion(sorted []float64, p float64) ([]Bounds, bool) {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if !(hi > lo) {
		return nil, false
	}
	k, ok := kde(sorted)
	if !ok {
		return nil, false
	}
	grid := vec.Linspace(lo, hi, gridPoints)
	dens := vec.Map(k.PDF, grid)

	total, peak := 0.0, 0.0
	for _, d := range dens {
		if math.IsNaN(d) {
			return nil, false
		}
		total += d
		if d > peak {
			peak = d
		}
	}
	if !(total > 0) {
		return nil, false
	}
	mass := func(level float64) float64 {
		m := 0.0
		for _, d := range dens {
			if d >= level {
				m += d
			}
		}
		return m / total
	}
	// settled reports whether no density value lies in (a, b),
	// in which case the superlevel set of a is final.
	settled := func(a, b float64) bool {
		for _, d := range dens {
			if d > a && d < b {
				return false
			}
		}
		return true
	}

	// Invariant: mass(low) >= p > mass(high).
	low, high := 0.0, math.Nextafter(peak, math.Inf(1))
	converged := false
	for i := 0; i < maxBisect; i++ {
		if settled(low, high) {
			converged = true
			break
		}
		mid := low + (high-low)/2
		if mass(mid) >= p {
			low = mid
		} else {
			high = mid
		}
	}
	if !converged {
		return nil, false
	}

	var pieces []Bounds
	in := false
	for i, d := range dens {
		switch {
		case d >= low && !in:
			in = true
			pieces = append(pieces, Bounds{grid[i], grid[i]})
		case d >= low:
			pieces[len(pieces)-1].Upper = grid[i]
		default:
			in = false
		}
	}
	return pieces, true
}

// Mean returns the mean of xs.
func Mean(xs []float64) float64 {
	return stats.Mean(xs)
}

// Median returns the median of sorted.
func Median(sorted []float64) float64 {
	return Quantile(sorted, 0.5)
}

// Mode returns the location of the maximum of a Gaussian kernel
// density estimate of sorted, evaluated at 512 points spanning the
// sample widened by three bandwidths on each side. If the sample has
// no spread, Mode returns its only value.
func Mode(sorted []float64) float64 {
	k, ok := kde(sorted)
	if !ok {
		return sorted[0]
	}
	lo := sorted[0] - modeWiden*k.Bandwidth
	hi := sorted[len(sorted)-1] + modeWiden*k.Bandwidth
	grid := vec.Linspace(lo, hi, gridPoints)
	best, bestD := sorted[0], math.Inf(-1)
	for _, x := range grid {
		if d := k.PDF(x); d > bestD {
			best, bestD = x, d
		}
	}
	return best
}

// sortedCopy returns a sorted copy of xs.
func sortedCopy(xs []float64) []float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	return s
}
