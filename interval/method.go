// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interval

import (
	"fmt"
	"strings"
)

// A Point selects a point estimate.
type Point int

const (
	PointMean Point = iota
	PointMedian
	PointMode
)

var pointNames = []string{"mean", "median", "mode"}

func (p Point) String() string {
	if p < 0 || int(p) >= len(pointNames) {
		return fmt.Sprintf("Point(%d)", int(p))
	}
	return pointNames[p]
}

// estimate computes point estimate p of sorted.
func (p Point) estimate(sorted []float64) float64 {
	switch p {
	case PointMedian:
		return Median(sorted)
	case PointMode:
		return Mode(sorted)
	}
	return Mean(sorted)
}

// A Kind selects an interval method.
type Kind int

const (
	// QI is the equal-tailed quantile interval.
	QI Kind = iota
	// HDI is the highest-density interval.
	HDI
)

func (k Kind) String() string {
	switch k {
	case QI:
		return "qi"
	case HDI:
		return "hdi"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Method pairs a point estimate with an interval method.
type Method struct {
	Point    Point
	Interval Kind
}

var (
	MeanQI    = Method{PointMean, QI}
	MedianQI  = Method{PointMedian, QI}
	ModeQI    = Method{PointMode, QI}
	MeanHDI   = Method{PointMean, HDI}
	MedianHDI = Method{PointMedian, HDI}
	ModeHDI   = Method{PointMode, HDI}
)

// String returns m's name, such as "median_qi".
func (m Method) String() string {
	return m.Point.String() + "_" + m.Interval.String()
}

// ParseMethod parses a method name as returned by Method.String.
func ParseMethod(name string) (Method, error) {
	i := strings.IndexByte(name, '_')
	if i < 0 {
		return Method{}, fmt.Errorf("unknown method %q", name)
	}
	var m Method
	found := false
	for p, pn := range pointNames {
		if pn == name[:i] {
			m.Point, found = Point(p), true
		}
	}
	if !found {
		return Method{}, fmt.Errorf("unknown point estimate in method %q", name)
	}
	switch name[i+1:] {
	case "qi":
		m.Interval = QI
	case "hdi":
		m.Interval = HDI
	default:
		return Method{}, fmt.Errorf("unknown interval in method %q", name)
	}
	return m, nil
}

// intervals computes interval kind k of sorted at probability p.
func (k Kind) intervals(sorted []float64, p float64) ([]Bounds, bool) {
	if k == HDI {
		return HDInterval(sorted, p)
	}
	return []Bounds{QuantileInterval(sorted, p)}, false
}
