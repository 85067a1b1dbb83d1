// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interval

import (
	"errors"
	"io"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/aclements/go-gg/table"
	"github.com/charmbracelet/log"
)

func aeq(x, y float64) bool {
	return math.Abs(x-y) < 1e-9
}

var oneToTen = []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

func TestQuantile(t *testing.T) {
	for _, test := range []struct {
		q, want float64
	}{
		{0, 1}, {1, 10}, {0.5, 5.5}, {0.1, 1.9}, {0.9, 9.1}, {0.25, 3.25},
	} {
		if got := Quantile(oneToTen, test.q); !aeq(got, test.want) {
			t.Errorf("Quantile(1..10, %v) = %v; want %v", test.q, got, test.want)
		}
	}
	if got := Quantile([]float64{7}, 0.3); got != 7 {
		t.Errorf("Quantile([7], 0.3) = %v; want 7", got)
	}
}

func TestMeanQI(t *testing.T) {
	es, err := SummarizeVector(oneToTen, []float64{0.8}, MeanQI, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(es) != 1 {
		t.Fatalf("got %d estimates; want 1", len(es))
	}
	e := es[0]
	if !aeq(e.Point, 5.5) || !aeq(e.Lower, 1.9) || !aeq(e.Upper, 9.1) || e.Prob != 0.8 {
		t.Errorf("mean_qi(1..10, 0.8) = %+v; want {5.5 1.9 9.1 0.8}", e)
	}
}

func TestQILimits(t *testing.T) {
	xs := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	sorted := sortedCopy(xs)
	tiny := QuantileInterval(sorted, 1e-12)
	if med := Median(sorted); !aeq(tiny.Lower, med) || !aeq(tiny.Upper, med) {
		t.Errorf("QI at p->0 = %+v; want [%v, %v]", tiny, med, med)
	}
	full := QuantileInterval(sorted, 1-1e-12)
	if !aeq(full.Lower, 1) || !aeq(full.Upper, 9) {
		t.Errorf("QI at p->1 = %+v; want [1, 9]", full)
	}
}

func TestQIContainsPoint(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 100; trial++ {
		xs := make([]float64, 1+r.Intn(50))
		for i := range xs {
			xs[i] = r.NormFloat64()
		}
		for _, m := range []Method{MedianQI, MeanQI} {
			es, err := SummarizeVector(xs, []float64{0.5, 0.9, 0.99}, m, Options{})
			if err != nil {
				t.Fatal(err)
			}
			for _, e := range es {
				if e.Lower > e.Upper {
					t.Fatalf("%v: lower %v > upper %v", m, e.Lower, e.Upper)
				}
				if m == MedianQI && !(e.Lower <= e.Point && e.Point <= e.Upper) {
					t.Fatalf("%v: point %v outside [%v, %v]", m, e.Point, e.Lower, e.Upper)
				}
			}
		}
	}
}

func TestWindowInterval(t *testing.T) {
	xs := []float64{0, 10, 11, 12, 13, 30}
	if got, want := WindowInterval(xs, 0.5), (Bounds{10, 12}); got != want {
		t.Errorf("WindowInterval = %+v; want %+v", got, want)
	}
	if got, want := WindowInterval(xs, 0.99), (Bounds{0, 30}); got != want {
		t.Errorf("WindowInterval = %+v; want %+v", got, want)
	}
}

func bimodal(n int) []float64 {
	r := rand.New(rand.NewSource(42))
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = r.NormFloat64()
		if i%2 == 1 {
			xs[i] += 10
		}
	}
	return xs
}

func TestHDIUnimodal(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	xs := make([]float64, 2000)
	for i := range xs {
		xs[i] = r.NormFloat64()
	}
	sorted := sortedCopy(xs)
	bs, approx := HDInterval(sorted, 0.95)
	if approx {
		t.Errorf("normal sample HDI is approximate")
	}
	if len(bs) != 1 {
		t.Fatalf("normal sample HDI has %d intervals; want 1", len(bs))
	}
	if want := WindowInterval(sorted, 0.95); bs[0] != want {
		t.Errorf("unimodal HDI = %+v; want window %+v", bs[0], want)
	}
	if bs[0].Lower > -1.5 || bs[0].Upper < 1.5 {
		t.Errorf("95%% HDI of N(0,1) = %+v; too narrow", bs[0])
	}
}

func TestHDIBimodal(t *testing.T) {
	xs := bimodal(4000)
	sorted := sortedCopy(xs)
	for _, p := range []float64{0.5, 0.8, 0.95} {
		bs, approx := HDInterval(sorted, p)
		if approx {
			t.Errorf("p=%v: bimodal HDI is approximate", p)
		}
		if len(bs) != 2 {
			t.Fatalf("p=%v: bimodal HDI has %d intervals; want 2: %+v", p, len(bs), bs)
		}
		if !(bs[0].Lower <= bs[0].Upper && bs[0].Upper < bs[1].Lower && bs[1].Lower <= bs[1].Upper) {
			t.Errorf("p=%v: intervals not ascending and disjoint: %+v", p, bs)
		}
		if bs[0].Upper > 5 || bs[1].Lower < 5 {
			t.Errorf("p=%v: intervals %+v do not separate the modes", p, bs)
		}
		// The region must hold at least p of the sample, up
		// to density estimation error.
		in := 0
		for _, x := range xs {
			for _, b := range bs {
				if b.Lower <= x && x <= b.Upper {
					in++
					break
				}
			}
		}
		if frac := float64(in) / float64(len(xs)); frac < p-0.02 {
			t.Errorf("p=%v: HDI holds only %v of the sample", p, frac)
		}
	}
}

func TestHDIDegenerate(t *testing.T) {
	es, err := SummarizeVector([]float64{2, 2, 2}, []float64{0.9}, ModeHDI, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(es) != 1 || es[0].Point != 2 || es[0].Lower != 2 || es[0].Upper != 2 || !es[0].Approx {
		t.Errorf("mode_hdi of constant sample = %+v; want approximate [2, 2] at 2", es)
	}
}

func TestMode(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	xs := make([]float64, 5000)
	for i := range xs {
		// Skewed: most mass near 1, long right tail.
		xs[i] = math.Exp(r.NormFloat64() * 0.5)
	}
	m := Mode(sortedCopy(xs))
	// The mode of lognormal(0, 0.5) is exp(-0.25) ~= 0.78.
	if m < 0.6 || m > 0.95 {
		t.Errorf("Mode = %v; want ~0.78", m)
	}
	if got := Mode([]float64{4}); got != 4 {
		t.Errorf("Mode([4]) = %v; want 4", got)
	}
}

func TestSummarizeVectorErrors(t *testing.T) {
	quiet := Options{Logger: log.New(io.Discard)}
	if _, err := SummarizeVector(nil, nil, MeanQI, quiet); !errors.Is(err, ErrEmptySampleSet) {
		t.Errorf("empty: got %v; want ErrEmptySampleSet", err)
	}
	if _, err := SummarizeVector([]float64{math.NaN()}, nil, MeanQI, quiet); !errors.Is(err, ErrEmptySampleSet) {
		t.Errorf("all NaN: got %v; want ErrEmptySampleSet", err)
	}
	for _, p := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		if _, err := SummarizeVector(oneToTen, []float64{p}, MeanQI, quiet); !errors.Is(err, ErrInvalidProbability) {
			t.Errorf("p=%v: got %v; want ErrInvalidProbability", p, err)
		}
	}
}

func TestSummarizeVectorNaN(t *testing.T) {
	xs := append([]float64{math.NaN()}, oneToTen...)
	es, err := SummarizeVector(xs, []float64{0.8}, MeanQI, Options{Quiet: true})
	if err != nil {
		t.Fatal(err)
	}
	if !aeq(es[0].Point, 5.5) {
		t.Errorf("NaN not dropped: point = %v", es[0].Point)
	}
	es, err = SummarizeVector(xs, []float64{0.8}, MeanQI, Options{KeepNaN: true})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(es[0].Point) || !math.IsNaN(es[0].Lower) || !math.IsNaN(es[0].Upper) {
		t.Errorf("NaN not propagated: %+v", es[0])
	}
}

func TestSummarizeVectorOrder(t *testing.T) {
	es, err := SummarizeVector(oneToTen, []float64{0.95, 0.5}, MedianQI, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(es) != 2 || es[0].Prob != 0.5 || es[1].Prob != 0.95 {
		t.Errorf("estimates not ordered by probability: %+v", es)
	}
	es, _ = SummarizeVector(oneToTen, nil, MedianQI, Options{})
	if len(es) != len(DefaultProbs) {
		t.Errorf("got %d estimates with default probs; want %d", len(es), len(DefaultProbs))
	}
}

func TestParseMethod(t *testing.T) {
	for _, m := range []Method{MeanQI, MedianQI, ModeQI, MeanHDI, MedianHDI, ModeHDI} {
		got, err := ParseMethod(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMethod(%q) = %v, %v", m.String(), got, err)
		}
	}
	for _, bad := range []string{"mean", "mean_ci", "avg_qi"} {
		if _, err := ParseMethod(bad); err == nil {
			t.Errorf("ParseMethod(%q) succeeded", bad)
		}
	}
}

func TestSummarizeTableSingle(t *testing.T) {
	tab := new(table.Builder).
		Add("g", []string{"b", "a", "b", "a", "b", "a"}).
		Add(".chain", []int{1, 1, 1, 1, 1, 1}).
		Add("x", []float64{1, 10, 2, 20, 3, 30}).
		Done()
	got, err := SummarizeTable(tab, []string{"g"}, nil, []float64{0.5, 0.9}, MedianQI, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"g", "x", "conf.low", "conf.high", ".prob"}; !reflect.DeepEqual(want, got.Columns()) {
		t.Fatalf("columns = %v; want %v", got.Columns(), want)
	}
	if want := []string{"b", "b", "a", "a"}; !reflect.DeepEqual(want, got.MustColumn("g")) {
		t.Errorf("g = %v; want %v", got.MustColumn("g"), want)
	}
	if want := []float64{2, 2, 20, 20}; !reflect.DeepEqual(want, got.MustColumn("x")) {
		t.Errorf("x = %v; want %v", got.MustColumn("x"), want)
	}
	if want := []float64{0.5, 0.9, 0.5, 0.9}; !reflect.DeepEqual(want, got.MustColumn(".prob")) {
		t.Errorf(".prob = %v; want %v", got.MustColumn(".prob"), want)
	}
	lows := got.MustColumn("conf.low").([]float64)
	if !aeq(lows[0], 1.5) || !aeq(lows[3], 11) {
		t.Errorf("conf.low = %v; want [1.5 ... 11]", lows)
	}
}

func TestSummarizeTableMulti(t *testing.T) {
	tab := new(table.Builder).
		Add("x", []float64{1, 2, 3}).
		Add("y", []int{4, 5, 6}).
		Done()
	got, err := SummarizeTable(tab, nil, nil, []float64{0.5}, MeanQI, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"x", "x.low", "x.high", "y", "y.low", "y.high", ".prob"}
	if !reflect.DeepEqual(want, got.Columns()) {
		t.Fatalf("columns = %v; want %v", got.Columns(), want)
	}
	if got.Len() != 1 {
		t.Errorf("got %d rows; want 1", got.Len())
	}
	if want := []float64{5}; !reflect.DeepEqual(want, got.MustColumn("y")) {
		t.Errorf("y = %v; want %v", got.MustColumn("y"), want)
	}
}

func TestSummarizeTableHDI(t *testing.T) {
	xs := bimodal(2000)
	tab := new(table.Builder).Add("x", xs).Done()
	got, err := SummarizeTable(tab, nil, []string{"x"}, []float64{0.8}, ModeHDI, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"x", "conf.low", "conf.high", ".prob", ".approx"}; !reflect.DeepEqual(want, got.Columns()) {
		t.Fatalf("columns = %v; want %v", got.Columns(), want)
	}
	if got.Len() != 2 {
		t.Fatalf("got %d rows; want one per mode", got.Len())
	}
	lows := got.MustColumn("conf.low").([]float64)
	if lows[0] >= lows[1] {
		t.Errorf("intervals not ascending: %v", lows)
	}
}

func TestSummarizeTableHDIMulti(t *testing.T) {
	// x splits into two intervals, y has one.
	r := rand.New(rand.NewSource(7))
	ys := make([]float64, 2000)
	for i := range ys {
		ys[i] = r.NormFloat64()
	}
	tab := new(table.Builder).Add("x", bimodal(2000)).Add("y", ys).Done()
	got, err := SummarizeTable(tab, nil, []string{"x", "y"}, []float64{0.8}, MeanHDI, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"x", "x.low", "x.high", "y", "y.low", "y.high", ".prob", ".approx"}; !reflect.DeepEqual(want, got.Columns()) {
		t.Fatalf("columns = %v; want %v", got.Columns(), want)
	}
	if got.Len() != 2 {
		t.Fatalf("got %d rows; want 2", got.Len())
	}
	xlow := got.MustColumn("x.low").([]float64)
	if xlow[0] >= xlow[1] {
		t.Errorf("x intervals not ascending: %v", xlow)
	}
	ylow, yhigh := got.MustColumn("y.low").([]float64), got.MustColumn("y.high").([]float64)
	if math.IsNaN(ylow[0]) || math.IsNaN(yhigh[0]) {
		t.Errorf("y interval = [%v, %v]; want finite", ylow[0], yhigh[0])
	}
	if !math.IsNaN(ylow[1]) || !math.IsNaN(yhigh[1]) {
		t.Errorf("second y interval = [%v, %v]; want NaN padding", ylow[1], yhigh[1])
	}
	if y := got.MustColumn("y").([]float64); y[0] != y[1] {
		t.Errorf("y point estimate differs across rows: %v", y)
	}
}

func TestSummarizeTableGroupOrder(t *testing.T) {
	tab := new(table.Builder).
		Add("a", []int{1, 2, 1}).
		Add("b", []int{2, 1, 1}).
		Add("v", []float64{10, 20, 30}).
		Done()
	got, err := SummarizeTable(tab, []string{"a", "b"}, nil, []float64{0.5}, MeanQI, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{1, 1, 2}; !reflect.DeepEqual(want, got.MustColumn("a")) {
		t.Errorf("a = %v; want %v", got.MustColumn("a"), want)
	}
	if want := []int{2, 1, 1}; !reflect.DeepEqual(want, got.MustColumn("b")) {
		t.Errorf("b = %v; want %v", got.MustColumn("b"), want)
	}
	if want := []float64{10, 30, 20}; !reflect.DeepEqual(want, got.MustColumn("v")) {
		t.Errorf("v = %v; want %v", got.MustColumn("v"), want)
	}
}

func TestSummarizeTableParallel(t *testing.T) {
	n := 40
	g := make([]int, 0, n*50)
	x := make([]float64, 0, n*50)
	r := rand.New(rand.NewSource(9))
	for i := 0; i < n*50; i++ {
		g = append(g, (i*7)%n)
		x = append(x, r.Float64()+float64(i%n))
	}
	tab := new(table.Builder).Add("g", g).Add("x", x).Done()
	seq, err := SummarizeTable(tab, []string{"g"}, []string{"x"}, nil, ModeHDI, Options{})
	if err != nil {
		t.Fatal(err)
	}
	par, err := SummarizeTable(tab, []string{"g"}, []string{"x"}, nil, ModeHDI, Options{Parallel: 8})
	if err != nil {
		t.Fatal(err)
	}
	for _, col := range seq.Columns() {
		if !reflect.DeepEqual(seq.Column(col), par.Column(col)) {
			t.Errorf("parallel column %s differs from sequential", col)
		}
	}
}

func TestSummarizeTableEmptyGroup(t *testing.T) {
	tab := new(table.Builder).
		Add("g", []string{"a", "b"}).
		Add("x", []float64{1, math.NaN()}).
		Done()
	_, err := SummarizeTable(tab, []string{"g"}, nil, nil, MeanQI, Options{Quiet: true})
	if !errors.Is(err, ErrEmptySampleSet) {
		t.Errorf("got %v; want ErrEmptySampleSet", err)
	}
}
