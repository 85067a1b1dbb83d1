// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interval_test

import (
	"fmt"

	"github.com/aclements/go-tidydraws/interval"
)

func ExampleSummarizeVector() {
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	es, err := interval.SummarizeVector(xs, []float64{0.5, 0.8}, interval.MeanQI, interval.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, e := range es {
		fmt.Printf("%.2f [%.3f, %.3f] at %v\n", e.Point, e.Lower, e.Upper, e.Prob)
	}
	// Output:
	// 5.50 [3.250, 7.750] at 0.5
	// 5.50 [1.900, 9.100] at 0.8
}
