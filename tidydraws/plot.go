// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-tidydraws/ggtidy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPlotCmd(v *viper.Viper) *cobra.Command {
	var (
		ts            tableSource
		kind          string
		x, y          string
		probs         []float64
		out, title    string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "plot --kind kind [table | -p specs chain.csv...]",
		Short: "Plot intervals or densities as SVG",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := method(v)
			if err != nil {
				return err
			}
			t, _, err := ts.load(cmd, v, args)
			if err != nil {
				return err
			}
			if y == "" {
				return errors.New("--y is required")
			}

			p := gg.NewPlot(t)
			switch kind {
			case "lineribbon":
				if x == "" {
					return errors.New("lineribbon needs --x")
				}
				ggtidy.StatLineRibbon(p, x, y, probs, m)
			case "pointinterval":
				if x == "" {
					return errors.New("pointinterval needs --x")
				}
				p.Stat(ggtidy.PointInterval{Keys: []string{x}, Cols: []string{y}, Probs: probs, Method: m})
				p.Add(ggtidy.PointIntervals{X: x, Y: y})
			case "density":
				prob := 0.0
				if len(probs) > 0 {
					prob = probs[0]
				}
				if x != "" {
					p.GroupBy(x)
				}
				p.Add(ggtidy.DensityPlot{X: y, Prob: prob})
			default:
				return fmt.Errorf("unknown plot kind %q", kind)
			}
			if title != "" {
				p.Add(gg.Title(title))
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return p.WriteSVG(w, width, height)
		},
	}
	ts.addFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&kind, "kind", "lineribbon", "plot `kind`: lineribbon, pointinterval, or density")
	f.StringVar(&x, "x", "", "position `column` (for density, the grouping column)")
	f.StringVar(&y, "y", "", "value `column`")
	f.Float64SliceVar(&probs, "prob", nil, "interval `probabilities`")
	f.StringVarP(&out, "output", "o", "", "write SVG to `file` (default: stdout)")
	f.StringVar(&title, "title", "", "plot `title`")
	f.IntVar(&width, "width", 600, "plot width in `pixels`")
	f.IntVar(&height, "height", 400, "plot height in `pixels`")
	return cmd
}
