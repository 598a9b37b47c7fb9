/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	plot.go: Wind profile chart, north and east components against altitude.
*/

package export

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/b3nn0/balloonwind/windcalc"
)

// ProfilePlot builds the chart. Flagged vectors are left out.
func ProfilePlot(title string, vectors []windcalc.WindVector) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Wind (m/s)"
	p.Y.Label.Text = "Altitude (m)"
	p.Add(plotter.NewGrid())

	north := make(plotter.XYs, 0, len(vectors))
	east := make(plotter.XYs, 0, len(vectors))
	for _, v := range vectors {
		if v.Flagged() {
			continue
		}
		north = append(north, plotter.XY{X: v.NorthMs, Y: v.AltitudeM})
		east = append(east, plotter.XY{X: v.EastMs, Y: v.AltitudeM})
	}
	if len(north) == 0 {
		return nil, fmt.Errorf("profile plot: no usable wind vectors")
	}
	if err := plotutil.AddLinePoints(p, "North", north, "East", east); err != nil {
		return nil, err
	}
	return p, nil
}

// WriteProfilePlot saves the chart to path. The extension picks the format (.png, .svg, .pdf).
func WriteProfilePlot(path, title string, vectors []windcalc.WindVector) error {
	p, err := ProfilePlot(title, vectors)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 8*vg.Inch, path)
}
