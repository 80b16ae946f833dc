package main

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// saveProgress charts queued cells and finished cells against frame number.
func saveProgress(filename string, frames []frame) error {
	queued := make(plotter.XYs, len(frames))
	finished := make(plotter.XYs, len(frames))
	for i, fr := range frames {
		queued[i] = plotter.XY{X: float64(i), Y: float64(fr.stats.Queued)}
		finished[i] = plotter.XY{X: float64(i), Y: float64(fr.stats.Finished)}
	}
	p := plot.New()
	p.Title.Text = "Refinement progress"
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "cells"
	lq, err := plotter.NewLine(queued)
	if err != nil {
		return err
	}
	lf, err := plotter.NewLine(finished)
	if err != nil {
		return err
	}
	lf.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(lq, lf, plotter.NewGrid())
	p.Legend.Add("queued", lq)
	p.Legend.Add("finished", lf)
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
