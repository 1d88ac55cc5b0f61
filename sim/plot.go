package sim

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewFitPlot creates a new plot of a least squares fit from two data sources:
// measure: measured data points
// fitted:  fitted model values
// Both matrices store one point per row with at least 2 columns (X and Y).
// It returns error if either of the supplied data matrices is nil or does
// not have at least 2 columns.
func NewFitPlot(measure, fitted *mat.Dense) (*plot.Plot, error) {
	if measure == nil || fitted == nil {
		return nil, fmt.Errorf("invalid data supplied")
	}

	_, cms := measure.Dims()
	_, cmf := fitted.Dims()

	if cms < 2 || cmf < 2 {
		return nil, fmt.Errorf("invalid data dimensions")
	}

	p := plot.New()

	p.Title.Text = "Least squares fit"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	legend := plot.NewLegend()
	legend.Top = true

	p.Legend = legend

	// Make a scatter plotter for measurement data
	measData := makePoints(measure)
	measScatter, err := plotter.NewScatter(measData)
	if err != nil {
		return nil, err
	}
	measScatter.GlyphStyle.Color = color.RGBA{G: 255, A: 128}
	measScatter.Shape = draw.CrossGlyph{}
	measScatter.GlyphStyle.Radius = vg.Points(3)

	p.Add(measScatter)
	p.Legend.Add("measurement", measScatter)

	// Make a line plotter for the fitted model
	fitData := makePoints(fitted)
	fitLine, err := plotter.NewLine(fitData)
	if err != nil {
		return nil, fmt.Errorf("failed to create line: %v", err)
	}
	fitLine.LineStyle.Color = color.RGBA{R: 255, B: 128, A: 255}
	fitLine.LineStyle.Width = vg.Points(1)

	p.Add(fitLine)
	p.Legend.Add("fit", fitLine)

	return p, nil
}

func makePoints(m *mat.Dense) plotter.XYs {
	r, _ := m.Dims()
	pts := make(plotter.XYs, r)
	for i := 0; i < r; i++ {
		pts[i].X = m.At(i, 0)
		pts[i].Y = m.At(i, 1)
	}

	return pts
}
