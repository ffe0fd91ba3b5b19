package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/natefinch/atomic"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// StaticRenderer draws the burndown as a PNG with gonum/plot.
type StaticRenderer struct {
	// Width and Height default to 12x6 inches.
	Width, Height vg.Length
}

var _ Renderer = (*StaticRenderer)(nil)

// Render implements Renderer.
func (r *StaticRenderer) Render(series types.BurndownSeries, projectName, path string) error {
	p, err := r.plot(series, projectName)
	if err != nil {
		return err
	}

	width, height := r.Width, r.Height
	if width == 0 {
		width = 12 * vg.Inch
	}
	if height == 0 {
		height = 6 * vg.Inch
	}
	w, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("failed to create png canvas: %w", err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write chart %s: %w", path, err)
	}
	return nil
}

func (r *StaticRenderer) plot(series types.BurndownSeries, projectName string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = Title(projectName)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Story Points Remaining"
	p.X.Tick.Marker = plot.TimeTicks{Format: dateFormat}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	actual, ideal := xys(series, series.Remaining), xys(series, series.Ideal)

	line, points, err := plotter.NewLinePoints(actual)
	if err != nil {
		return nil, fmt.Errorf("failed to build actual line: %w", err)
	}
	line.Color = hexColor(actualColor)
	line.Width = vg.Points(2)
	points.Shape = draw.CircleGlyph{}
	points.Color = hexColor(actualColor)
	points.Radius = vg.Points(3)

	idealLine, err := plotter.NewLine(ideal)
	if err != nil {
		return nil, fmt.Errorf("failed to build ideal line: %w", err)
	}
	idealLine.Color = hexColor(idealColor)
	idealLine.Width = vg.Points(2)
	idealLine.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}

	p.Add(line, points, idealLine)
	p.Legend.Add("Actual", line, points)
	p.Legend.Add("Ideal", idealLine)

	// Axis ranges grow with Add, so the floor is set last.
	p.Y.Min = 0
	return p, nil
}

// xys pairs the series dates (as unix seconds) with values.
func xys(series types.BurndownSeries, values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(series.Dates))
	for i, d := range series.Dates {
		pts[i].X = float64(d.Unix())
		pts[i].Y = values[i]
	}
	return pts
}

// hexColor parses a #rrggbb string. Invalid input yields black.
func hexColor(s string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
