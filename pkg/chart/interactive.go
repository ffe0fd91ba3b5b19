package chart

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/snapshot-chromedp/render"
	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"
)

// ImageExporter converts a rendered HTML chart into an image at path.
type ImageExporter func(html []byte, path string) error

// SnapshotExporter renders the chart in headless Chrome and saves a PNG.
func SnapshotExporter(html []byte, path string) error {
	return render.MakeChartSnapshot(html, path)
}

// InteractiveRenderer writes the burndown as an ECharts HTML page next to
// path. When Exporter is set it also tries to produce the image at path;
// failures there are logged and do not fail the render.
type InteractiveRenderer struct {
	Exporter ImageExporter
	Logger   zerolog.Logger
}

var _ Renderer = (*InteractiveRenderer)(nil)

// Render implements Renderer.
func (r *InteractiveRenderer) Render(series types.BurndownSeries, projectName, path string) error {
	var buf bytes.Buffer
	if err := newLineChart(series, projectName).Render(&buf); err != nil {
		return fmt.Errorf("failed to render interactive chart: %w", err)
	}
	page := buf.Bytes()

	htmlPath := HTMLPath(path)
	if err := atomic.WriteFile(htmlPath, bytes.NewReader(page)); err != nil {
		return fmt.Errorf("failed to write chart %s: %w", htmlPath, err)
	}
	r.Logger.Info().Str("path", htmlPath).Msg("interactive chart written")

	if r.Exporter == nil || htmlPath == path {
		return nil
	}
	if err := r.Exporter(page, path); err != nil {
		r.Logger.Warn().Err(err).Str("path", path).Msg("could not export chart image, keeping html only")
		return nil
	}
	r.Logger.Info().Str("path", path).Msg("chart image exported")
	return nil
}

func newLineChart(series types.BurndownSeries, projectName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: Title(projectName),
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: Title(projectName)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Story Points", Min: 0}),
	)

	dates := make([]string, len(series.Dates))
	actual := make([]opts.LineData, len(series.Dates))
	ideal := make([]opts.LineData, len(series.Dates))
	for i, d := range series.Dates {
		dates[i] = d.Format(dateFormat)
		actual[i] = opts.LineData{Value: series.Remaining[i]}
		ideal[i] = opts.LineData{Value: series.Ideal[i]}
	}

	line.SetXAxis(dates).
		AddSeries("Actual", actual,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: actualColor, Width: 3}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: actualColor}),
		).
		AddSeries("Ideal", ideal,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: idealColor, Width: 2, Type: "dashed"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: idealColor}),
		)
	return line
}
