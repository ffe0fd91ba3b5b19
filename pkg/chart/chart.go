// Package chart renders burndown series to image and HTML files.
package chart

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goblinsan/gh-burndown/pkg/types"
	"github.com/rs/zerolog"
)

const (
	actualColor = "#ff6b6b"
	idealColor  = "#4ecdc4"
	dateFormat  = "2006-01-02"
)

// Renderer writes a burndown chart for a project to path.
type Renderer interface {
	Render(series types.BurndownSeries, projectName, path string) error
}

// Title returns the chart title used by every renderer.
func Title(projectName string) string {
	return projectName + " - Sprint Burndown"
}

// HTMLPath replaces the extension of path with .html.
func HTMLPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
}

// ForType returns the renderers selected by chartType, in the order they
// should run. With ChartBoth the static renderer owns the image path and the
// interactive one only writes HTML.
func ForType(chartType types.ChartType, log zerolog.Logger) ([]Renderer, error) {
	switch chartType {
	case types.ChartStatic:
		return []Renderer{&StaticRenderer{}}, nil
	case types.ChartInteractive:
		return []Renderer{&InteractiveRenderer{Exporter: SnapshotExporter, Logger: log}}, nil
	case types.ChartBoth, "":
		return []Renderer{&StaticRenderer{}, &InteractiveRenderer{Logger: log}}, nil
	default:
		return nil, fmt.Errorf("unsupported chart type %q", chartType)
	}
}

// Render runs every renderer selected by chartType against path. An empty
// path falls back to types.DefaultSavePath.
func Render(chartType types.ChartType, series types.BurndownSeries, projectName, path string, log zerolog.Logger) error {
	if path == "" {
		path = types.DefaultSavePath
	}
	renderers, err := ForType(chartType, log)
	if err != nil {
		return err
	}
	for _, r := range renderers {
		if err := r.Render(series, projectName, path); err != nil {
			return err
		}
	}
	return nil
}
