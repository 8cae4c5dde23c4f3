package render

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/orbits/internal/config"
	"github.com/banshee-data/orbits/internal/units"
)

// HTMLRenderer draws an interactive 3D line chart: x and y on the horizontal
// axes, elapsed time on the vertical axis.
type HTMLRenderer struct {
	DistanceUnits string
	TimeUnits     string
	Width         string
	Height        string
	// AssetsHost overrides where the echarts scripts are fetched from.
	AssetsHost string
}

// NewHTMLRenderer labels the chart axes from cfg.
func NewHTMLRenderer(cfg *config.Config) *HTMLRenderer {
	return &HTMLRenderer{
		DistanceUnits: cfg.GetDistanceUnits(),
		TimeUnits:     cfg.GetTimeUnits(),
		Width:         "1200px",
		Height:        "900px",
	}
}

// Render writes a standalone HTML page to w.
func (r *HTMLRenderer) Render(w io.Writer, title string, series []Series) error {
	if err := validate(series); err != nil {
		return err
	}

	scaled := make([]Series, len(series))
	for i, s := range series {
		scaled[i] = s.Scaled(r.DistanceUnits, r.TimeUnits)
	}
	extent := spatialExtent(scaled)
	if extent == 0 {
		extent = 1
	}

	initOpts := opts.Initialization{PageTitle: title, Theme: "dark", Width: r.Width, Height: r.Height}
	if r.AssetsHost != "" {
		initOpts.AssetsHost = r.AssetsHost
	}

	line := charts.NewLine3D()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: units.DistanceLabel("x", r.DistanceUnits), Min: -extent, Max: extent}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: units.DistanceLabel("y", r.DistanceUnits), Min: -extent, Max: extent}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: units.TimeLabel(r.TimeUnits)}),
	)

	colors := palette(len(scaled))
	for i, s := range scaled {
		data := make([]opts.Chart3DData, s.Len())
		for j := range data {
			data[j] = opts.Chart3DData{Value: []interface{}{s.X[j], s.Y[j], s.T[j]}}
		}
		line.AddSeries(s.Label, data, charts.WithLineStyleOpts(opts.LineStyle{Color: hexColor(colors[i])}))
	}

	return line.Render(w)
}
