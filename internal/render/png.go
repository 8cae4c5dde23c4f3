package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/orbits/internal/config"
	"github.com/banshee-data/orbits/internal/units"
)

// PNGRenderer draws three stacked panels: x against time, y against time and
// the x-y plane.
type PNGRenderer struct {
	Width         vg.Length
	Height        vg.Length
	DistanceUnits string
	TimeUnits     string
}

// NewPNGRenderer sizes and labels panels from cfg.
func NewPNGRenderer(cfg *config.Config) *PNGRenderer {
	return &PNGRenderer{
		Width:         vg.Length(cfg.GetWidthInches()) * vg.Inch,
		Height:        vg.Length(cfg.GetHeightInches()) * vg.Inch,
		DistanceUnits: cfg.GetDistanceUnits(),
		TimeUnits:     cfg.GetTimeUnits(),
	}
}

type panel struct {
	title  string
	xLabel string
	yLabel string
	xy     func(s Series, i int) (float64, float64)
}

func (r *PNGRenderer) panels() []panel {
	xLabel := units.DistanceLabel("x", r.DistanceUnits)
	yLabel := units.DistanceLabel("y", r.DistanceUnits)
	tLabel := units.TimeLabel(r.TimeUnits)
	return []panel{
		{"x over time", tLabel, xLabel, func(s Series, i int) (float64, float64) { return s.T[i], s.X[i] }},
		{"y over time", tLabel, yLabel, func(s Series, i int) (float64, float64) { return s.T[i], s.Y[i] }},
		{"x-y plane", xLabel, yLabel, func(s Series, i int) (float64, float64) { return s.X[i], s.Y[i] }},
	}
}

// Render writes a PNG image to w.
func (r *PNGRenderer) Render(w io.Writer, title string, series []Series) error {
	if err := validate(series); err != nil {
		return err
	}

	colors := palette(len(series))
	panels := r.panels()
	plots := make([][]*plot.Plot, len(panels))

	for pi, pn := range panels {
		p := plot.New()
		p.Title.Text = pn.title
		if pi == 0 && title != "" {
			p.Title.Text = title + " - " + pn.title
		}
		p.X.Label.Text = pn.xLabel
		p.Y.Label.Text = pn.yLabel
		p.Add(plotter.NewGrid())

		for si, s := range series {
			if s.Len() == 0 {
				continue
			}
			scaled := s.Scaled(r.DistanceUnits, r.TimeUnits)
			pts := make(plotter.XYs, scaled.Len())
			for i := range pts {
				pts[i].X, pts[i].Y = pn.xy(scaled, i)
			}

			line, err := plotter.NewLine(pts)
			if err != nil {
				return fmt.Errorf("%s %s: %w", pn.title, s.Label, err)
			}
			line.Color = colors[si]
			line.Width = vg.Points(1)
			p.Add(line)
			p.Legend.Add(s.Label, line)
		}

		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -10
		plots[pi] = []*plot.Plot{p}
	}

	img := vgimg.New(r.Width, r.Height*vg.Length(len(panels)))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(panels),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
