// Package render draws trajectories for people to look at: PNG panels with
// gonum/plot and an interactive 3D chart with go-echarts. Both take the same
// per-body series of x, y and elapsed time.
package render

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/orbits/internal/relative"
	"github.com/banshee-data/orbits/internal/trajectory"
	"github.com/banshee-data/orbits/internal/units"
)

// ErrNoSeries is returned when there is nothing to draw.
var ErrNoSeries = errors.New("no series to render")

// Series is one labeled line: equal-length x, y and time sequences.
type Series struct {
	Label string
	X     []float64
	Y     []float64
	T     []float64
}

// Renderer draws a set of series to w.
type Renderer interface {
	Render(w io.Writer, title string, series []Series) error
}

// FromTrajectory takes the x, y and t columns of t, labeled with its body.
func FromTrajectory(t trajectory.Trajectory) Series {
	return Series{Label: t.Body, X: t.Xs(), Y: t.Ys(), T: t.Times()}
}

// FromPair returns the reference series followed by the other.
func FromPair(p relative.RelativePair) []Series {
	return []Series{FromTrajectory(p.Reference), FromTrajectory(p.Other)}
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.T) }

// Scaled returns a copy with distances and times converted from meters and
// seconds into the given display units.
func (s Series) Scaled(distanceUnits, timeUnits string) Series {
	out := Series{
		Label: s.Label,
		X:     make([]float64, len(s.X)),
		Y:     make([]float64, len(s.Y)),
		T:     make([]float64, len(s.T)),
	}
	for i, v := range s.X {
		out.X[i] = units.ConvertDistance(v, distanceUnits)
	}
	for i, v := range s.Y {
		out.Y[i] = units.ConvertDistance(v, distanceUnits)
	}
	for i, v := range s.T {
		out.T[i] = units.ConvertTime(v, timeUnits)
	}
	return out
}

func (s Series) validate() error {
	if len(s.X) != len(s.T) || len(s.Y) != len(s.T) {
		return fmt.Errorf("series %q has unequal lengths: x=%d y=%d t=%d", s.Label, len(s.X), len(s.Y), len(s.T))
	}
	return nil
}

func validate(series []Series) error {
	if len(series) == 0 {
		return ErrNoSeries
	}
	for _, s := range series {
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}

// spatialExtent returns the largest absolute x or y value over all series,
// used to give both horizontal axes the same symmetric range.
func spatialExtent(series []Series) float64 {
	var extent float64
	for _, s := range series {
		for _, vals := range [][]float64{s.X, s.Y} {
			if len(vals) == 0 {
				continue
			}
			extent = max(extent, floats.Max(vals), -floats.Min(vals))
		}
	}
	return extent
}

// RenderFile renders series to path, creating or truncating it.
func RenderFile(r Renderer, path, title string, series []Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.Render(f, title, series); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
