// Package trajectory defines the time-indexed position series shared by the
// loaders, the relative-motion transform and the renderers.
package trajectory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by loaders when the backing resource is absent.
	ErrNotFound = errors.New("trajectory not found")
	// ErrMalformed is returned by loaders when a column is missing or a value
	// does not parse.
	ErrMalformed = errors.New("malformed trajectory")
)

// Sample is one position of a body at an elapsed simulated time.
// T is in seconds, X/Y/Z are meters in a common inertial frame.
type Sample struct {
	T float64 `json:"t"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Trajectory is an ordered series of samples for one body. Slice order is
// chronological order.
type Trajectory struct {
	Body    string   `json:"body"`
	Samples []Sample `json:"samples"`
}

// New builds a Trajectory that owns a copy of samples.
func New(body string, samples []Sample) Trajectory {
	out := make([]Sample, len(samples))
	copy(out, samples)
	return Trajectory{Body: body, Samples: out}
}

// Len returns the number of samples.
func (t Trajectory) Len() int { return len(t.Samples) }

// Clone returns a deep copy.
func (t Trajectory) Clone() Trajectory { return New(t.Body, t.Samples) }

// Times returns the T column.
func (t Trajectory) Times() []float64 {
	return t.column(func(s Sample) float64 { return s.T })
}

// Xs returns the X column.
func (t Trajectory) Xs() []float64 {
	return t.column(func(s Sample) float64 { return s.X })
}

// Ys returns the Y column.
func (t Trajectory) Ys() []float64 {
	return t.column(func(s Sample) float64 { return s.Y })
}

// Zs returns the Z column.
func (t Trajectory) Zs() []float64 {
	return t.column(func(s Sample) float64 { return s.Z })
}

func (t Trajectory) column(get func(Sample) float64) []float64 {
	out := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		out[i] = get(s)
	}
	return out
}

// Duration returns the elapsed time between the first and last sample.
func (t Trajectory) Duration() float64 {
	if len(t.Samples) < 2 {
		return 0
	}
	return t.Samples[len(t.Samples)-1].T - t.Samples[0].T
}

func (t Trajectory) String() string {
	return fmt.Sprintf("%s (%d samples, %gs)", t.Body, t.Len(), t.Duration())
}
