// Package relative re-expresses one body's trajectory around another so that
// relative orbital motion can be plotted instead of two absolute paths.
package relative

import (
	"errors"
	"fmt"

	"github.com/banshee-data/orbits/internal/trajectory"
)

// ErrMisalignedTrajectories is returned when the two inputs do not share the
// same sampling grid.
var ErrMisalignedTrajectories = errors.New("misaligned trajectories")

// RelativePair is the result of ComputeRelative. Reference has every position
// collapsed to the origin; Other holds its displacement from the reference.
type RelativePair struct {
	Reference trajectory.Trajectory `json:"reference"`
	Other     trajectory.Trajectory `json:"other"`
}

// CheckAligned reports whether a and b have the same length and identical
// sample times at every index.
func CheckAligned(a, b trajectory.Trajectory) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("%w: %s has %d samples, %s has %d",
			ErrMisalignedTrajectories, a.Body, a.Len(), b.Body, b.Len())
	}
	for i := range a.Samples {
		if a.Samples[i].T != b.Samples[i].T {
			return fmt.Errorf("%w: sample %d at t=%g in %s but t=%g in %s",
				ErrMisalignedTrajectories, i, a.Samples[i].T, a.Body, b.Samples[i].T, b.Body)
		}
	}
	return nil
}

// ComputeRelative returns reference pinned to the origin and other expressed
// as its displacement from reference at each index. Neither input is
// modified. Zero-length inputs yield two zero-length trajectories.
func ComputeRelative(reference, other trajectory.Trajectory) (RelativePair, error) {
	if err := CheckAligned(reference, other); err != nil {
		return RelativePair{}, err
	}

	n := reference.Len()
	ref := make([]trajectory.Sample, n)
	oth := make([]trajectory.Sample, n)
	for i := 0; i < n; i++ {
		r, o := reference.Samples[i], other.Samples[i]
		ref[i] = trajectory.Sample{T: r.T}
		oth[i] = trajectory.Sample{
			T: o.T,
			X: o.X - r.X,
			Y: o.Y - r.Y,
			Z: o.Z - r.Z,
		}
	}

	return RelativePair{
		Reference: trajectory.Trajectory{Body: reference.Body, Samples: ref},
		Other:     trajectory.Trajectory{Body: other.Body, Samples: oth},
	}, nil
}

// Identity is the single-body path: the trajectory is plotted as loaded.
func Identity(t trajectory.Trajectory) trajectory.Trajectory {
	return t
}
