package relative

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/orbits/internal/trajectory"
)

func earthMoon() (trajectory.Trajectory, trajectory.Trajectory) {
	earth := trajectory.New("earth", []trajectory.Sample{
		{T: 0, X: 1.49e11, Y: 0, Z: 0},
		{T: 900, X: 1.4899e11, Y: 4.05e7, Z: 12},
		{T: 1800, X: 1.4897e11, Y: 8.1e7, Z: -3.5},
	})
	moon := trajectory.New("moon", []trajectory.Sample{
		{T: 0, X: 1.4938e11, Y: 0, Z: 0},
		{T: 900, X: 1.4937e11, Y: 4.14e7, Z: 40},
		{T: 1800, X: 1.4935e11, Y: 8.29e7, Z: 7.25},
	})
	return earth, moon
}

func TestComputeRelative_Scenario(t *testing.T) {
	a := trajectory.New("a", []trajectory.Sample{{T: 0, X: 0, Y: 0, Z: 0}, {T: 1, X: 1, Y: 1, Z: 1}})
	b := trajectory.New("b", []trajectory.Sample{{T: 0, X: 5, Y: 5, Z: 5}, {T: 1, X: 6, Y: 6, Z: 6}})

	got, err := ComputeRelative(a, b)
	require.NoError(t, err)

	want := RelativePair{
		Reference: trajectory.New("a", []trajectory.Sample{{T: 0}, {T: 1}}),
		Other:     trajectory.New("b", []trajectory.Sample{{T: 0, X: 5, Y: 5, Z: 5}, {T: 1, X: 5, Y: 5, Z: 5}}),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeRelative() mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeRelative_Properties(t *testing.T) {
	t.Parallel()
	earth, moon := earthMoon()

	pair, err := ComputeRelative(earth, moon)
	require.NoError(t, err)
	require.Equal(t, earth.Len(), pair.Reference.Len())
	require.Equal(t, earth.Len(), pair.Other.Len())

	for i := range earth.Samples {
		ref := pair.Reference.Samples[i]
		assert.Equal(t, earth.Samples[i].T, ref.T, "reference t at %d", i)
		assert.Zero(t, ref.X)
		assert.Zero(t, ref.Y)
		assert.Zero(t, ref.Z)

		oth := pair.Other.Samples[i]
		assert.Equal(t, moon.Samples[i].T, oth.T, "other t at %d", i)
		assert.Equal(t, moon.Samples[i].X-earth.Samples[i].X, oth.X)
		assert.Equal(t, moon.Samples[i].Y-earth.Samples[i].Y, oth.Y)
		assert.Equal(t, moon.Samples[i].Z-earth.Samples[i].Z, oth.Z)
	}
	assert.Equal(t, "earth", pair.Reference.Body)
	assert.Equal(t, "moon", pair.Other.Body)
}

func TestComputeRelative_SelfIsZero(t *testing.T) {
	t.Parallel()
	earth, _ := earthMoon()

	pair, err := ComputeRelative(earth, earth)
	require.NoError(t, err)
	for i, s := range pair.Other.Samples {
		assert.Zero(t, s.X, "x at %d", i)
		assert.Zero(t, s.Y, "y at %d", i)
		assert.Zero(t, s.Z, "z at %d", i)
	}
}

func TestComputeRelative_Antisymmetric(t *testing.T) {
	t.Parallel()
	earth, moon := earthMoon()

	ab, err := ComputeRelative(earth, moon)
	require.NoError(t, err)
	ba, err := ComputeRelative(moon, earth)
	require.NoError(t, err)

	for i := range ab.Other.Samples {
		assert.Equal(t, -ba.Other.Samples[i].X, ab.Other.Samples[i].X)
		assert.Equal(t, -ba.Other.Samples[i].Y, ab.Other.Samples[i].Y)
		assert.Equal(t, -ba.Other.Samples[i].Z, ab.Other.Samples[i].Z)
	}
}

func TestComputeRelative_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()
	earth, moon := earthMoon()
	earthBefore, moonBefore := earth.Clone(), moon.Clone()

	pair, err := ComputeRelative(earth, moon)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(earthBefore, earth))
	assert.Empty(t, cmp.Diff(moonBefore, moon))

	// outputs must not alias the inputs
	pair.Other.Samples[0].X = 42
	pair.Reference.Samples[0].T = 42
	assert.Empty(t, cmp.Diff(earthBefore, earth))
	assert.Empty(t, cmp.Diff(moonBefore, moon))
}

func TestComputeRelative_Misaligned(t *testing.T) {
	t.Parallel()
	earth, moon := earthMoon()

	shifted := moon.Clone()
	shifted.Samples[1].T = 901

	tests := []struct {
		name  string
		ref   trajectory.Trajectory
		other trajectory.Trajectory
	}{
		{"shorter other", earth, trajectory.New("moon", moon.Samples[:2])},
		{"longer other", trajectory.New("earth", earth.Samples[:1]), moon},
		{"empty against non-empty", trajectory.Trajectory{Body: "none"}, moon},
		{"time mismatch", earth, shifted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pair, err := ComputeRelative(tt.ref, tt.other)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMisalignedTrajectories))
			assert.Equal(t, RelativePair{}, pair, "no partial output")
		})
	}
}

func TestComputeRelative_Empty(t *testing.T) {
	t.Parallel()

	pair, err := ComputeRelative(trajectory.New("a", nil), trajectory.New("b", nil))
	require.NoError(t, err)
	assert.Equal(t, 0, pair.Reference.Len())
	assert.Equal(t, 0, pair.Other.Len())
	assert.Equal(t, "a", pair.Reference.Body)
	assert.Equal(t, "b", pair.Other.Body)
}

func TestCheckAligned(t *testing.T) {
	t.Parallel()
	earth, moon := earthMoon()

	assert.NoError(t, CheckAligned(earth, moon))
	err := CheckAligned(earth, trajectory.New("moon", moon.Samples[:1]))
	assert.ErrorIs(t, err, ErrMisalignedTrajectories)
	assert.Contains(t, err.Error(), "earth has 3 samples")
}

func TestIdentity(t *testing.T) {
	t.Parallel()
	earth, _ := earthMoon()

	got := Identity(earth)
	assert.Empty(t, cmp.Diff(earth, got))
}
