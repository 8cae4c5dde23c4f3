package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCopiesSamples(t *testing.T) {
	src := []Sample{{T: 0, X: 1, Y: 2, Z: 3}}
	tr := New("earth", src)

	src[0].X = 99
	assert.Equal(t, 1.0, tr.Samples[0].X)
	assert.Equal(t, "earth", tr.Body)
}

func TestColumns(t *testing.T) {
	t.Parallel()

	tr := New("moon", []Sample{
		{T: 0, X: 1, Y: 2, Z: 3},
		{T: 900, X: 4, Y: 5, Z: 6},
	})

	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, []float64{0, 900}, tr.Times())
	assert.Equal(t, []float64{1, 4}, tr.Xs())
	assert.Equal(t, []float64{2, 5}, tr.Ys())
	assert.Equal(t, []float64{3, 6}, tr.Zs())
	assert.Equal(t, 900.0, tr.Duration())
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	tr := New("sun", []Sample{{T: 0, X: 1}})
	c := tr.Clone()
	c.Samples[0].X = 7

	assert.Equal(t, 1.0, tr.Samples[0].X)
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	var tr Trajectory
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Times())
	assert.Zero(t, tr.Duration())
	assert.Equal(t, " (0 samples, 0s)", tr.String())
}
