package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	prev := [3]string{Version, GitSHA, BuildTime}
	t.Cleanup(func() { Version, GitSHA, BuildTime = prev[0], prev[1], prev[2] })

	assert.Equal(t, "orbits dev (commit unknown, built unknown)", String())

	Version, GitSHA, BuildTime = "0.2.0", "abc1234", "2026-10-18T09:00:00Z"
	assert.Equal(t, "orbits 0.2.0 (commit abc1234, built 2026-10-18T09:00:00Z)", String())
}
