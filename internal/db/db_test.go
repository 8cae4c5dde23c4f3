package db

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/orbits/internal/monitoring"
	"github.com/banshee-data/orbits/internal/trajectory"
)

func init() {
	monitoring.SetLogger(nil)
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(filepath.Join(t.TempDir(), "orbits_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return d
}

func TestNewDB_AppliesMigrations(t *testing.T) {
	d := newTestDB(t)

	version, dirty, err := d.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// already at latest: no-op
	require.NoError(t, d.MigrateUp(MigrationsFS()))
}

func TestMigrateDownAndUp(t *testing.T) {
	d := newTestDB(t)

	require.NoError(t, d.MigrateDown(MigrationsFS()))
	version, _, err := d.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var indexes int
	require.NoError(t, d.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_samples_body_t'`,
	).Scan(&indexes))
	assert.Zero(t, indexes)

	require.NoError(t, d.MigrateUp(MigrationsFS()))
	version, _, err = d.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestOpenDB_Fresh(t *testing.T) {
	d, err := OpenDB(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	defer d.Close()

	version, dirty, err := d.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, d.MigrateForce(MigrationsFS(), 1))
	version, _, err = d.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestSaveAndLoadTrajectory(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	runID, err := d.RecordRun(ctx, 15*time.Minute, 2, "sun/earth")
	require.NoError(t, err)
	_, err = uuid.Parse(runID)
	require.NoError(t, err)

	earth := trajectory.New("earth", []trajectory.Sample{
		{T: 0, X: 1.49e11, Y: 4.05e7, Z: 0},
		{T: 900, X: 1.4899998e11, Y: 8.1e7, Z: -1.5},
	})
	require.NoError(t, d.SaveTrajectory(ctx, runID, earth))

	got, err := d.Load(ctx, "earth")
	require.NoError(t, err)
	if diff := cmp.Diff(earth, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	runs, err := d.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, 900.0, runs[0].TimestepSeconds)
	assert.Equal(t, 2, runs[0].Steps)
	assert.Equal(t, "sun/earth", runs[0].Note)
	assert.NotEmpty(t, runs[0].CreatedAt)
}

func TestSaveTrajectory_Replaces(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.SaveTrajectory(ctx, "", trajectory.New("moon", []trajectory.Sample{{T: 0}, {T: 1}, {T: 2}})))
	require.NoError(t, d.SaveTrajectory(ctx, "", trajectory.New("moon", []trajectory.Sample{{T: 5, X: 1}})))

	got, err := d.Load(ctx, "moon")
	require.NoError(t, err)
	assert.Equal(t, []trajectory.Sample{{T: 5, X: 1}}, got.Samples)
}

func TestSaveTrajectory_Errors(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	assert.Error(t, d.SaveTrajectory(ctx, "", trajectory.Trajectory{}))
	assert.Error(t, d.SaveTrajectory(ctx, "no-such-run", trajectory.New("earth", nil)), "run id must exist")
}

func TestLoad_NotFound(t *testing.T) {
	d := newTestDB(t)

	_, err := d.Load(context.Background(), "pluto")
	assert.ErrorIs(t, err, trajectory.ErrNotFound)
}

func TestLoad_Empty(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.SaveTrajectory(ctx, "", trajectory.New("void", nil)))
	got, err := d.Load(ctx, "void")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestLoad_CountMismatchIsMalformed(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.SaveTrajectory(ctx, "", trajectory.New("earth", []trajectory.Sample{{T: 0}, {T: 1}})))
	_, err := d.Exec(`DELETE FROM samples WHERE body = 'earth' AND idx = 1`)
	require.NoError(t, err)

	_, err = d.Load(ctx, "earth")
	assert.ErrorIs(t, err, trajectory.ErrMalformed)
}

func TestLoad_ConsistentDuringSave(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	short := trajectory.New("earth", []trajectory.Sample{{T: 0}, {T: 1}})
	long := trajectory.New("earth", []trajectory.Sample{{T: 0}, {T: 1}, {T: 2}, {T: 3}, {T: 4}})
	require.NoError(t, d.SaveTrajectory(ctx, "", short))

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 50; i++ {
			next := short
			if i%2 == 0 {
				next = long
			}
			if err := d.SaveTrajectory(ctx, "", next); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for i := 0; i < 50; i++ {
		got, err := d.Load(ctx, "earth")
		require.NoError(t, err)
		assert.Contains(t, []int{2, 5}, got.Len())
	}
	require.NoError(t, <-done)
}

func TestListAndDelete(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	bodies, err := d.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bodies)

	for _, name := range []string{"sun", "earth", "moon"} {
		require.NoError(t, d.SaveTrajectory(ctx, "", trajectory.New(name, []trajectory.Sample{{T: 0}})))
	}

	bodies, err = d.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"earth", "moon", "sun"}, bodies)

	require.NoError(t, d.DeleteTrajectory(ctx, "moon"))
	_, err = d.Load(ctx, "moon")
	assert.ErrorIs(t, err, trajectory.ErrNotFound)

	var orphans int
	require.NoError(t, d.QueryRow(`SELECT COUNT(*) FROM samples WHERE body = 'moon'`).Scan(&orphans))
	assert.Zero(t, orphans, "samples cascade with their trajectory")

	assert.ErrorIs(t, d.DeleteTrajectory(ctx, "moon"), trajectory.ErrNotFound)
}

func TestBackup(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, d.SaveTrajectory(ctx, "", trajectory.New("earth", []trajectory.Sample{{T: 0, X: 1}})))

	var buf bytes.Buffer
	require.NoError(t, d.Backup(ctx, &buf))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)
	require.Greater(t, len(raw), 16)
	assert.Equal(t, "SQLite format 3\x00", string(raw[:16]))
}

func TestPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.db")
	d, err := NewDB(path)
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, path, d.Path())
}
