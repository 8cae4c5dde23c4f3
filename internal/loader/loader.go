// Package loader resolves trajectory identifiers to Trajectory values.
//
// A Loader hides where samples live: a directory of CSV files (CSVLoader) or
// the SQLite store in internal/db. Failures are reported as
// trajectory.ErrNotFound or trajectory.ErrMalformed.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/orbits/internal/trajectory"
)

// Loader loads one trajectory by id.
type Loader interface {
	Load(ctx context.Context, id string) (trajectory.Trajectory, error)
}

// Lister is implemented by loaders that can enumerate their trajectories.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

const csvExt = ".csv"

// CSVLoader reads "<id>.csv" files from a flat directory.
type CSVLoader struct {
	FS fs.FS
}

// NewCSVLoader returns a CSVLoader rooted at dir.
func NewCSVLoader(dir string) *CSVLoader {
	return &CSVLoader{FS: os.DirFS(dir)}
}

// Load opens and decodes "<id>.csv". The body name is the id.
func (l *CSVLoader) Load(ctx context.Context, id string) (trajectory.Trajectory, error) {
	if err := ctx.Err(); err != nil {
		return trajectory.Trajectory{}, err
	}

	name := id + csvExt
	if id == "" || strings.ContainsAny(id, `/\`) || !fs.ValidPath(name) {
		return trajectory.Trajectory{}, fmt.Errorf("%w: invalid id %q", trajectory.ErrNotFound, id)
	}

	f, err := l.FS.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return trajectory.Trajectory{}, fmt.Errorf("%w: %s", trajectory.ErrNotFound, name)
	}
	if err != nil {
		return trajectory.Trajectory{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	return DecodeCSV(f, id)
}

// List returns the ids of every CSV file in the directory, sorted.
func (l *CSVLoader) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := fs.Glob(l.FS, "*"+csvExt)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(path.Base(m), csvExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadAll loads each id in order and stops at the first failure.
func LoadAll(ctx context.Context, l Loader, ids ...string) ([]trajectory.Trajectory, error) {
	out := make([]trajectory.Trajectory, 0, len(ids))
	for _, id := range ids {
		t, err := l.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", id, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// WriteDir writes each trajectory to "<dir>/<body>.csv" and returns the
// paths written.
func WriteDir(dir string, trajs []trajectory.Trajectory) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	paths := make([]string, 0, len(trajs))
	for _, t := range trajs {
		if t.Body == "" || strings.ContainsAny(t.Body, `/\`) {
			return paths, fmt.Errorf("invalid body name %q", t.Body)
		}
		p := filepath.Join(dir, t.Body+csvExt)
		if err := writeFile(p, t); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeFile(p string, t trajectory.Trajectory) error {
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create %s: %w", p, err)
	}
	if err := EncodeCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", p, err)
	}
	return f.Close()
}
