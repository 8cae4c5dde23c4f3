package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/orbits/internal/trajectory"
)

// Columns are the header names mapped onto Sample fields, in write order.
var Columns = []string{"t", "x", "y", "z"}

// DecodeCSV reads a header-led table of t,x,y,z columns. Columns are matched
// by name in any order; unknown and blank header cells are ignored, so the
// trailing comma emitted by older writers ("t,x,y,z, ") is accepted.
func DecodeCSV(r io.Reader, body string) (trajectory.Trajectory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return trajectory.Trajectory{}, fmt.Errorf("%w: %s: missing header", trajectory.ErrMalformed, body)
	}
	if err != nil {
		return trajectory.Trajectory{}, fmt.Errorf("%w: %s: %v", trajectory.ErrMalformed, body, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	cols := make([]int, len(Columns))
	for i, name := range Columns {
		idx, ok := index[name]
		if !ok {
			return trajectory.Trajectory{}, fmt.Errorf("%w: %s: missing column %q", trajectory.ErrMalformed, body, name)
		}
		cols[i] = idx
	}

	var samples []trajectory.Sample
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return trajectory.Trajectory{}, fmt.Errorf("%w: %s: %v", trajectory.ErrMalformed, body, err)
		}

		line, _ := reader.FieldPos(0)
		var values [4]float64
		for i, idx := range cols {
			if idx >= len(record) {
				return trajectory.Trajectory{}, fmt.Errorf("%w: %s line %d: missing %s value",
					trajectory.ErrMalformed, body, line, Columns[i])
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return trajectory.Trajectory{}, fmt.Errorf("%w: %s line %d: column %s: %v",
					trajectory.ErrMalformed, body, line, Columns[i], err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return trajectory.Trajectory{}, fmt.Errorf("%w: %s line %d: column %s: non-finite value %q",
					trajectory.ErrMalformed, body, line, Columns[i], record[idx])
			}
			values[i] = v
		}
		samples = append(samples, trajectory.Sample{T: values[0], X: values[1], Y: values[2], Z: values[3]})
	}

	return trajectory.Trajectory{Body: body, Samples: samples}, nil
}

// EncodeCSV writes t in a header row followed by one row per sample. Values
// are formatted with the shortest representation that parses back exactly.
func EncodeCSV(w io.Writer, t trajectory.Trajectory) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}

	row := make([]string, len(Columns))
	for _, s := range t.Samples {
		row[0] = formatFloat(s.T)
		row[1] = formatFloat(s.X)
		row[2] = formatFloat(s.Y)
		row[3] = formatFloat(s.Z)
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
