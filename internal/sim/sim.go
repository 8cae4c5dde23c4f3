// Package sim generates body trajectories with a fixed-step n-body
// integrator. Its output is the position data the loaders and renderers
// consume.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/orbits/internal/config"
	"github.com/banshee-data/orbits/internal/monitoring"
	"github.com/banshee-data/orbits/internal/trajectory"
)

// ErrCollision is returned when two bodies occupy the same position.
var ErrCollision = errors.New("bodies coincide")

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 1024

var logf = monitoring.Prefixed("sim")

// Config describes one simulation run.
type Config struct {
	Timestep time.Duration
	Steps    int
	G        float64
	Bodies   []config.BodyConfig
}

// FromConfig builds a run Config from the application configuration.
func FromConfig(cfg *config.Config) Config {
	return Config{
		Timestep: cfg.GetTimestep(),
		Steps:    cfg.GetSteps(),
		G:        cfg.GetGravitationalConstant(),
		Bodies:   cfg.GetBodies(),
	}
}

func (c Config) validate() error {
	if len(c.Bodies) == 0 {
		return fmt.Errorf("no bodies to simulate")
	}
	if c.Timestep <= 0 {
		return fmt.Errorf("timestep must be positive, got %s", c.Timestep)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	return nil
}

// Simulator advances a fixed set of bodies under mutual gravitation.
type Simulator struct {
	Bodies []*Body
	dt     float64
	g      float64
}

// New creates a Simulator with bodies seeded from cfg.
func New(cfg Config) (*Simulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	dt := cfg.Timestep.Seconds()
	s := &Simulator{dt: dt, g: cfg.G}
	for _, b := range cfg.Bodies {
		pos := r3.Vec{X: b.Position[0], Y: b.Position[1], Z: b.Position[2]}
		vel := r3.Vec{X: b.Velocity[0], Y: b.Velocity[1], Z: b.Velocity[2]}
		s.Bodies = append(s.Bodies, NewBody(b.Name, b.Mass, pos, vel, dt))
	}
	return s, nil
}

// Step advances every body by one timestep. All accelerations are taken from
// the positions at the start of the step.
func (s *Simulator) Step() error {
	for i, b := range s.Bodies {
		for j, other := range s.Bodies {
			if i == j {
				continue
			}
			if !b.pull(other, s.g) {
				return fmt.Errorf("%w: %s and %s", ErrCollision, b.Name, other.Name)
			}
		}
	}
	for _, b := range s.Bodies {
		b.advance(s.dt)
	}
	return nil
}

// Run simulates cfg and returns one trajectory per body, in configuration
// order. Sample i is the position after step i, stamped t = i*timestep.
func Run(ctx context.Context, cfg Config) ([]trajectory.Trajectory, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}

	logf("simulating %d bodies for %d steps of %s", len(s.Bodies), cfg.Steps, cfg.Timestep)
	start := time.Now()

	hist := make([][]trajectory.Sample, len(s.Bodies))
	for i := range hist {
		hist[i] = make([]trajectory.Sample, 0, cfg.Steps)
	}

	for step := 0; step < cfg.Steps; step++ {
		if step%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := s.Step(); err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		t := s.dt * float64(step)
		for i, b := range s.Bodies {
			hist[i] = append(hist[i], trajectory.Sample{T: t, X: b.Position.X, Y: b.Position.Y, Z: b.Position.Z})
		}
	}

	out := make([]trajectory.Trajectory, len(s.Bodies))
	for i, b := range s.Bodies {
		out[i] = trajectory.Trajectory{Body: b.Name, Samples: hist[i]}
		logf("%s: final speed %.4g m/s", b.Name, r3.Norm(b.Velocity(s.dt)))
	}
	logf("simulation finished in %s", time.Since(start).Round(time.Millisecond))
	return out, nil
}
