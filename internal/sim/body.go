package sim

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a point mass advanced with position Verlet. LastPosition holds the
// position one timestep earlier; Accel accumulates within a step.
type Body struct {
	Name         string
	Mass         float64
	Position     r3.Vec
	LastPosition r3.Vec
	Accel        r3.Vec
}

// NewBody places a body at pos with initial velocity vel by seeding the
// previous position one timestep back along vel.
func NewBody(name string, mass float64, pos, vel r3.Vec, dt float64) *Body {
	return &Body{
		Name:         name,
		Mass:         mass,
		Position:     pos,
		LastPosition: r3.Sub(pos, r3.Scale(dt, vel)),
	}
}

// Velocity estimates the current velocity from the last two positions.
func (b *Body) Velocity(dt float64) r3.Vec {
	return r3.Scale(1/dt, r3.Sub(b.Position, b.LastPosition))
}

// pull adds the acceleration exerted on b by other. It returns false when
// the two bodies coincide.
func (b *Body) pull(other *Body, g float64) bool {
	d := r3.Sub(other.Position, b.Position)
	distSq := r3.Norm2(d)
	if distSq == 0 {
		return false
	}
	accel := g * other.Mass / distSq
	b.Accel = r3.Add(b.Accel, r3.Scale(accel, r3.Unit(d)))
	return true
}

// advance moves b one step: x(t+dt) = 2x(t) - x(t-dt) + a(t)*dt^2.
func (b *Body) advance(dt float64) {
	next := r3.Add(r3.Sub(r3.Scale(2, b.Position), b.LastPosition), r3.Scale(dt*dt, b.Accel))
	b.LastPosition = b.Position
	b.Position = next
	b.Accel = r3.Vec{}
}
