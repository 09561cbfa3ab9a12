package systree

import (
	"github.com/san-kum/systree/internal/orbit"
	"gonum.org/v1/gonum/spatial/r2"
)

// BodyID is the stable index of a body in its tree's arena.
type BodyID int

// Burn is a scheduled velocity change. Burns are carried with their body
// through migrations and clones but are not applied by the integrator.
type Burn struct {
	At     int64
	DeltaV r2.Vec
}

// Body is a simulated body. Position and Velocity are relative to the node
// that owns it. The previous values are kept for display interpolation.
type Body struct {
	Position     r2.Vec
	Velocity     r2.Vec
	PrevPosition r2.Vec
	PrevVelocity r2.Vec
	Mass         float64 // reported only, never attracts
	Owner        string
	Burns        []Burn
}

func NewBody(owner string, pos, vel r2.Vec, mass float64) Body {
	return Body{
		Position:     pos,
		Velocity:     vel,
		PrevPosition: pos,
		PrevVelocity: vel,
		Mass:         mass,
		Owner:        owner,
	}
}

// Interpolate blends the previous and current positions; alpha 0 is the
// previous step and 1 the current one.
func (b Body) Interpolate(alpha float64) r2.Vec {
	return r2.Add(b.PrevPosition, r2.Scale(alpha, r2.Sub(b.Position, b.PrevPosition)))
}

func (b *Body) moveTo(pos, vel r2.Vec) {
	b.PrevPosition, b.PrevVelocity = b.Position, b.Velocity
	b.Position, b.Velocity = pos, vel
}

// shift re-expresses the body in another frame.
func (b *Body) shift(dp, dv r2.Vec) {
	b.Position = r2.Add(b.Position, dp)
	b.PrevPosition = r2.Add(b.PrevPosition, dp)
	b.Velocity = r2.Add(b.Velocity, dv)
	b.PrevVelocity = r2.Add(b.PrevVelocity, dv)
}

// drift moves the body in a straight line for dt.
func (b *Body) drift(dt int64) {
	if dt <= 0 {
		return
	}
	b.moveTo(r2.Add(b.Position, r2.Scale(float64(dt), b.Velocity)), b.Velocity)
}

func (b Body) clone() Body {
	if b.Burns != nil {
		burns := make([]Burn, len(b.Burns))
		copy(burns, b.Burns)
		b.Burns = burns
	}
	return b
}

// Source is a body on a fixed orbit. It attracts simulated bodies and is
// never integrated. Radius is presentation metadata.
type Source struct {
	Name   string
	Orbit  orbit.Orbit
	Mass   float64
	Radius float64
}

// Snapshot is a body expressed in absolute coordinates.
type Snapshot struct {
	Position r2.Vec
	Velocity r2.Vec
	Mass     float64
	Owner    string
}

// Report is a snapshot taken at an absolute simulation time.
type Report struct {
	Time int64
	Body Snapshot
}

// arena stores bodies by stable index. Released slots are reused.
type arena struct {
	bodies []Body
	free   []BodyID
}

func (a *arena) add(b Body) BodyID {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.bodies[id] = b
		return id
	}
	a.bodies = append(a.bodies, b)
	return BodyID(len(a.bodies) - 1)
}

func (a *arena) get(id BodyID) *Body {
	return &a.bodies[id]
}

func (a *arena) release(id BodyID) {
	a.bodies[id] = Body{}
	a.free = append(a.free, id)
}

func (a *arena) size() int {
	return len(a.bodies) - len(a.free)
}
