package integrators

import "gonum.org/v1/gonum/spatial/r2"

// Field gives the acceleration at a position. It is fixed for the
// duration of one step.
type Field func(p r2.Vec) r2.Vec

// Integrator advances one body by dt through a field.
type Integrator interface {
	Name() string
	Step(pos, vel r2.Vec, accel Field, dt float64) (r2.Vec, r2.Vec)
}

// SemiImplicitEuler updates velocity first and moves with the new velocity.
// It is symplectic, so circular orbits stay closed over long runs.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Name() string { return "semi-implicit" }

func (e *SemiImplicitEuler) Step(pos, vel r2.Vec, accel Field, dt float64) (r2.Vec, r2.Vec) {
	vel = r2.Add(vel, r2.Scale(dt, accel(pos)))
	pos = r2.Add(pos, r2.Scale(dt, vel))
	return pos, vel
}

// Euler is the explicit scheme: position moves with the old velocity.
// Orbits spiral outwards; kept for comparison runs.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(pos, vel r2.Vec, accel Field, dt float64) (r2.Vec, r2.Vec) {
	acc := accel(pos)
	pos = r2.Add(pos, r2.Scale(dt, vel))
	vel = r2.Add(vel, r2.Scale(dt, acc))
	return pos, vel
}

// Default returns the integrator the tree uses unless told otherwise.
func Default() Integrator { return NewSemiImplicitEuler() }

// ByName looks up an integrator by its Name.
func ByName(name string) (Integrator, bool) {
	switch name {
	case "semi-implicit", "symplectic", "":
		return NewSemiImplicitEuler(), true
	case "euler", "explicit":
		return NewEuler(), true
	case "verlet":
		return NewVerlet(), true
	case "leapfrog":
		return NewLeapfrog(), true
	case "rk4":
		return NewRK4(), true
	default:
		return nil, false
	}
}

// Names lists the registered integrators.
func Names() []string {
	return []string{"semi-implicit", "euler", "verlet", "leapfrog", "rk4"}
}
