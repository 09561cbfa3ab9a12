package integrators

import "gonum.org/v1/gonum/spatial/r2"

// Verlet is velocity Verlet: the position moves with the start
// acceleration and the velocity uses the average of both ends.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(pos, vel r2.Vec, accel Field, dt float64) (r2.Vec, r2.Vec) {
	a0 := accel(pos)
	next := r2.Add(pos, r2.Add(r2.Scale(dt, vel), r2.Scale(0.5*dt*dt, a0)))
	a1 := accel(next)
	return next, r2.Add(vel, r2.Scale(0.5*dt, r2.Add(a0, a1)))
}

// Leapfrog is kick-drift-kick.
type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(pos, vel r2.Vec, accel Field, dt float64) (r2.Vec, r2.Vec) {
	halfDt := 0.5 * dt
	half := r2.Add(vel, r2.Scale(halfDt, accel(pos)))
	pos = r2.Add(pos, r2.Scale(dt, half))
	return pos, r2.Add(half, r2.Scale(halfDt, accel(pos)))
}
