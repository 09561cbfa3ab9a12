package integrators

import "gonum.org/v1/gonum/spatial/r2"

// RK4 is the classic fourth-order Runge-Kutta scheme on (position,
// velocity). It is accurate per step but not symplectic.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(pos, vel r2.Vec, accel Field, dt float64) (r2.Vec, r2.Vec) {
	halfDt := 0.5 * dt

	k1x, k1v := vel, accel(pos)
	k2x := r2.Add(vel, r2.Scale(halfDt, k1v))
	k2v := accel(r2.Add(pos, r2.Scale(halfDt, k1x)))
	k3x := r2.Add(vel, r2.Scale(halfDt, k2v))
	k3v := accel(r2.Add(pos, r2.Scale(halfDt, k2x)))
	k4x := r2.Add(vel, r2.Scale(dt, k3v))
	k4v := accel(r2.Add(pos, r2.Scale(dt, k3x)))

	dt6 := dt / 6
	pos = r2.Add(pos, r2.Scale(dt6, weigh(k1x, k2x, k3x, k4x)))
	vel = r2.Add(vel, r2.Scale(dt6, weigh(k1v, k2v, k3v, k4v)))
	return pos, vel
}

func weigh(k1, k2, k3, k4 r2.Vec) r2.Vec {
	return r2.Add(r2.Add(k1, k4), r2.Scale(2, r2.Add(k2, k3)))
}
