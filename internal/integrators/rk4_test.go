package integrators

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// spring pulls towards the origin with unit stiffness.
func spring(p r2.Vec) r2.Vec { return r2.Scale(-1, p) }

func TestConstantAccelerationIsExact(t *testing.T) {
	tests := []struct {
		name  string
		integ Integrator
	}{
		{"verlet", NewVerlet()},
		{"leapfrog", NewLeapfrog()},
		{"rk4", NewRK4()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel := tt.integ.Step(r2.Vec{}, r2.Vec{X: 1}, constant(r2.Vec{Y: 2}), 0.5)
			if math.Abs(pos.X-0.5) > 1e-12 || math.Abs(pos.Y-0.25) > 1e-12 {
				t.Errorf("position = %v, want (0.5, 0.25)", pos)
			}
			if math.Abs(vel.X-1) > 1e-12 || math.Abs(vel.Y-1) > 1e-12 {
				t.Errorf("velocity = %v, want (1, 1)", vel)
			}
		})
	}
}

func TestOscillatorAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		integ Integrator
		tol   float64
	}{
		{"rk4", NewRK4(), 1e-8},
		{"verlet", NewVerlet(), 1e-4},
		{"leapfrog", NewLeapfrog(), 1e-4},
	}

	dt := 0.01
	steps := 100
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel := r2.Vec{X: 1}, r2.Vec{}
			for i := 0; i < steps; i++ {
				pos, vel = tt.integ.Step(pos, vel, spring, dt)
			}

			expectedX := math.Cos(float64(steps) * dt)
			expectedV := -math.Sin(float64(steps) * dt)
			if math.Abs(pos.X-expectedX) > tt.tol {
				t.Errorf("position error too large: got %.8f, expected %.8f", pos.X, expectedX)
			}
			if math.Abs(vel.X-expectedV) > tt.tol {
				t.Errorf("velocity error too large: got %.8f, expected %.8f", vel.X, expectedV)
			}
		})
	}
}

func TestLeapfrogMatchesVerlet(t *testing.T) {
	pv, vv := r2.Vec{X: 10}, r2.Vec{Y: 0.3}
	pl, vl := pv, vv
	for i := 0; i < 50; i++ {
		pv, vv = NewVerlet().Step(pv, vv, pointMass, 0.5)
		pl, vl = NewLeapfrog().Step(pl, vl, pointMass, 0.5)
	}
	if r2.Norm(r2.Sub(pv, pl)) > 1e-9 || r2.Norm(r2.Sub(vv, vl)) > 1e-9 {
		t.Errorf("verlet %v/%v and leapfrog %v/%v diverged", pv, vv, pl, vl)
	}
}
