package integrators

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	pos, vel := r2.Vec{X: 10}, r2.Vec{Y: 0.3}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos, vel = integrator.Step(pos, vel, pointMass, 0.01)
	}
}

func BenchmarkSemiImplicitEuler(b *testing.B) {
	integrator := NewSemiImplicitEuler()
	pos, vel := r2.Vec{X: 10}, r2.Vec{Y: 0.3}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos, vel = integrator.Step(pos, vel, pointMass, 0.01)
	}
}

func BenchmarkVerlet(b *testing.B) {
	integrator := NewVerlet()
	pos, vel := r2.Vec{X: 10}, r2.Vec{Y: 0.3}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos, vel = integrator.Step(pos, vel, pointMass, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	pos, vel := r2.Vec{X: 10}, r2.Vec{Y: 0.3}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pos, vel = integrator.Step(pos, vel, pointMass, 0.01)
	}
}
