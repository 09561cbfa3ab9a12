package orbit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kind selects how an Orbit is evaluated.
type Kind int

const (
	Stationary Kind = iota
	Circular
)

func (k Kind) String() string {
	switch k {
	case Stationary:
		return "stationary"
	case Circular:
		return "circular"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a scenario keyword onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "stationary", "fixed", "":
		return Stationary, nil
	case "circular":
		return Circular, nil
	default:
		return Stationary, fmt.Errorf("orbit: unknown kind %q", s)
	}
}

// Orbit is a fixed path relative to the parent frame.
// Radius, Speed and Phase are ignored for Stationary orbits.
type Orbit struct {
	Kind   Kind
	Radius float64
	Speed  float64 // angular speed in radians per tick, negative is retrograde
	Phase  float64 // angle at t = 0
}

// Fixed returns the stationary orbit.
func Fixed() Orbit { return Orbit{Kind: Stationary} }

func NewCircular(radius, speed, phase float64) Orbit {
	return Orbit{Kind: Circular, Radius: radius, Speed: speed, Phase: phase}
}

// IsStationary reports whether the orbit contributes nothing to a chain.
func (o Orbit) IsStationary() bool { return o.Kind == Stationary }

func (o Orbit) angle(t float64) float64 {
	return o.Phase + o.Speed*t
}

// Position returns the offset from the parent frame at time t.
func (o Orbit) Position(t float64) r2.Vec {
	switch o.Kind {
	case Circular:
		sin, cos := math.Sincos(o.angle(t))
		return r2.Vec{X: o.Radius * cos, Y: o.Radius * sin}
	default:
		return r2.Vec{}
	}
}

// Velocity returns the analytic derivative of Position at time t.
func (o Orbit) Velocity(t float64) r2.Vec {
	switch o.Kind {
	case Circular:
		sin, cos := math.Sincos(o.angle(t))
		v := o.Speed * o.Radius
		return r2.Vec{X: -v * sin, Y: v * cos}
	default:
		return r2.Vec{}
	}
}

// StepVelocity estimates velocity from two positions one dt apart.
// Frame transforms use it instead of Velocity so that a body moved into
// a frame and back out over the same step lands where it started.
func (o Orbit) StepVelocity(t, dt float64) r2.Vec {
	if o.IsStationary() || dt == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/dt, r2.Sub(o.Position(t+dt), o.Position(t)))
}

// Period returns the time for one revolution, +Inf when the orbit never turns.
func (o Orbit) Period() float64 {
	if o.Kind != Circular || o.Speed == 0 {
		return math.Inf(1)
	}
	return 2 * math.Pi / math.Abs(o.Speed)
}

func (o Orbit) String() string {
	if o.Kind == Circular {
		return fmt.Sprintf("circular(r=%g, w=%g, phase=%g)", o.Radius, o.Speed, o.Phase)
	}
	return o.Kind.String()
}
