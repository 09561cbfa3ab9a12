package metrics

import (
	"math"

	"github.com/san-kum/systree/internal/systree"
	"gonum.org/v1/gonum/spatial/r2"
)

// EnergyDrift tracks the largest relative change in specific orbital
// energy of one owner around a central mass mu.
type EnergyDrift struct {
	name    string
	owner   string
	mu      float64
	center  Center
	initial float64
	current float64
	max     float64
	samples int
}

func NewEnergyDrift(owner string, mu float64, center Center) *EnergyDrift {
	if center == nil {
		center = Origin
	}
	return &EnergyDrift{
		name:   "energy_drift",
		owner:  owner,
		mu:     mu,
		center: center,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

// SpecificEnergy is v²/2 - mu/r of b relative to c.
func SpecificEnergy(b, c systree.Snapshot, mu float64) float64 {
	r := r2.Norm(r2.Sub(b.Position, c.Position))
	v := r2.Sub(b.Velocity, c.Velocity)
	if r == 0 {
		return math.Inf(-1)
	}
	return 0.5*r2.Dot(v, v) - mu/r
}

func (e *EnergyDrift) Observe(r systree.Report) {
	if r.Body.Owner != e.owner {
		return
	}
	energy := SpecificEnergy(r.Body, e.center(r.Time), e.mu)

	if e.samples == 0 {
		e.initial = energy
	}
	e.current = energy
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.max = math.Max(e.max, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.max
}

// Current returns the last observed specific energy.
func (e *EnergyDrift) Current() float64 { return e.current }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.current = 0
	e.max = 0
	e.samples = 0
}
