package metrics

import (
	"math"

	"github.com/san-kum/systree/internal/systree"
	"gonum.org/v1/gonum/spatial/r2"
)

// RadialDrift tracks the largest distance change of one owner from a
// center, relative to the first observed distance.
type RadialDrift struct {
	name    string
	owner   string
	center  Center
	initial float64
	max     float64
	samples int
}

func NewRadialDrift(owner string, center Center) *RadialDrift {
	if center == nil {
		center = Origin
	}
	return &RadialDrift{
		name:   "radial_drift",
		owner:  owner,
		center: center,
	}
}

func (d *RadialDrift) Name() string {
	return d.name
}

func (d *RadialDrift) Observe(r systree.Report) {
	if r.Body.Owner != d.owner {
		return
	}
	dist := r2.Norm(r2.Sub(r.Body.Position, d.center(r.Time).Position))
	if d.samples == 0 {
		d.initial = dist
	}
	d.samples++
	if d.initial > 0 {
		d.max = math.Max(d.max, math.Abs(dist-d.initial)/d.initial)
	}
}

func (d *RadialDrift) Value() float64 {
	return d.max
}

func (d *RadialDrift) Reset() {
	d.initial = 0
	d.max = 0
	d.samples = 0
}
