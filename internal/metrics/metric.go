package metrics

import (
	"github.com/san-kum/systree/internal/systree"
	"gonum.org/v1/gonum/spatial/r2"
)

// Metric accumulates a scalar over a stream of reports.
type Metric interface {
	Name() string
	Observe(r systree.Report)
	Value() float64
	Reset()
}

// Center locates the attracting mass at a given time.
type Center func(t int64) systree.Snapshot

// Origin is a Center fixed at the absolute origin.
func Origin(int64) systree.Snapshot { return systree.Snapshot{} }

// SourceCenter follows a source along its chain.
func SourceCenter(s systree.SourceView) Center {
	return func(t int64) systree.Snapshot {
		return systree.Snapshot{
			Position: s.Position(float64(t)),
			Velocity: s.Chain.Velocity(float64(t)),
			Mass:     s.Source.Mass,
			Owner:    s.Source.Name,
		}
	}
}

// Dominant returns the source pulling hardest on owner right now.
func Dominant(tree *systree.Tree, owner string) (systree.SourceView, bool) {
	r, ok := tree.Find(owner)
	if !ok {
		return systree.SourceView{}, false
	}
	t := float64(tree.Time())

	var best systree.SourceView
	pull, found := 0.0, false
	for _, s := range tree.Sources() {
		d2 := r2.Norm2(r2.Sub(r.Body.Position, s.Position(t)))
		if d2 == 0 {
			continue
		}
		if p := s.Source.Mass / d2; !found || p > pull {
			best, pull, found = s, p, true
		}
	}
	return best, found
}
