package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/systree/internal/orbit"
	"github.com/san-kum/systree/internal/systree"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestDominant(t *testing.T) {
	root := orbit.Fixed()
	planet := orbit.NewCircular(1000, 0, 0)
	tree, err := systree.Build(systree.NodeSpec{
		Name: "sun", Tick: 4, Radius: 1e5, Orbit: &root,
		Sources: []systree.Source{{Name: "sun", Orbit: orbit.Fixed(), Mass: 100}},
		Bodies: []systree.Body{
			systree.NewBody("inner", r2.Vec{X: 100}, r2.Vec{}, 0),
			systree.NewBody("outer", r2.Vec{X: 990}, r2.Vec{}, 0),
		},
		Children: []systree.NodeSpec{{
			Name: "planet", Tick: 2, Radius: 5, Orbit: &planet,
			Sources: []systree.Source{{Name: "planet", Orbit: orbit.Fixed(), Mass: 1}},
		}},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	tests := []struct {
		owner string
		want  string
	}{
		{"inner", "sun"},
		{"outer", "planet"},
	}
	for _, tt := range tests {
		s, ok := Dominant(tree, tt.owner)
		if !ok || s.Source.Name != tt.want {
			t.Errorf("%s: expected %s, got %q (found %v)", tt.owner, tt.want, s.Source.Name, ok)
		}
	}

	if _, ok := Dominant(tree, "ghost"); ok {
		t.Error("unknown owner should have no dominant source")
	}

	s, _ := Dominant(tree, "outer")
	c := SourceCenter(s)(0)
	if math.Abs(c.Position.X-1000) > 1e-9 || c.Mass != 1 || c.Owner != "planet" {
		t.Errorf("unexpected center %+v", c)
	}
}
