package systree

import (
	"math"
	"testing"

	"github.com/san-kum/systree/internal/orbit"
	"gonum.org/v1/gonum/spatial/r2"
)

func moonSystem(t *testing.T) *Tree {
	t.Helper()
	tree, err := Build(NodeSpec{
		Name: "earth", Tick: 2, Radius: 1000, Orbit: at(orbit.Fixed()),
		Sources: []Source{{Name: "earth", Orbit: orbit.Fixed(), Mass: 10}},
		Children: []NodeSpec{{
			Name: "moon", Tick: 1, Radius: 20, Orbit: at(orbit.NewCircular(100, 0.5, 0)),
			Sources: []Source{
				{Name: "moon", Orbit: orbit.Fixed(), Mass: 1},
				{Name: "buoy", Orbit: orbit.NewCircular(10, 0, math.Pi/2)},
			},
			Bodies: []Body{NewBody("lander", r2.Vec{X: 1}, r2.Vec{}, 0)},
		}},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return tree
}

func TestBodiesAreAbsolute(t *testing.T) {
	tree := moonSystem(t)

	r, ok := tree.Find("lander")
	if !ok {
		t.Fatal("lander not found")
	}
	if r.Time != 0 {
		t.Errorf("expected time 0, got %d", r.Time)
	}
	if !near(r.Body.Position, r2.Vec{X: 101}, tolerance) {
		t.Errorf("expected (101, 0), got %v", r.Body.Position)
	}
	if !near(r.Body.Velocity, r2.Vec{Y: 50}, tolerance) {
		t.Errorf("expected frame velocity (0, 50), got %v", r.Body.Velocity)
	}

	if _, ok := tree.Find("nobody"); ok {
		t.Error("found a body that does not exist")
	}
}

func TestSources(t *testing.T) {
	tree := moonSystem(t)

	got := map[string]r2.Vec{}
	paths := map[string]string{}
	for _, s := range tree.Sources() {
		got[s.Source.Name] = s.Position(0)
		paths[s.Source.Name] = s.Path
	}

	want := map[string]r2.Vec{
		"earth": {},
		"moon":  {X: 100},
		"buoy":  {X: 100, Y: 10},
	}
	for name, pos := range want {
		if !near(got[name], pos, 1e-9) {
			t.Errorf("%s: expected %v, got %v", name, pos, got[name])
		}
	}
	if paths["buoy"] != "earth/moon" {
		t.Errorf("expected buoy under earth/moon, got %q", paths["buoy"])
	}
}

func TestInjectAndRemove(t *testing.T) {
	tree := moonSystem(t)

	tree.Inject(NewBody("probe", r2.Vec{X: 500}, r2.Vec{}, 0))
	if tree.Count() != 2 {
		t.Fatalf("expected 2 bodies, got %d", tree.Count())
	}

	if n := tree.Remove("lander"); n != 1 {
		t.Errorf("expected 1 removal, got %d", n)
	}
	if n := tree.Remove("lander"); n != 0 {
		t.Errorf("expected nothing left to remove, got %d", n)
	}
	if tree.Count() != 1 {
		t.Errorf("expected 1 body, got %d", tree.Count())
	}
	tree.Walk(func(v NodeView) {
		if v.Path == "earth/moon" && v.Count != 0 {
			t.Errorf("expected empty moon, got %d", v.Count)
		}
	})

	tree.Inject(NewBody("relay", r2.Vec{X: -500}, r2.Vec{}, 0))
	if tree.bodies.size() != 2 || len(tree.bodies.bodies) != 2 {
		t.Errorf("expected released slot to be reused, arena holds %d slots", len(tree.bodies.bodies))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tree := moonSystem(t)
	before, _ := tree.Find("lander")

	fork := tree.Clone()
	for i := 0; i < 4; i++ {
		fork.Step()
	}

	after, _ := tree.Find("lander")
	if after != before {
		t.Errorf("stepping the clone moved the original: %v -> %v", before, after)
	}
	if tree.Time() != 0 {
		t.Errorf("expected original clock at 0, got %d", tree.Time())
	}
	if fork.Time() == 0 {
		t.Error("expected the clone to advance")
	}
	if fork.Count() != tree.Count() {
		t.Errorf("expected equal counts, got %d and %d", fork.Count(), tree.Count())
	}
}

func TestCloneDoesNotCopyObserver(t *testing.T) {
	tree := moonSystem(t)
	tree.SetObserver(&recorder{})
	if fork := tree.Clone(); fork.observer != nil {
		t.Error("observer leaked into the clone")
	}
}

func TestBodyInterpolate(t *testing.T) {
	b := Body{PrevPosition: r2.Vec{X: 0, Y: 2}, Position: r2.Vec{X: 4, Y: 6}}

	tests := []struct {
		alpha float64
		want  r2.Vec
	}{
		{0, r2.Vec{X: 0, Y: 2}},
		{0.5, r2.Vec{X: 2, Y: 4}},
		{1, r2.Vec{X: 4, Y: 6}},
	}
	for _, tt := range tests {
		if got := b.Interpolate(tt.alpha); !near(got, tt.want, tolerance) {
			t.Errorf("alpha %v: expected %v, got %v", tt.alpha, tt.want, got)
		}
	}
}

func TestMigrationString(t *testing.T) {
	if Descend.String() != "descend" || Ascend.String() != "ascend" {
		t.Errorf("unexpected names %s %s", Descend, Ascend)
	}
}
