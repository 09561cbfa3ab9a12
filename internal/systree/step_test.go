package systree

import (
	"math"
	"testing"

	"github.com/san-kum/systree/internal/integrators"
	"github.com/san-kum/systree/internal/orbit"
	"gonum.org/v1/gonum/spatial/r2"
)

const tolerance = 1e-9

func near(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// star is a single-node tree around a unit mass at the origin.
func star(t *testing.T, tick int64, bodies ...Body) *Tree {
	t.Helper()
	tree, err := Build(NodeSpec{
		Name:    "star",
		Tick:    tick,
		Radius:  1e6,
		Orbit:   at(orbit.Fixed()),
		Sources: []Source{{Name: "star", Orbit: orbit.Fixed(), Mass: 1}},
		Bodies:  bodies,
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return tree
}

func TestStepEmptyTreeNeverAdvances(t *testing.T) {
	tree := star(t, 10)
	for i := 0; i < 5; i++ {
		if r := tree.Step(); len(r) != 0 {
			t.Fatalf("expected no reports, got %d", len(r))
		}
	}
	if tree.Time() != 0 {
		t.Errorf("expected clock to stay at 0, got %d", tree.Time())
	}
}

func TestStepSemiImplicitOrder(t *testing.T) {
	tree := star(t, 1, NewBody("probe", r2.Vec{X: 100}, r2.Vec{Y: 0.1}, 0))

	reports := tree.Step()
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	r := reports[0]
	if r.Time != 1 {
		t.Errorf("expected time 1, got %d", r.Time)
	}
	if !near(r.Body.Position, r2.Vec{X: 99.9999, Y: 0.1}, tolerance) {
		t.Errorf("unexpected position %v", r.Body.Position)
	}
	if !near(r.Body.Velocity, r2.Vec{X: -1e-4, Y: 0.1}, tolerance) {
		t.Errorf("unexpected velocity %v", r.Body.Velocity)
	}
}

func TestStepCoincidentSourceIsSkipped(t *testing.T) {
	tree := star(t, 1, NewBody("probe", r2.Vec{}, r2.Vec{X: 1}, 0))

	r := tree.Step()
	if len(r) != 1 {
		t.Fatalf("expected 1 report, got %d", len(r))
	}
	if !near(r[0].Body.Position, r2.Vec{X: 1}, 0) || !near(r[0].Body.Velocity, r2.Vec{X: 1}, 0) {
		t.Errorf("expected free drift, got %v %v", r[0].Body.Position, r[0].Body.Velocity)
	}
	if math.IsNaN(r[0].Body.Position.X) {
		t.Error("position became NaN")
	}
}

func TestStepCircularOrbitStaysBounded(t *testing.T) {
	const r0 = 10.0
	v0 := math.Sqrt(1 / r0)

	tests := []struct {
		name    string
		integ   integrators.Integrator
		bounded bool
	}{
		{"semi-implicit", integrators.NewSemiImplicitEuler(), true},
		{"explicit", integrators.NewEuler(), false},
		{"verlet", integrators.NewVerlet(), true},
		{"rk4", integrators.NewRK4(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := star(t, 1, NewBody("probe", r2.Vec{X: r0}, r2.Vec{Y: v0}, 0))
			tree.SetIntegrator(tt.integ)

			maxDrift := 0.0
			for i := 0; i < 200; i++ {
				for _, r := range tree.Step() {
					maxDrift = math.Max(maxDrift, math.Abs(r2.Norm(r.Body.Position)-r0))
				}
			}
			if tt.bounded && maxDrift >= 0.5 {
				t.Errorf("radius drifted by %.3f", maxDrift)
			}
			if !tt.bounded && maxDrift < 0.5 {
				t.Errorf("expected explicit scheme to drift, max %.3f", maxDrift)
			}
		})
	}
}

func TestSetIntegratorNilRestoresDefault(t *testing.T) {
	tree := star(t, 1)
	tree.SetIntegrator(integrators.NewEuler())
	tree.SetIntegrator(nil)
	if got := tree.Integrator().Name(); got != integrators.Default().Name() {
		t.Errorf("expected %s, got %s", integrators.Default().Name(), got)
	}
}

type recorder struct {
	events []string
	times  []int64
}

func (r *recorder) OnMigrate(m Migration, owner string, at int64) {
	r.events = append(r.events, m.String()+":"+owner)
	r.times = append(r.times, at)
}

func TestObserverSeesMigrations(t *testing.T) {
	tree, err := Build(NodeSpec{
		Tick: 10, Radius: 1e4, Orbit: at(orbit.Fixed()),
		Bodies: []Body{NewBody("ship", r2.Vec{}, r2.Vec{X: 1}, 0)},
		Children: []NodeSpec{{
			Name: "gate", Tick: 2, Radius: 10, Orbit: at(orbit.NewCircular(50, 0, 0)),
		}},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	rec := &recorder{}
	tree.SetObserver(rec)

	for i := 0; i < 12; i++ {
		tree.Step()
	}

	want := []string{"descend:ship", "ascend:ship"}
	if len(rec.events) != len(want) {
		t.Fatalf("expected %v, got %v", want, rec.events)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], rec.events[i])
		}
	}
	if rec.times[0] != 50 || rec.times[1] != 62 {
		t.Errorf("expected crossings at 50 and 62, got %v", rec.times)
	}
}

func TestNodeEarliest(t *testing.T) {
	n := &Node{tick: 10, time: 20, count: 1}
	child := &Node{tick: 1, time: 13, count: 1}
	empty := &Node{tick: 1, time: 2}
	n.children = []*Node{child, empty}

	if got := n.earliest(); got != 13 {
		t.Errorf("expected 13, got %d", got)
	}

	child.enqueue(15, 0)
	child.enqueue(11, 1)
	child.enqueue(15, 2)
	if got := n.earliest(); got != 11 {
		t.Errorf("expected 11, got %d", got)
	}
	ids := []BodyID{child.queue[0].id, child.queue[1].id, child.queue[2].id}
	if ids[0] != 1 || ids[1] != 0 || ids[2] != 2 {
		t.Errorf("queue out of order: %v", ids)
	}

	if got := empty.earliest(); got != never {
		t.Errorf("expected never for an empty node, got %d", got)
	}
}

func TestDrainAdoptsFirstArrival(t *testing.T) {
	var a arena
	n := &Node{tick: 1, time: 3, count: 2}
	n.enqueue(10, a.add(Body{Owner: "a"}))
	n.enqueue(12, a.add(Body{Owner: "b"}))

	s := stepper{bodies: &a}
	s.drain(n)

	if n.time != 10 {
		t.Errorf("expected clock at 10, got %d", n.time)
	}
	if len(n.owned) != 1 || len(n.queue) != 1 {
		t.Fatalf("expected 1 owned and 1 queued, got %d and %d", len(n.owned), len(n.queue))
	}
	if a.get(n.owned[0]).Owner != "a" {
		t.Errorf("drained the wrong body")
	}
}
