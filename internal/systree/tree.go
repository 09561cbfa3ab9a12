package systree

import (
	"github.com/san-kum/systree/internal/integrators"
	"github.com/san-kum/systree/internal/orbit"
	"gonum.org/v1/gonum/spatial/r2"
)

// Migration identifies the direction of a boundary crossing.
type Migration int

const (
	Descend Migration = iota
	Ascend
)

func (m Migration) String() string {
	if m == Ascend {
		return "ascend"
	}
	return "descend"
}

// Observer is notified of every boundary crossing during a step.
type Observer interface {
	OnMigrate(m Migration, owner string, at int64)
}

// Tree owns a validated node hierarchy and every simulated body in it.
type Tree struct {
	root     *Node
	bodies   arena
	integ    integrators.Integrator
	observer Observer
}

// SetIntegrator replaces the integration scheme. Nil restores the default.
func (t *Tree) SetIntegrator(integ integrators.Integrator) {
	if integ == nil {
		integ = integrators.Default()
	}
	t.integ = integ
}

func (t *Tree) Integrator() integrators.Integrator { return t.integ }

func (t *Tree) SetObserver(o Observer) { t.observer = o }

// Step runs one step from the root and returns every body that reached a
// new time. The root advances one tick only when nothing under it lags;
// otherwise the call lets lagging children catch up.
func (t *Tree) Step() []Report {
	s := stepper{bodies: &t.bodies, integ: t.integ, obs: t.observer}
	reports, _ := s.advance(t.root, 0)
	return reports
}

// Time returns the root clock.
func (t *Tree) Time() int64 { return t.root.time }

// Tick returns the root tick.
func (t *Tree) Tick() int64 { return t.root.tick }

// Count returns the number of simulated bodies in the tree.
func (t *Tree) Count() int { return t.root.count }

// Bodies returns an absolute snapshot of every simulated body. Owned bodies
// are reported at their node's time, queued ones at their arrival time.
func (t *Tree) Bodies() []Report {
	var out []Report
	t.walk(t.root, func(n *Node, _ string, _ int) {
		out = t.bodies.report(n, n.owned, out)
		for _, a := range n.queue {
			at := float64(a.at)
			out = append(out, Report{
				Time: a.at,
				Body: snapshot(t.bodies.get(a.id), n.chain.Sum(at), n.chain.Velocity(at)),
			})
		}
	})
	return out
}

// Find returns the snapshot of the first body carrying owner.
func (t *Tree) Find(owner string) (Report, bool) {
	for _, r := range t.Bodies() {
		if r.Body.Owner == owner {
			return r, true
		}
	}
	return Report{}, false
}

// SourceView pairs a source with the chain that locates it, its own orbit
// included, so its absolute position can be evaluated at any time.
type SourceView struct {
	Source Source
	Path   string
	Chain  orbit.Chain
}

func (v SourceView) Position(t float64) r2.Vec { return v.Chain.Sum(t) }

// Sources lists every source body in the tree.
func (t *Tree) Sources() []SourceView {
	var out []SourceView
	t.walk(t.root, func(n *Node, path string, _ int) {
		for _, s := range n.sources {
			out = append(out, SourceView{Source: s, Path: path, Chain: n.chain.Extend(s.Orbit)})
		}
	})
	return out
}

// Walk visits every node depth-first, parents before children.
func (t *Tree) Walk(fn func(NodeView)) {
	t.walk(t.root, func(n *Node, path string, depth int) {
		fn(n.view(path, depth))
	})
}

func (t *Tree) walk(root *Node, fn func(n *Node, path string, depth int)) {
	var visit func(n *Node, path string, depth int)
	visit = func(n *Node, path string, depth int) {
		fn(n, path, depth)
		for i, c := range n.children {
			visit(c, childPath(path, c.name, i), depth+1)
		}
	}
	name := root.name
	if name == "" {
		name = "root"
	}
	visit(root, name, 0)
}

// Inject adds a body to the root, expressed in the root frame at the
// root's current time.
func (t *Tree) Inject(b Body) BodyID {
	b = b.clone()
	id := t.bodies.add(b)
	t.root.owned = append(t.root.owned, id)
	t.root.count++
	return id
}

// Remove deletes every body carrying owner and returns how many were removed.
func (t *Tree) Remove(owner string) int {
	return t.remove(t.root, owner)
}

func (t *Tree) remove(n *Node, owner string) int {
	removed := 0
	keep := func(id BodyID) bool {
		if t.bodies.get(id).Owner != owner {
			return true
		}
		t.bodies.release(id)
		removed++
		return false
	}

	owned := n.owned[:0]
	for _, id := range n.owned {
		if keep(id) {
			owned = append(owned, id)
		}
	}
	n.owned = owned

	queue := n.queue[:0]
	for _, a := range n.queue {
		if keep(a.id) {
			queue = append(queue, a)
		}
	}
	n.queue = queue

	for _, c := range n.children {
		removed += t.remove(c, owner)
	}
	n.count -= removed
	return removed
}

// Clone returns an independent deep copy. The observer is not copied.
func (t *Tree) Clone() *Tree {
	return t.clone(func(*Body) bool { return true })
}

// CloneRetaining returns a copy holding only the bodies carrying owner,
// wherever they are (owned or queued). Clocks are preserved.
func (t *Tree) CloneRetaining(owner string) *Tree {
	return t.clone(func(b *Body) bool { return b.Owner == owner })
}

func (t *Tree) clone(keep func(*Body) bool) *Tree {
	out := &Tree{integ: t.integ}
	out.root = t.cloneNode(t.root, keep, &out.bodies)
	return out
}

func (t *Tree) cloneNode(n *Node, keep func(*Body) bool, dst *arena) *Node {
	c := &Node{
		name:   n.name,
		tick:   n.tick,
		time:   n.time,
		radius: n.radius,
		orbit:  n.orbit,
		chain:  n.chain.Clone(),
		mass:   n.mass,
	}
	if len(n.sources) > 0 {
		c.sources = append([]Source(nil), n.sources...)
	}

	for _, id := range n.owned {
		if b := t.bodies.get(id); keep(b) {
			c.owned = append(c.owned, dst.add(b.clone()))
		}
	}
	for _, a := range n.queue {
		if b := t.bodies.get(a.id); keep(b) {
			c.queue = append(c.queue, arrival{at: a.at, id: dst.add(b.clone())})
		}
	}
	c.count = len(c.owned) + len(c.queue)

	for _, child := range n.children {
		cc := t.cloneNode(child, keep, dst)
		c.children = append(c.children, cc)
		c.count += cc.count
	}
	return c
}
