package systree

import (
	"math"

	"github.com/san-kum/systree/internal/integrators"
	"gonum.org/v1/gonum/spatial/r2"
)

// stepper carries the per-tree collaborators through one recursive step.
type stepper struct {
	bodies *arena
	integ  integrators.Integrator
	obs    Observer
}

// lift is a body on its way up to the parent, expressed in the parent's
// frame at time at.
type lift struct {
	at int64
	id BodyID
}

// advance runs one step of n. parentTick is 0 for the root, which never
// hands bodies upwards.
func (s *stepper) advance(n *Node, parentTick int64) ([]Report, []lift) {
	var out []Report

	advanced := false
	if n.count > 0 && n.earliest() >= n.time {
		s.integrate(n)
		n.time += n.tick
		s.drain(n)
		s.descend(n)
		advanced = true
	}

	var arriving []lift
	for _, c := range n.children {
		if c.count == 0 || c.earliest() >= n.time {
			continue
		}
		reports, up := s.advance(c, n.tick)
		out = append(out, reports...)
		arriving = append(arriving, up...)
	}

	var leaving []lift
	if parentTick > 0 {
		leaving = s.ascend(n, parentTick)
	}

	absorbed := s.absorb(n, arriving)

	if advanced {
		out = s.bodies.report(n, n.owned, out)
	} else {
		out = s.bodies.report(n, absorbed, out)
	}
	return out, leaving
}

// integrate applies gravity from n's immediate mass sources to every body
// n owns, evaluated at n's current time.
func (s *stepper) integrate(n *Node) {
	if len(n.owned) == 0 {
		return
	}
	wells := n.wells(float64(n.time))
	field := func(p r2.Vec) r2.Vec { return acceleration(p, wells) }
	dt := float64(n.tick)
	for _, id := range n.owned {
		b := s.bodies.get(id)
		pos, vel := s.integ.Step(b.Position, b.Velocity, field, dt)
		b.moveTo(pos, vel)
	}
}

// acceleration sums inverse-square pulls. Coincident sources pull nothing.
func acceleration(p r2.Vec, wells []well) r2.Vec {
	var a r2.Vec
	for _, w := range wells {
		d := r2.Sub(w.pos, p)
		d2 := r2.Norm2(d)
		if d2 == 0 {
			continue
		}
		a = r2.Add(a, r2.Scale(w.mass/(d2*math.Sqrt(d2)), d))
	}
	return a
}

// drain moves queued arrivals that are due into the owned list. A node
// that owned nothing jumps its clock forward to the first arrival.
func (s *stepper) drain(n *Node) {
	if len(n.queue) == 0 {
		return
	}
	if len(n.owned) == 0 && n.queue[0].at > n.time {
		n.time = n.queue[0].at
	}
	i := 0
	for ; i < len(n.queue) && n.queue[i].at <= n.time; i++ {
		n.owned = append(n.owned, n.queue[i].id)
	}
	n.queue = append(n.queue[:0], n.queue[i:]...)
}

// descend hands bodies that entered a child over to it.
func (s *stepper) descend(n *Node) {
	if len(n.children) == 0 || len(n.owned) == 0 {
		return
	}
	t, dt := float64(n.time), float64(n.tick)
	centers := make([]r2.Vec, len(n.children))
	for i, c := range n.children {
		centers[i] = c.orbit.Position(t)
	}

	kept := n.owned[:0]
	for _, id := range n.owned {
		b := s.bodies.get(id)
		target := -1
		for i, c := range n.children {
			if r2.Norm2(r2.Sub(b.Position, centers[i])) < c.radius*c.radius {
				target = i
				break
			}
		}
		if target < 0 {
			kept = append(kept, id)
			continue
		}

		c := n.children[target]
		b.shift(r2.Scale(-1, centers[target]), r2.Scale(-1, c.orbit.StepVelocity(t, dt)))
		// n has already moved past c's clock, so the body waits in c's
		// queue until c catches up.
		c.count++
		c.enqueue(n.time, id)
		if s.obs != nil {
			s.obs.OnMigrate(Descend, b.Owner, n.time)
		}
	}
	n.owned = kept
}

// ascend removes bodies that left n and re-expresses them in the parent's
// frame, using the parent's tick for the frame velocity.
func (s *stepper) ascend(n *Node, parentTick int64) []lift {
	if len(n.owned) == 0 {
		return nil
	}
	t := float64(n.time)
	var (
		offset r2.Vec
		drift  r2.Vec
		ready  bool
		up     []lift
	)

	kept := n.owned[:0]
	for _, id := range n.owned {
		b := s.bodies.get(id)
		if n.contains(b.Position) {
			kept = append(kept, id)
			continue
		}
		if !ready {
			offset = n.orbit.Position(t)
			drift = n.orbit.StepVelocity(t, float64(parentTick))
			ready = true
		}
		b.shift(offset, drift)
		n.count--
		up = append(up, lift{at: n.time, id: id})
		if s.obs != nil {
			s.obs.OnMigrate(Ascend, b.Owner, n.time)
		}
	}
	n.owned = kept
	return up
}

// absorb takes bodies handed up by children, drifting each from the time
// it left to n's current time. The clock is never rewound.
func (s *stepper) absorb(n *Node, arriving []lift) []BodyID {
	if len(arriving) == 0 {
		return nil
	}
	ids := make([]BodyID, 0, len(arriving))
	for _, a := range arriving {
		s.bodies.get(a.id).drift(n.time - a.at)
		n.owned = append(n.owned, a.id)
		ids = append(ids, a.id)
	}
	return ids
}

// report appends absolute snapshots of ids, all taken at n's current time.
func (a *arena) report(n *Node, ids []BodyID, out []Report) []Report {
	if len(ids) == 0 {
		return out
	}
	t := float64(n.time)
	origin, frame := n.chain.Sum(t), n.chain.Velocity(t)
	for _, id := range ids {
		out = append(out, Report{Time: n.time, Body: snapshot(a.get(id), origin, frame)})
	}
	return out
}

func snapshot(b *Body, origin, frame r2.Vec) Snapshot {
	return Snapshot{
		Position: r2.Add(origin, b.Position),
		Velocity: r2.Add(frame, b.Velocity),
		Mass:     b.Mass,
		Owner:    b.Owner,
	}
}
