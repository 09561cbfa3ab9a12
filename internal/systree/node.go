package systree

import (
	"math"
	"sort"

	"github.com/san-kum/systree/internal/orbit"
	"gonum.org/v1/gonum/spatial/r2"
)

// never is the earliest unsettled time of a node with nothing under it.
const never = math.MaxInt64

type arrival struct {
	at int64
	id BodyID
}

// Node is one system in the tree: a circular region with its own clock.
// Shape (tick, radius, orbit, chain, mass) is fixed at build time.
type Node struct {
	name   string
	tick   int64
	time   int64
	radius float64
	orbit  orbit.Orbit
	chain  orbit.Chain // root-first, including this node's orbit
	mass   float64     // own sources plus every descendant node
	count  int         // bodies under this node, queued ones included

	queue    []arrival // ascending by arrival time
	owned    []BodyID
	sources  []Source
	children []*Node
}

// earliest returns the earliest time at which anything under n still has
// to be integrated. Nothing is cached: queues and clocks move every step.
func (n *Node) earliest() int64 {
	if n.count == 0 {
		return never
	}
	t := n.time
	for _, c := range n.children {
		if e := c.earliest(); e < t {
			t = e
		}
	}
	if len(n.queue) > 0 && n.queue[0].at < t {
		t = n.queue[0].at
	}
	return t
}

// enqueue inserts a deferred arrival, after any entry with the same time.
func (n *Node) enqueue(at int64, id BodyID) {
	i := sort.Search(len(n.queue), func(i int) bool { return n.queue[i].at > at })
	n.queue = append(n.queue, arrival{})
	copy(n.queue[i+1:], n.queue[i:])
	n.queue[i] = arrival{at: at, id: id}
}

func (n *Node) contains(p r2.Vec) bool {
	return r2.Norm2(p) <= n.radius*n.radius
}

// well is a mass source evaluated at one instant, relative to a node.
type well struct {
	pos  r2.Vec
	mass float64
}

// wells evaluates every immediate mass source of n at time t.
func (n *Node) wells(t float64) []well {
	ws := make([]well, 0, len(n.children)+len(n.sources))
	for _, c := range n.children {
		if c.mass != 0 {
			ws = append(ws, well{pos: c.orbit.Position(t), mass: c.mass})
		}
	}
	for _, s := range n.sources {
		if s.Mass != 0 {
			ws = append(ws, well{pos: s.Orbit.Position(t), mass: s.Mass})
		}
	}
	return ws
}

// NodeView is a read-only description of a node for collaborators.
type NodeView struct {
	Name    string
	Path    string
	Depth   int
	Tick    int64
	Time    int64
	Radius  float64
	Mass    float64
	Count   int
	Owned   int
	Queued  int
	Sources int
	Orbit   orbit.Orbit
	Chain   orbit.Chain
}

func (n *Node) view(path string, depth int) NodeView {
	return NodeView{
		Name:    n.name,
		Path:    path,
		Depth:   depth,
		Tick:    n.tick,
		Time:    n.time,
		Radius:  n.radius,
		Mass:    n.mass,
		Count:   n.count,
		Owned:   len(n.owned),
		Queued:  len(n.queue),
		Sources: len(n.sources),
		Orbit:   n.orbit,
		Chain:   n.chain.Clone(),
	}
}
