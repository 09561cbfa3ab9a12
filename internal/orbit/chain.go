package orbit

import "gonum.org/v1/gonum/spatial/r2"

// Chain is an ordered, root-first list of orbits. Summing every link gives
// the absolute position of the frame the chain leads to.
// Stationary links are dropped on insertion since they add nothing.
type Chain struct {
	links []Orbit
}

// NewChain builds a chain from root-first orbits.
func NewChain(orbits ...Orbit) Chain {
	var c Chain
	for _, o := range orbits {
		c.Append(o)
	}
	return c
}

func (c *Chain) Append(o Orbit) {
	if o.IsStationary() {
		return
	}
	c.links = append(c.links, o)
}

func (c *Chain) Prepend(o Orbit) {
	if o.IsStationary() {
		return
	}
	links := make([]Orbit, 0, len(c.links)+1)
	links = append(links, o)
	c.links = append(links, c.links...)
}

// PopLast removes and returns the innermost link.
func (c *Chain) PopLast() (Orbit, bool) {
	if len(c.links) == 0 {
		return Orbit{}, false
	}
	last := c.links[len(c.links)-1]
	c.links = c.links[:len(c.links)-1]
	return last, true
}

// Extend returns a copy of c with o appended; c is left untouched.
func (c Chain) Extend(o Orbit) Chain {
	next := c.Clone()
	next.Append(o)
	return next
}

func (c Chain) Clone() Chain {
	if c.links == nil {
		return Chain{}
	}
	links := make([]Orbit, len(c.links))
	copy(links, c.links)
	return Chain{links: links}
}

func (c Chain) Len() int { return len(c.links) }

// Links returns a copy of the stored orbits, root first.
func (c Chain) Links() []Orbit {
	return c.Clone().links
}

// Sum returns the absolute position of the frame at time t.
func (c Chain) Sum(t float64) r2.Vec {
	return sum(c.links, t)
}

// SumSuffix sums the innermost n links, i.e. the position relative to an
// ancestor n stored links up.
func (c Chain) SumSuffix(t float64, n int) r2.Vec {
	n = clamp(n, len(c.links))
	return sum(c.links[len(c.links)-n:], t)
}

// SumPrefix sums the outermost n links.
func (c Chain) SumPrefix(t float64, n int) r2.Vec {
	n = clamp(n, len(c.links))
	return sum(c.links[:n], t)
}

// Velocity returns the analytic absolute velocity of the frame at time t.
func (c Chain) Velocity(t float64) r2.Vec {
	var v r2.Vec
	for _, o := range c.links {
		v = r2.Add(v, o.Velocity(t))
	}
	return v
}

// StepVelocity estimates the frame velocity over one dt, relative to an
// ancestor n stored links up.
func (c Chain) StepVelocity(t, dt float64, n int) r2.Vec {
	if dt == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/dt, r2.Sub(c.SumSuffix(t+dt, n), c.SumSuffix(t, n)))
}

func sum(links []Orbit, t float64) r2.Vec {
	var p r2.Vec
	for _, o := range links {
		p = r2.Add(p, o.Position(t))
	}
	return p
}

func clamp(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
