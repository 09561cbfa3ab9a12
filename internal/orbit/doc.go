// Package orbit provides closed-form paths for bodies that are never
// numerically integrated.
//
//   - [Orbit]: a stationary point or a circular path around the parent frame
//   - [Chain]: root-first sequence of orbits whose sum locates a frame
//
// Every evaluation is a pure function of time, so callers may ask for a
// position far in the future (or the past) without stepping anything.
//
// # Example
//
//	moon := orbit.NewCircular(20, 0.05, 0)
//	var c orbit.Chain
//	c.Append(orbit.NewCircular(400, 0.001, math.Pi/2))
//	c.Append(moon)
//	p := c.Sum(1200)
package orbit
