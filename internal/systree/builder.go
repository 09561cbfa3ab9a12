package systree

import (
	"fmt"

	"github.com/san-kum/systree/internal/integrators"
	"github.com/san-kum/systree/internal/orbit"
)

// NodeSpec declares one system and everything it directly owns.
// Orbit is a pointer so that a forgotten orbit is reported instead of
// silently meaning "stationary".
type NodeSpec struct {
	Name     string
	Radius   float64
	Orbit    *orbit.Orbit
	Tick     int64
	Sources  []Source
	Bodies   []Body
	Children []NodeSpec
}

// Build assembles and validates a tree. No partial tree is returned on error.
func Build(spec NodeSpec) (*Tree, error) {
	t := &Tree{integ: integrators.Default()}

	name := spec.Name
	if name == "" {
		name = "root"
	}
	root, err := t.build(spec, orbit.Chain{}, name)
	if err != nil {
		return nil, err
	}
	if err := validate(root, name); err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

func (t *Tree) build(spec NodeSpec, parent orbit.Chain, path string) (*Node, error) {
	if spec.Orbit == nil {
		return nil, &BuildError{Path: path, Wrapped: ErrMissingPosition}
	}
	if spec.Tick <= 0 {
		return nil, &BuildError{Path: path, Wrapped: ErrInvalidTick}
	}
	if !(spec.Radius > 0) {
		return nil, &BuildError{Path: path, Wrapped: ErrInvalidRadius}
	}

	n := &Node{
		name:   spec.Name,
		tick:   spec.Tick,
		radius: spec.Radius,
		orbit:  *spec.Orbit,
		chain:  parent.Extend(*spec.Orbit),
	}

	for i, cs := range spec.Children {
		child, err := t.build(cs, n.chain, childPath(path, cs.Name, i))
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
		n.mass += child.mass
		n.count += child.count
	}

	for _, s := range spec.Sources {
		n.sources = append(n.sources, s)
		n.mass += s.Mass
	}

	for _, b := range spec.Bodies {
		b = b.clone()
		b.PrevPosition, b.PrevVelocity = b.Position, b.Velocity
		n.owned = append(n.owned, t.bodies.add(b))
	}
	n.count += len(n.owned)

	return n, nil
}

// validate checks every parent/child tick relationship.
func validate(n *Node, path string) error {
	for i, c := range n.children {
		cp := childPath(path, c.name, i)
		if c.tick > n.tick {
			return &BuildError{Path: cp, ParentTick: n.tick, ChildTick: c.tick, Wrapped: ErrTimeScaleTooCoarse}
		}
		if n.tick%c.tick != 0 {
			return &BuildError{Path: cp, ParentTick: n.tick, ChildTick: c.tick, Wrapped: ErrTimeScaleNotDivisible}
		}
		if err := validate(c, cp); err != nil {
			return err
		}
	}
	return nil
}

func childPath(parent, name string, i int) string {
	if name == "" {
		name = fmt.Sprintf("#%d", i)
	}
	return parent + "/" + name
}
