// Package systree simulates gravity for bodies organized in nested systems,
// each integrating at its own integer tick.
//
// The package is built around a few types:
//
//   - [Tree]: owns the node hierarchy and the body arena; [Tree.Step] runs one step
//   - [NodeSpec]: declarative description consumed by [Build]
//   - [Body]: gravitationally negligible body, integrated numerically
//   - [Source]: body on a fixed analytic orbit that contributes mass
//   - [Report]: absolute snapshot of a body emitted by a step
//
// A node only advances once nothing below it lags behind its clock. Bodies
// crossing a child's radius are re-expressed in the child's frame and queued
// until the child's clock reaches their arrival time; bodies leaving a node
// ride an elevator back to the parent, which drifts them forward to its own
// time. Stored positions are always relative to the owning node.
//
// # Example
//
//	tree, err := systree.Build(spec)
//	if err != nil {
//	    return err
//	}
//	for i := 0; i < 100; i++ {
//	    for _, r := range tree.Step() {
//	        fmt.Println(r.Time, r.Body.Owner, r.Body.Position)
//	    }
//	}
//
// # Thread Safety
//
// A Tree is NOT safe for concurrent use. Fork an independent instance with
// [Tree.Clone] or [Tree.CloneRetaining] and hand it to another goroutine.
//
// Sibling radii are not checked for overlap; callers must keep children
// apart. A body fast enough to cross a thin child within one tick skips it.
package systree
