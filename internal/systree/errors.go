package systree

import (
	"errors"
	"fmt"
)

// Build errors. Every failure returned by Build wraps one of these.
var (
	// ErrMissingPosition indicates a node whose orbit was never set.
	ErrMissingPosition = errors.New("systree: missing position")

	// ErrTimeScaleTooCoarse indicates a child ticking slower than its parent.
	ErrTimeScaleTooCoarse = errors.New("systree: time scale too coarse")

	// ErrTimeScaleNotDivisible indicates a parent tick that is not a multiple of the child tick.
	ErrTimeScaleNotDivisible = errors.New("systree: time scale not divisible")

	// ErrInvalidTick indicates a tick that is not a positive integer.
	ErrInvalidTick = errors.New("systree: tick must be positive")

	// ErrInvalidRadius indicates a radius that is not positive.
	ErrInvalidRadius = errors.New("systree: radius must be positive")
)

// BuildError wraps a build failure with the path of the offending node.
type BuildError struct {
	Path       string
	ParentTick int64
	ChildTick  int64
	Wrapped    error
}

func (e *BuildError) Error() string {
	if e.ParentTick != 0 || e.ChildTick != 0 {
		return fmt.Sprintf("%v at %s (parent tick %d, child tick %d)", e.Wrapped, e.Path, e.ParentTick, e.ChildTick)
	}
	return fmt.Sprintf("%v at %s", e.Wrapped, e.Path)
}

func (e *BuildError) Unwrap() error {
	return e.Wrapped
}
