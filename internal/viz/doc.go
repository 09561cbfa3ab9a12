// Package viz draws a running system tree in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one tree, stepped from the frame clock
//   - [RunInteractive]: preset picker that launches a live view
//   - [Canvas]: Braille-based pixel canvas, projected through a [Viewport]
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	R     - Reset to the initial tree
//	+/-   - Change root steps per frame
//	Tab   - Follow the next body
//	P     - Predict the followed body's path
//	T     - Cycle color themes
//	?     - Show help overlay
//
// At speeds below one step per frame, bodies are drawn between their last
// two reports so motion stays smooth.
package viz
