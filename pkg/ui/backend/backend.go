// Package backend defines the terminal surface abstraction.
// It decouples the buffer manager from the concrete terminal library so the
// same code runs against a real terminal (tcell) or a simulation screen in
// tests.
package backend

import (
	"time"

	"github.com/halvard/screenstack/pkg/ui/terminal"
)

// Backend is the terminal surface. All drawing is buffered: nothing reaches
// the terminal until Show. Implementations are not safe for concurrent use;
// the buffer manager serializes access behind its paint lock.
type Backend interface {
	// Init enters raw mode / alt screen.
	Init() error

	// Fini restores the terminal state.
	Fini()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// SetContent sets one cell. comb carries combining runes and may be nil.
	SetContent(x, y int, mainc rune, comb []rune, style Style)

	// Show flushes buffered output to the terminal in one batched update.
	Show()

	// Clear erases the whole screen on next Show.
	Clear()

	// HideCursor hides the hardware cursor.
	HideCursor()

	// ShowCursor makes the hardware cursor visible at its last position.
	ShowCursor()

	// SetCursorPos moves the hardware cursor.
	SetCursorPos(x, y int)

	// PollEvent waits up to timeout for the next input event.
	// It returns nil on timeout or when the backend is shut down; a nil
	// result is "no event yet", never an error.
	PollEvent(timeout time.Duration) terminal.Event

	// PostEvent injects an event into the input queue (tests, resize
	// notifications).
	PostEvent(ev terminal.Event) error

	// Suspend releases the terminal to an external process (shell-out).
	Suspend() error

	// Resume reclaims the terminal after Suspend.
	Resume() error

	// Beep emits the terminal bell.
	Beep()

	// Sync forces a full hardware repaint on next Show.
	Sync()
}

// RenderTarget is the write-only subset of Backend that buffers paint into.
type RenderTarget interface {
	Size() (width, height int)
	SetContent(x, y int, mainc rune, comb []rune, style Style)
}

// Region is a clipped, offset view of a RenderTarget. Buffers paint through a
// Region so a view can never scribble outside its own rectangle.
type Region struct {
	parent  RenderTarget
	offsetX int
	offsetY int
	width   int
	height  int
}

// NewRegion returns a Region of parent at (x, y) with the given size.
func NewRegion(parent RenderTarget, x, y, w, h int) *Region {
	return &Region{parent: parent, offsetX: x, offsetY: y, width: w, height: h}
}

// Size returns the region dimensions.
func (r *Region) Size() (width, height int) {
	return r.width, r.height
}

// SetContent sets a cell with region-relative coordinates, clipped to bounds.
func (r *Region) SetContent(x, y int, mainc rune, comb []rune, style Style) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	r.parent.SetContent(r.offsetX+x, r.offsetY+y, mainc, comb, style)
}
