// Package screen multiplexes logical buffers onto a single terminal.
// It owns the buffer stack, input focus, the minibuffer region and the
// blocking prompt/modal loops. Rendering goes through the backend
// abstraction so the whole package is testable against a simulation screen.
package screen

import "github.com/halvard/screenstack/pkg/ui/terminal"

// View is the pluggable behavior hosted inside a Buffer. Implementations
// render through the Buffer they are given and consume routed keystrokes.
type View interface {
	// Name is the short mode name shown in the buffer's status line.
	Name() string

	// Status is the trailing status text shown after the title.
	Status() string

	// Draw repaints the view's content area through the buffer.
	Draw(b *Buffer)

	// Resize informs the view of its new content area (rows excludes the
	// buffer's own status row).
	Resize(rows, cols int)

	// Focus is called when the buffer gains input focus.
	Focus()

	// Blur is called when the buffer loses input focus.
	Blur()

	// HandleKey consumes one routed keystroke. Returns true if consumed.
	HandleKey(k terminal.KeyEvent) bool

	// Cleanup releases view resources. Called exactly once, on kill.
	Cleanup()

	// Killable reports whether the buffer may be killed right now.
	Killable() bool
}

// ModalView is a View that can host a blocking modal loop. The loop feeds it
// keystrokes until Done reports true (or the user cancels), then Value is
// returned to the caller.
type ModalView interface {
	View

	// Done reports whether the modal interaction has completed.
	Done() bool

	// Value is the modal's result. Consulted once the loop exits.
	Value() any
}

// AlwaysPresent marks view types that a kill-all sweep skips instead of
// treating as batch-aborting. The log tail view is the canonical case: it is
// never killable but must not block killing everything else.
type AlwaysPresent interface {
	AlwaysPresent()
}
