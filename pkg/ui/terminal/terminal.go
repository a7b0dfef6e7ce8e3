// Package terminal provides the input event types shared by every UI layer.
package terminal

// Event represents a terminal input event.
type Event interface {
	eventMarker()
}

// KeyEvent represents a single key press.
type KeyEvent struct {
	Key   Key
	Rune  rune
	Alt   bool
	Ctrl  bool
	Shift bool
}

func (KeyEvent) eventMarker() {}

// IsCancel reports whether this keystroke is one of the recognized
// cancel keys (Ctrl+G or Escape). Every blocking input loop honors it.
func (k KeyEvent) IsCancel() bool {
	return k.Key == KeyEscape || k.Key == KeyCtrlG
}

// ResizeEvent indicates the terminal size changed.
type ResizeEvent struct {
	Width  int
	Height int
}

func (ResizeEvent) eventMarker() {}

// Key represents special keys.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // Regular character
	KeyEnter
	KeyBackspace
	KeyTab
	KeyBacktab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
	KeyInsert
	KeyCtrlA
	KeyCtrlC
	KeyCtrlE
	KeyCtrlG
	KeyCtrlK
	KeyCtrlL
	KeyCtrlU
	KeyCtrlW
)
