// Package tcell provides a Backend implementation using tcell.
package tcell

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/halvard/screenstack/pkg/ui/backend"
	"github.com/halvard/screenstack/pkg/ui/terminal"
)

// Backend implements backend.Backend on a tcell.Screen. Events are pumped
// into a channel so PollEvent can time out instead of blocking indefinitely.
type Backend struct {
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}
}

// New creates a backend on a fresh tcell screen.
func New() (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Backend{screen: screen}, nil
}

// NewWithScreen creates a backend on an existing tcell screen. The simulation
// backend uses this.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

// Init initializes the screen and starts the event pump.
func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return err
	}
	b.events = make(chan tcell.Event, 128)
	b.quit = make(chan struct{})
	go b.screen.ChannelEvents(b.events, b.quit)
	return nil
}

// Fini stops the event pump and restores the terminal.
func (b *Backend) Fini() {
	if b.quit != nil {
		close(b.quit)
		b.quit = nil
	}
	b.screen.Fini()
}

// Size returns the terminal dimensions.
func (b *Backend) Size() (width, height int) {
	return b.screen.Size()
}

// SetContent sets a cell at position (x, y).
func (b *Backend) SetContent(x, y int, mainc rune, comb []rune, style backend.Style) {
	b.screen.SetContent(x, y, mainc, comb, convertStyle(style))
}

// Show synchronizes the buffer to the terminal.
func (b *Backend) Show() {
	b.screen.Show()
}

// Clear clears the screen.
func (b *Backend) Clear() {
	b.screen.Clear()
}

// HideCursor hides the cursor.
func (b *Backend) HideCursor() {
	b.screen.HideCursor()
}

// ShowCursor is a no-op for tcell; the cursor becomes visible when its
// position is set.
func (b *Backend) ShowCursor() {}

// SetCursorPos sets the cursor position and makes it visible.
func (b *Backend) SetCursorPos(x, y int) {
	b.screen.ShowCursor(x, y)
}

// PollEvent waits up to timeout for the next event it can represent.
// Returns nil on timeout or shutdown.
func (b *Backend) PollEvent(timeout time.Duration) terminal.Event {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case ev, ok := <-b.events:
			if !ok {
				return nil
			}
			if converted := convertEvent(ev); converted != nil {
				return converted
			}
			// Unrepresentable event (mouse, paste); keep waiting.
		case <-deadline.C:
			return nil
		}
	}
}

// PostEvent injects an event into the queue.
func (b *Backend) PostEvent(ev terminal.Event) error {
	tev := reverseConvertEvent(ev)
	if tev == nil {
		return nil
	}
	return b.screen.PostEvent(tev)
}

// Suspend releases the terminal for an external process.
func (b *Backend) Suspend() error {
	return b.screen.Suspend()
}

// Resume reclaims the terminal after Suspend.
func (b *Backend) Resume() error {
	return b.screen.Resume()
}

// Beep emits an audible bell.
func (b *Backend) Beep() {
	b.screen.Beep()
}

// Sync forces a full redraw.
func (b *Backend) Sync() {
	b.screen.Sync()
}

// convertStyle converts backend.Style to tcell.Style.
func convertStyle(s backend.Style) tcell.Style {
	fg, bg, attrs := s.Decompose()
	style := tcell.StyleDefault.
		Foreground(convertColor(fg)).
		Background(convertColor(bg))

	if attrs&backend.AttrBold != 0 {
		style = style.Bold(true)
	}
	if attrs&backend.AttrDim != 0 {
		style = style.Dim(true)
	}
	if attrs&backend.AttrItalic != 0 {
		style = style.Italic(true)
	}
	if attrs&backend.AttrUnderline != 0 {
		style = style.Underline(true)
	}
	if attrs&backend.AttrReverse != 0 {
		style = style.Reverse(true)
	}
	return style
}

// convertColor converts backend.Color to tcell.Color.
func convertColor(c backend.Color) tcell.Color {
	if c == backend.ColorDefault {
		return tcell.ColorDefault
	}
	if c.IsRGB() {
		r, g, b := c.RGB()
		return tcell.NewRGBColor(int32(r), int32(g), int32(b))
	}
	return tcell.PaletteColor(int(c))
}

// convertEvent converts a tcell event. Returns nil for event types the
// buffer manager does not consume.
func convertEvent(ev tcell.Event) terminal.Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return terminal.KeyEvent{
			Key:   convertKey(e.Key()),
			Rune:  e.Rune(),
			Alt:   e.Modifiers()&tcell.ModAlt != 0,
			Ctrl:  e.Modifiers()&tcell.ModCtrl != 0,
			Shift: e.Modifiers()&tcell.ModShift != 0,
		}
	case *tcell.EventResize:
		w, h := e.Size()
		return terminal.ResizeEvent{Width: w, Height: h}
	default:
		return nil
	}
}

var keyFromTcell = map[tcell.Key]terminal.Key{
	tcell.KeyRune:       terminal.KeyRune,
	tcell.KeyEnter:      terminal.KeyEnter,
	tcell.KeyBackspace:  terminal.KeyBackspace,
	tcell.KeyBackspace2: terminal.KeyBackspace,
	tcell.KeyTab:        terminal.KeyTab,
	tcell.KeyBacktab:    terminal.KeyBacktab,
	tcell.KeyEscape:     terminal.KeyEscape,
	tcell.KeyUp:         terminal.KeyUp,
	tcell.KeyDown:       terminal.KeyDown,
	tcell.KeyLeft:       terminal.KeyLeft,
	tcell.KeyRight:      terminal.KeyRight,
	tcell.KeyHome:       terminal.KeyHome,
	tcell.KeyEnd:        terminal.KeyEnd,
	tcell.KeyPgUp:       terminal.KeyPageUp,
	tcell.KeyPgDn:       terminal.KeyPageDown,
	tcell.KeyDelete:     terminal.KeyDelete,
	tcell.KeyInsert:     terminal.KeyInsert,
	tcell.KeyCtrlA:      terminal.KeyCtrlA,
	tcell.KeyCtrlC:      terminal.KeyCtrlC,
	tcell.KeyCtrlE:      terminal.KeyCtrlE,
	tcell.KeyCtrlG:      terminal.KeyCtrlG,
	tcell.KeyCtrlK:      terminal.KeyCtrlK,
	tcell.KeyCtrlL:      terminal.KeyCtrlL,
	tcell.KeyCtrlU:      terminal.KeyCtrlU,
	tcell.KeyCtrlW:      terminal.KeyCtrlW,
}

var keyToTcell = map[terminal.Key]tcell.Key{
	terminal.KeyRune:      tcell.KeyRune,
	terminal.KeyEnter:     tcell.KeyEnter,
	terminal.KeyBackspace: tcell.KeyBackspace2,
	terminal.KeyTab:       tcell.KeyTab,
	terminal.KeyBacktab:   tcell.KeyBacktab,
	terminal.KeyEscape:    tcell.KeyEscape,
	terminal.KeyUp:        tcell.KeyUp,
	terminal.KeyDown:      tcell.KeyDown,
	terminal.KeyLeft:      tcell.KeyLeft,
	terminal.KeyRight:     tcell.KeyRight,
	terminal.KeyHome:      tcell.KeyHome,
	terminal.KeyEnd:       tcell.KeyEnd,
	terminal.KeyPageUp:    tcell.KeyPgUp,
	terminal.KeyPageDown:  tcell.KeyPgDn,
	terminal.KeyDelete:    tcell.KeyDelete,
	terminal.KeyInsert:    tcell.KeyInsert,
	terminal.KeyCtrlA:     tcell.KeyCtrlA,
	terminal.KeyCtrlC:     tcell.KeyCtrlC,
	terminal.KeyCtrlE:     tcell.KeyCtrlE,
	terminal.KeyCtrlG:     tcell.KeyCtrlG,
	terminal.KeyCtrlK:     tcell.KeyCtrlK,
	terminal.KeyCtrlL:     tcell.KeyCtrlL,
	terminal.KeyCtrlU:     tcell.KeyCtrlU,
	terminal.KeyCtrlW:     tcell.KeyCtrlW,
}

func convertKey(k tcell.Key) terminal.Key {
	if mapped, ok := keyFromTcell[k]; ok {
		return mapped
	}
	return terminal.KeyNone
}

// reverseConvertEvent converts terminal.Event to tcell.Event for PostEvent.
func reverseConvertEvent(ev terminal.Event) tcell.Event {
	switch e := ev.(type) {
	case terminal.ResizeEvent:
		return tcell.NewEventResize(e.Width, e.Height)
	case terminal.KeyEvent:
		key, ok := keyToTcell[e.Key]
		if !ok {
			return nil
		}
		var mods tcell.ModMask
		if e.Alt {
			mods |= tcell.ModAlt
		}
		if e.Ctrl {
			mods |= tcell.ModCtrl
		}
		if e.Shift {
			mods |= tcell.ModShift
		}
		return tcell.NewEventKey(key, e.Rune, mods)
	default:
		return nil
	}
}

// Ensure Backend implements backend.Backend
var _ backend.Backend = (*Backend)(nil)
