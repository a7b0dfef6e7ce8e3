package screen

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/halvard/screenstack/pkg/ui/backend"
	"github.com/halvard/screenstack/pkg/ui/theme"
)

// Buffer pairs a View with on-screen geometry and presentation state. The
// bottom row of the buffer is its status line; the content area the view
// draws into is height-1 rows.
type Buffer struct {
	view  View
	title string

	x, y          int
	width, height int

	dirty      bool
	focused    bool
	forceToTop bool

	parent backend.RenderTarget
	target *backend.Region
	theme  *theme.Theme
}

func newBuffer(view View, title string, parent backend.RenderTarget, th *theme.Theme, width, height int) *Buffer {
	b := &Buffer{
		view:   view,
		title:  title,
		width:  width,
		height: height,
		dirty:  true,
		parent: parent,
		theme:  th,
	}
	b.target = backend.NewRegion(parent, b.x, b.y, width, height)
	view.Resize(b.ContentHeight(), width)
	return b
}

// Title returns the buffer's realized (collision-resolved) title.
func (b *Buffer) Title() string { return b.title }

// View returns the hosted view.
func (b *Buffer) View() View { return b.view }

// Size returns the buffer's width and height including the status row.
func (b *Buffer) Size() (width, height int) { return b.width, b.height }

// ContentHeight returns the rows available to the view (status row excluded).
func (b *Buffer) ContentHeight() int {
	if b.height < 1 {
		return 0
	}
	return b.height - 1
}

// Dirty reports whether a full draw is pending.
func (b *Buffer) Dirty() bool { return b.dirty }

// MarkDirty schedules a full draw on the next redraw.
func (b *Buffer) MarkDirty() { b.dirty = true }

// Focused reports whether this buffer holds input focus.
func (b *Buffer) Focused() bool { return b.focused }

// ForceToTop reports whether the buffer is pinned above normal stacking.
func (b *Buffer) ForceToTop() bool { return b.forceToTop }

// SetForceToTop pins or unpins the buffer.
func (b *Buffer) SetForceToTop(on bool) { b.forceToTop = on }

// Resize updates geometry. A no-op when nothing changed; otherwise the
// buffer is marked dirty and the view's resize hook runs with the new
// content area.
func (b *Buffer) Resize(rows, cols int) {
	if rows == b.height && cols == b.width {
		return
	}
	b.height = rows
	b.width = cols
	b.target = backend.NewRegion(b.parent, b.x, b.y, cols, rows)
	b.dirty = true
	b.view.Resize(b.ContentHeight(), cols)
}

// Redraw performs a full draw if the buffer is dirty; the status line is
// repainted and the draw committed either way.
func (b *Buffer) Redraw() {
	if b.dirty {
		b.Draw()
		return
	}
	b.drawStatus()
	b.commit()
}

// Draw unconditionally repaints content and status line and commits.
func (b *Buffer) Draw() {
	b.view.Draw(b)
	b.drawStatus()
	b.commit()
}

// commit clears the dirty flag. Output stays buffered in the backend until
// the compositor flushes it.
func (b *Buffer) commit() {
	b.dirty = false
}

// Focus marks the buffer focused and forwards to the view.
func (b *Buffer) Focus() {
	b.focused = true
	b.dirty = true
	b.view.Focus()
}

// Blur removes focus and forwards to the view.
func (b *Buffer) Blur() {
	b.focused = false
	b.dirty = true
	b.view.Blur()
}

// WriteOpts adjust a single Write call. The zero value paints with the theme
// text style and pads the rest of the row with spaces.
type WriteOpts struct {
	// Style overrides the theme text style when non-nil.
	Style *backend.Style

	// Highlight paints in reverse video.
	Highlight bool

	// NoFill leaves trailing cells untouched instead of space-padding.
	NoFill bool
}

// Write paints one line of text at (row, col) of the content area.
// Writes starting outside the buffer are dropped; text is truncated to the
// available width. Stale cells after the text are erased with spaces unless
// opts.NoFill is set.
func (b *Buffer) Write(row, col int, text string, opts WriteOpts) {
	if row < 0 || row >= b.ContentHeight() || col < 0 || col >= b.width {
		return
	}

	style := b.theme.Text
	if opts.Style != nil {
		style = *opts.Style
	}
	if opts.Highlight {
		style = style.Reverse(true)
	}

	avail := b.width - col
	text = runewidth.Truncate(text, avail, "")

	x := col
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		b.target.SetContent(x, row, r, nil, style)
		// Wide runes own the following cell too.
		for i := 1; i < w; i++ {
			b.target.SetContent(x+i, row, ' ', nil, style)
		}
		x += w
	}

	if !opts.NoFill {
		for ; x < b.width; x++ {
			b.target.SetContent(x, row, ' ', nil, style)
		}
	}
}

// StatusText returns the status row content for this buffer.
func (b *Buffer) StatusText() string {
	return fmt.Sprintf(" [%s] %s   %s", b.view.Name(), b.title, b.view.Status())
}

// drawStatus paints the status row at the bottom of the buffer.
func (b *Buffer) drawStatus() {
	if b.height < 1 {
		return
	}
	style := b.theme.StatusLine
	if b.focused {
		style = b.theme.StatusLineFocused
	}

	row := b.height - 1
	text := runewidth.Truncate(b.StatusText(), b.width, "")
	x := 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		b.target.SetContent(x, row, r, nil, style)
		for i := 1; i < w; i++ {
			b.target.SetContent(x+i, row, ' ', nil, style)
		}
		x += w
	}
	for ; x < b.width; x++ {
		b.target.SetContent(x, row, ' ', nil, style)
	}
}
