// Package views provides concrete View implementations for the buffer
// manager: a line-oriented pager, a log tail, and a directory browser modal.
package views

import (
	"fmt"
	"strings"

	"github.com/halvard/screenstack/pkg/screen"
	"github.com/halvard/screenstack/pkg/ui/terminal"
)

// TextView is a scrollable read-only pager over a block of text.
type TextView struct {
	status  string
	lines   []string
	offset  int
	rows    int
	cols    int
	focused bool
}

// NewTextView creates a pager over content, split on newlines.
func NewTextView(content string) *TextView {
	return &TextView{lines: strings.Split(content, "\n")}
}

func (v *TextView) Name() string { return "text" }

func (v *TextView) Status() string {
	if len(v.lines) == 0 {
		return "empty"
	}
	pct := 100
	if max := v.maxOffset(); max > 0 {
		pct = v.offset * 100 / max
	}
	return fmt.Sprintf("%d lines --%d%%--", len(v.lines), pct)
}

func (v *TextView) Draw(b *screen.Buffer) {
	for row := 0; row < b.ContentHeight(); row++ {
		i := v.offset + row
		if i >= len(v.lines) {
			b.Write(row, 0, "", screen.WriteOpts{})
			continue
		}
		b.Write(row, 0, v.lines[i], screen.WriteOpts{})
	}
}

func (v *TextView) Resize(rows, cols int) {
	v.rows = rows
	v.cols = cols
	v.clamp()
}

func (v *TextView) Focus() { v.focused = true }
func (v *TextView) Blur()  { v.focused = false }

func (v *TextView) HandleKey(k terminal.KeyEvent) bool {
	switch {
	case k.Key == terminal.KeyUp || k.Rune == 'k':
		v.offset--
	case k.Key == terminal.KeyDown || k.Rune == 'j':
		v.offset++
	case k.Key == terminal.KeyPageUp:
		v.offset -= v.rows
	case k.Key == terminal.KeyPageDown || k.Rune == ' ':
		v.offset += v.rows
	case k.Key == terminal.KeyHome || k.Rune == 'g':
		v.offset = 0
	case k.Key == terminal.KeyEnd || k.Rune == 'G':
		v.offset = v.maxOffset()
	default:
		return false
	}
	v.clamp()
	return true
}

func (v *TextView) Cleanup()       {}
func (v *TextView) Killable() bool { return true }

func (v *TextView) maxOffset() int {
	max := len(v.lines) - v.rows
	if max < 0 {
		max = 0
	}
	return max
}

func (v *TextView) clamp() {
	if v.offset > v.maxOffset() {
		v.offset = v.maxOffset()
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

var _ screen.View = (*TextView)(nil)
