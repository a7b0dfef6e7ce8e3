package screen

import (
	"fmt"

	"github.com/halvard/screenstack/pkg/ui/terminal"
)

// completionsTitle is the buffer title used for the transient candidate
// list. Collision suffixing keeps it unique if a caller ever claims it.
const completionsTitle = "<completions>"

// maxCompletionRows bounds the candidate list's on-screen height.
const maxCompletionRows = 10

// completionsView shows prompt completion candidates. It is spawned and
// killed by the prompt session; it never takes input of its own.
type completionsView struct {
	labels   []string
	selected int
	rows     int
	cols     int
}

func newCompletionsView(labels []string) *completionsView {
	return &completionsView{labels: labels, selected: -1}
}

func (c *completionsView) Name() string { return "completions" }

func (c *completionsView) Status() string {
	return fmt.Sprintf("%d candidates", len(c.labels))
}

func (c *completionsView) Draw(b *Buffer) {
	start := c.windowStart()
	for row := 0; row < b.ContentHeight(); row++ {
		i := start + row
		if i >= len(c.labels) {
			b.Write(row, 0, "", WriteOpts{})
			continue
		}
		b.Write(row, 0, " "+c.labels[i], WriteOpts{Highlight: i == c.selected})
	}
}

func (c *completionsView) Resize(rows, cols int) {
	c.rows = rows
	c.cols = cols
}

func (c *completionsView) Focus()                           {}
func (c *completionsView) Blur()                            {}
func (c *completionsView) HandleKey(terminal.KeyEvent) bool { return false }
func (c *completionsView) Cleanup()                         {}
func (c *completionsView) Killable() bool                   { return true }

// Roll advances the selection, wrapping past the end, and returns the new
// selected index.
func (c *completionsView) Roll() int {
	if len(c.labels) == 0 {
		return -1
	}
	c.selected = (c.selected + 1) % len(c.labels)
	return c.selected
}

// windowStart scrolls the visible window so the selection stays on screen.
func (c *completionsView) windowStart() int {
	if c.rows <= 0 || c.selected < c.rows {
		return 0
	}
	return c.selected - c.rows + 1
}
