package views

import (
	"fmt"

	"github.com/halvard/screenstack/pkg/logging"
	"github.com/halvard/screenstack/pkg/screen"
	"github.com/halvard/screenstack/pkg/ui/terminal"
)

// LogView tails the session log on screen. It is the designated
// always-present view: never killable, and skipped by kill-all sweeps
// instead of aborting them.
type LogView struct {
	log  *logging.Logger
	rows int
	cols int
}

// NewLogView creates a log tail over the given logger.
func NewLogView(log *logging.Logger) *LogView {
	return &LogView{log: log}
}

func (v *LogView) Name() string { return "log" }

func (v *LogView) Status() string {
	return fmt.Sprintf("session %s", v.log.SessionID())
}

func (v *LogView) Draw(b *screen.Buffer) {
	tail := v.log.Tail(b.ContentHeight())
	for row := 0; row < b.ContentHeight(); row++ {
		if row >= len(tail) {
			b.Write(row, 0, "", screen.WriteOpts{})
			continue
		}
		b.Write(row, 0, tail[row].Line(), screen.WriteOpts{})
	}
}

func (v *LogView) Resize(rows, cols int) {
	v.rows = rows
	v.cols = cols
}

func (v *LogView) Focus()                           {}
func (v *LogView) Blur()                            {}
func (v *LogView) HandleKey(terminal.KeyEvent) bool { return false }
func (v *LogView) Cleanup()                         {}
func (v *LogView) Killable() bool                   { return false }

// AlwaysPresent marks the log tail as exempt from kill-all sweeps.
func (v *LogView) AlwaysPresent() {}

var (
	_ screen.View          = (*LogView)(nil)
	_ screen.AlwaysPresent = (*LogView)(nil)
)
