package views

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/halvard/screenstack/pkg/screen"
	"github.com/halvard/screenstack/pkg/ui/terminal"
)

// DirBrowser is a modal directory browser. Enter on a directory descends
// into it; space toggles selection; Enter with selections (or on a file)
// completes the modal. The result is the ordered list of selected paths —
// possibly empty when the user cancels.
type DirBrowser struct {
	dir     string
	entries []dirEntry
	cursor  int
	offset  int
	rows    int
	cols    int

	selected map[string]bool
	order    []string

	done   bool
	result []string
}

type dirEntry struct {
	name  string
	isDir bool
}

// NewDirBrowser creates a browser rooted at dir.
func NewDirBrowser(dir string) *DirBrowser {
	b := &DirBrowser{
		dir:      dir,
		selected: make(map[string]bool),
	}
	b.load()
	return b
}

func (d *DirBrowser) Name() string { return "browse" }

func (d *DirBrowser) Status() string {
	return fmt.Sprintf("%s (%d selected)", d.dir, len(d.order))
}

func (d *DirBrowser) Draw(b *screen.Buffer) {
	for row := 0; row < b.ContentHeight(); row++ {
		i := d.offset + row
		if i >= len(d.entries) {
			b.Write(row, 0, "", screen.WriteOpts{})
			continue
		}
		e := d.entries[i]
		mark := "  "
		if d.selected[d.path(e)] {
			mark = "* "
		}
		name := e.name
		if e.isDir {
			name += string(filepath.Separator)
		}
		b.Write(row, 0, mark+name, screen.WriteOpts{Highlight: i == d.cursor})
	}
}

func (d *DirBrowser) Resize(rows, cols int) {
	d.rows = rows
	d.cols = cols
	d.scroll()
}

func (d *DirBrowser) Focus() {}
func (d *DirBrowser) Blur()  {}

func (d *DirBrowser) HandleKey(k terminal.KeyEvent) bool {
	switch {
	case k.Key == terminal.KeyUp || k.Rune == 'k':
		if d.cursor > 0 {
			d.cursor--
		}
	case k.Key == terminal.KeyDown || k.Rune == 'j':
		if d.cursor < len(d.entries)-1 {
			d.cursor++
		}
	case k.Key == terminal.KeyRune && k.Rune == ' ':
		d.toggle()
	case k.Key == terminal.KeyBackspace || k.Rune == 'h':
		d.ascend()
	case k.Key == terminal.KeyEnter:
		d.confirm()
	default:
		return false
	}
	d.scroll()
	return true
}

func (d *DirBrowser) Cleanup()       {}
func (d *DirBrowser) Killable() bool { return true }

// Done reports whether a selection was confirmed.
func (d *DirBrowser) Done() bool { return d.done }

// Value returns the ordered selected paths; nil when nothing was confirmed.
func (d *DirBrowser) Value() any {
	if d.result == nil {
		return []string(nil)
	}
	return d.result
}

func (d *DirBrowser) toggle() {
	if d.cursor >= len(d.entries) {
		return
	}
	path := d.path(d.entries[d.cursor])
	if d.selected[path] {
		delete(d.selected, path)
		for i, p := range d.order {
			if p == path {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
		return
	}
	d.selected[path] = true
	d.order = append(d.order, path)
}

func (d *DirBrowser) confirm() {
	if len(d.order) > 0 {
		d.result = append([]string(nil), d.order...)
		d.done = true
		return
	}
	if d.cursor >= len(d.entries) {
		return
	}
	e := d.entries[d.cursor]
	if e.isDir {
		d.dir = d.path(e)
		d.load()
		return
	}
	d.result = []string{d.path(e)}
	d.done = true
}

func (d *DirBrowser) ascend() {
	parent := filepath.Dir(d.dir)
	if parent == d.dir {
		return
	}
	d.dir = parent
	d.load()
}

func (d *DirBrowser) load() {
	d.entries = nil
	d.cursor = 0
	d.offset = 0

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		d.entries = append(d.entries, dirEntry{name: e.Name(), isDir: e.IsDir()})
	}
	sort.Slice(d.entries, func(i, j int) bool {
		if d.entries[i].isDir != d.entries[j].isDir {
			return d.entries[i].isDir
		}
		return d.entries[i].name < d.entries[j].name
	})
}

func (d *DirBrowser) path(e dirEntry) string {
	return filepath.Join(d.dir, e.name)
}

func (d *DirBrowser) scroll() {
	if d.rows <= 0 {
		return
	}
	if d.cursor < d.offset {
		d.offset = d.cursor
	}
	if d.cursor >= d.offset+d.rows {
		d.offset = d.cursor - d.rows + 1
	}
}

var _ screen.ModalView = (*DirBrowser)(nil)
