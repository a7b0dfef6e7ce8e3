package screen

import (
	"github.com/halvard/screenstack/pkg/logging"
	"github.com/halvard/screenstack/pkg/ui/terminal"
)

// SpawnModal spawns a buffer for view and runs a nested blocking input loop
// until the view reports completion or the user cancels. The buffer is
// killed on exit and the view's result value returned. This call is
// re-entrant: it runs its own loop inside whatever loop invoked it.
func (m *Manager) SpawnModal(title string, view ModalView, opts SpawnOpts) (any, error) {
	b, err := m.Spawn(title, view, opts)
	if err != nil {
		return nil, err
	}

	m.DrawScreen(DrawOpts{Sync: true})

loop:
	for !view.Done() {
		ev := m.PollEvent()
		if ev == nil {
			continue
		}
		switch e := ev.(type) {
		case terminal.ResizeEvent:
			m.mu.Lock()
			m.dirty = true
			m.mu.Unlock()
			m.DrawScreen(DrawOpts{Sync: true})

		case terminal.KeyEvent:
			if e.IsCancel() {
				break loop
			}
			view.HandleKey(e)
			b.MarkDirty()
			m.DrawScreen(DrawOpts{})
		}
	}

	if err := m.KillBuffer(b); err != nil {
		return nil, err
	}
	m.log.Debug(logging.CategoryBuffer, "modal finished", map[string]any{"title": b.Title()})
	return view.Value(), nil
}
