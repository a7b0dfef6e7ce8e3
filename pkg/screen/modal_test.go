package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/screenstack/pkg/ui/terminal"
)

// doneModalView completes immediately with a fixed value.
type doneModalView struct {
	fakeView
	value any
}

func (v *doneModalView) Done() bool { return true }
func (v *doneModalView) Value() any { return v.value }

// pickModalView completes when a rune key arrives, yielding that rune.
type pickModalView struct {
	fakeView
	done   bool
	picked rune
}

func (v *pickModalView) HandleKey(k terminal.KeyEvent) bool {
	if k.Key == terminal.KeyRune {
		v.picked = k.Rune
		v.done = true
	}
	return true
}

func (v *pickModalView) Done() bool { return v.done }
func (v *pickModalView) Value() any { return v.picked }

func TestSpawnModalReturnsValue(t *testing.T) {
	m, be := newTestManager(t)
	bg, _ := m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	view := &pickModalView{fakeView: *newFakeView("pick")}
	be.InjectKeyRune('z')

	result, err := m.SpawnModal("picker", view, SpawnOpts{})
	require.NoError(t, err)
	assert.Equal(t, 'z', result)

	assert.Equal(t, 1, m.BufferCount(), "modal buffer is killed on exit")
	assert.Same(t, bg, m.Top())
	assert.Same(t, bg, m.Focused())
}

func TestSpawnModalCancel(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	view := &pickModalView{fakeView: *newFakeView("pick")}
	be.InjectKey(terminal.KeyEscape, 0)

	result, err := m.SpawnModal("picker", view, SpawnOpts{})
	require.NoError(t, err)
	assert.Equal(t, rune(0), result, "cancelled modal yields the zero value")
	assert.Equal(t, 1, m.BufferCount())
}

func TestSpawnModalImmediatelyDone(t *testing.T) {
	m, _ := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	view := &doneModalView{fakeView: *newFakeView("done"), value: "ready"}
	result, err := m.SpawnModal("done", view, SpawnOpts{})
	require.NoError(t, err)
	assert.Equal(t, "ready", result)
	assert.Equal(t, 1, m.BufferCount())
}

func TestSpawnModalEmptyTitle(t *testing.T) {
	m, _ := newTestManager(t)

	view := &doneModalView{fakeView: *newFakeView("done")}
	_, err := m.SpawnModal("", view, SpawnOpts{})
	require.Error(t, err)
}
