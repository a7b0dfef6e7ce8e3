package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/screenstack/pkg/ui/backend"
	"github.com/halvard/screenstack/pkg/ui/terminal"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	be := New(20, 6)
	require.NoError(t, be.Init())
	be.Resize(20, 6)
	t.Cleanup(be.Fini)

	// SetSize posts resize events; drain them so tests see only what they
	// inject.
	for be.PollEvent(20*time.Millisecond) != nil {
	}
	return be
}

func TestCaptureAndFindText(t *testing.T) {
	be := newTestBackend(t)

	style := backend.DefaultStyle()
	for i, r := range "hello" {
		be.SetContent(i+2, 3, r, nil, style)
	}
	be.Show()

	x, y := be.FindText("hello")
	assert.Equal(t, 2, x)
	assert.Equal(t, 3, y)
	assert.True(t, be.ContainsText("hello"))
	assert.False(t, be.ContainsText("goodbye"))
	assert.Equal(t, "  hello             ", be.CaptureRow(3))
}

func TestCaptureCellStyle(t *testing.T) {
	be := newTestBackend(t)

	be.SetContent(0, 0, 'X', nil, backend.DefaultStyle().Bold(true).Foreground(backend.ColorRed))
	be.Show()

	r, style := be.CaptureCell(0, 0)
	assert.Equal(t, 'X', r)
	fg, _, attrs := style.Decompose()
	assert.Equal(t, backend.ColorRed, fg)
	assert.NotZero(t, attrs&backend.AttrBold)
}

func TestInjectKeyRoundTrip(t *testing.T) {
	be := newTestBackend(t)

	be.InjectKeyRune('q')
	ev := be.PollEvent(time.Second)
	k, ok := ev.(terminal.KeyEvent)
	require.True(t, ok)
	assert.Equal(t, terminal.KeyRune, k.Key)
	assert.Equal(t, 'q', k.Rune)
}

func TestInjectKeyString(t *testing.T) {
	be := newTestBackend(t)

	be.InjectKeyString("ab")
	for _, want := range []rune{'a', 'b'} {
		ev := be.PollEvent(time.Second)
		k, ok := ev.(terminal.KeyEvent)
		require.True(t, ok)
		assert.Equal(t, want, k.Rune)
	}
}

func TestInjectSpecialKeys(t *testing.T) {
	be := newTestBackend(t)

	be.InjectKey(terminal.KeyEnter, 0)
	be.InjectKey(terminal.KeyEscape, 0)
	be.InjectKey(terminal.KeyCtrlG, 0)

	for _, want := range []terminal.Key{terminal.KeyEnter, terminal.KeyEscape, terminal.KeyCtrlG} {
		ev := be.PollEvent(time.Second)
		k, ok := ev.(terminal.KeyEvent)
		require.True(t, ok)
		assert.Equal(t, want, k.Key)
	}
}

func TestPollEventTimesOut(t *testing.T) {
	be := newTestBackend(t)

	start := time.Now()
	ev := be.PollEvent(10 * time.Millisecond)
	assert.Nil(t, ev, "nil means no event, never an error")
	assert.Less(t, time.Since(start), time.Second)
}

func TestInjectResize(t *testing.T) {
	be := newTestBackend(t)

	be.InjectResize(40, 12)
	// The simulation screen may also post its own resize; take the last one
	// matching ours.
	var got terminal.ResizeEvent
	for {
		ev := be.PollEvent(200 * time.Millisecond)
		if ev == nil {
			break
		}
		if r, ok := ev.(terminal.ResizeEvent); ok {
			got = r
		}
	}
	assert.Equal(t, 40, got.Width)
	assert.Equal(t, 12, got.Height)

	w, h := be.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 12, h)
}

func TestCancelKeyDetection(t *testing.T) {
	assert.True(t, terminal.KeyEvent{Key: terminal.KeyEscape}.IsCancel())
	assert.True(t, terminal.KeyEvent{Key: terminal.KeyCtrlG}.IsCancel())
	assert.False(t, terminal.KeyEvent{Key: terminal.KeyEnter}.IsCancel())
	assert.False(t, terminal.KeyEvent{Key: terminal.KeyRune, Rune: 'g'}.IsCancel())
}
