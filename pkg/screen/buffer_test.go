package screen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/screenstack/pkg/ui/backend"
	"github.com/halvard/screenstack/pkg/ui/backend/sim"
	"github.com/halvard/screenstack/pkg/ui/theme"
)

func newTestBuffer(t *testing.T, width, height int) (*Buffer, *sim.Backend, *fakeView) {
	t.Helper()
	be := sim.New(width, height)
	require.NoError(t, be.Init())
	be.Resize(width, height)
	t.Cleanup(be.Fini)

	view := newFakeView("test")
	b := newBuffer(view, "test", be, theme.DefaultTheme(), width, height)
	return b, be, view
}

func TestBufferContentHeight(t *testing.T) {
	b, _, _ := newTestBuffer(t, 20, 5)
	assert.Equal(t, 4, b.ContentHeight(), "status row is excluded")

	b.Resize(1, 20)
	assert.Equal(t, 0, b.ContentHeight())
	b.Resize(0, 20)
	assert.Equal(t, 0, b.ContentHeight())
}

func TestBufferWritePadsRow(t *testing.T) {
	b, be, _ := newTestBuffer(t, 10, 4)

	b.Write(0, 0, "stale line", WriteOpts{})
	b.Write(0, 0, "new", WriteOpts{})
	be.Show()

	assert.Equal(t, "new       ", be.CaptureRow(0), "stale cells are space-padded away")
}

func TestBufferWriteNoFill(t *testing.T) {
	b, be, _ := newTestBuffer(t, 10, 4)

	b.Write(0, 0, "abcdef", WriteOpts{})
	b.Write(0, 0, "XY", WriteOpts{NoFill: true})
	be.Show()

	assert.Equal(t, "XYcdef    ", be.CaptureRow(0))
}

func TestBufferWriteTruncates(t *testing.T) {
	b, be, _ := newTestBuffer(t, 6, 4)

	b.Write(0, 0, "much too long", WriteOpts{})
	b.Write(1, 3, "offset", WriteOpts{})
	be.Show()

	assert.Equal(t, "much t", be.CaptureRow(0))
	assert.Equal(t, "   off", be.CaptureRow(1))
}

func TestBufferWriteOutOfBoundsDropped(t *testing.T) {
	b, be, _ := newTestBuffer(t, 10, 4)

	b.Write(-1, 0, "x", WriteOpts{})
	b.Write(3, 0, "x", WriteOpts{}) // row 3 is the status row
	b.Write(0, 10, "x", WriteOpts{})
	b.Write(0, -1, "x", WriteOpts{})
	be.Show()

	assert.Equal(t, strings.Repeat(" ", 10), be.CaptureRow(0))
	assert.Equal(t, strings.Repeat(" ", 10), be.CaptureRow(3))
}

func TestBufferWriteHighlight(t *testing.T) {
	b, be, _ := newTestBuffer(t, 10, 4)

	b.Write(0, 0, "hot", WriteOpts{Highlight: true})
	be.Show()

	_, style := be.CaptureCell(0, 0)
	_, _, attrs := style.Decompose()
	assert.NotZero(t, attrs&backend.AttrReverse)
}

func TestBufferWriteStyleOverride(t *testing.T) {
	b, be, _ := newTestBuffer(t, 10, 4)

	bold := backend.DefaultStyle().Bold(true)
	b.Write(0, 0, "hi", WriteOpts{Style: &bold})
	be.Show()

	_, style := be.CaptureCell(1, 0)
	_, _, attrs := style.Decompose()
	assert.NotZero(t, attrs&backend.AttrBold)
}

func TestBufferWriteWideRunes(t *testing.T) {
	b, be, _ := newTestBuffer(t, 8, 4)

	b.Write(0, 0, "日本", WriteOpts{})
	be.Show()

	r, _ := be.CaptureCell(0, 0)
	assert.Equal(t, '日', r)
	r, _ = be.CaptureCell(2, 0)
	assert.Equal(t, '本', r)
}

func TestBufferStatusText(t *testing.T) {
	b, _, _ := newTestBuffer(t, 40, 6)
	assert.Equal(t, " [test] test   ok", b.StatusText())
}

func TestBufferDrawPaintsStatusRow(t *testing.T) {
	b, be, _ := newTestBuffer(t, 40, 6)

	b.Draw()
	be.Show()

	assert.Contains(t, be.CaptureRow(5), "[test] test   ok")
	assert.False(t, b.Dirty(), "draw commits")
}

func TestBufferResize(t *testing.T) {
	b, _, _ := newTestBuffer(t, 20, 5)
	b.Draw()
	require.False(t, b.Dirty())

	b.Resize(5, 20)
	assert.False(t, b.Dirty(), "unchanged geometry is a no-op")

	b.Resize(8, 30)
	assert.True(t, b.Dirty())
	w, h := b.Size()
	assert.Equal(t, 30, w)
	assert.Equal(t, 8, h)
}

func TestBufferRedrawSkipsContentWhenClean(t *testing.T) {
	b, _, view := newTestBuffer(t, 20, 5)

	b.Draw()
	require.Equal(t, 1, view.draws)

	b.Redraw() // clean: only the status row repaints
	assert.Equal(t, 1, view.draws)

	b.MarkDirty()
	b.Redraw()
	assert.Equal(t, 2, view.draws)
	assert.False(t, b.Dirty())
}

func TestBufferFocusMarksDirty(t *testing.T) {
	b, _, view := newTestBuffer(t, 20, 5)
	b.Draw()

	b.Focus()
	assert.True(t, b.Dirty())
	assert.True(t, b.Focused())
	assert.Equal(t, 1, view.focuses)

	b.Draw()
	b.Blur()
	assert.True(t, b.Dirty())
	assert.False(t, b.Focused())
	assert.Equal(t, 1, view.blurs)
}
