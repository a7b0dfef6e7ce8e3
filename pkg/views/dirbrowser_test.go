package views

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/screenstack/pkg/ui/terminal"
)

func browserDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	for _, name := range []string{"alpha.txt", "beta.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	return dir
}

func enter() terminal.KeyEvent { return terminal.KeyEvent{Key: terminal.KeyEnter} }
func down() terminal.KeyEvent  { return terminal.KeyEvent{Key: terminal.KeyDown} }

func TestDirBrowserListsDirectoriesFirst(t *testing.T) {
	dir := browserDir(t)
	b := NewDirBrowser(dir)

	// Cursor starts on "sub/"; Enter descends rather than completing.
	b.HandleKey(enter())
	assert.False(t, b.Done())
	assert.Contains(t, b.Status(), filepath.Join(dir, "sub"))
}

func TestDirBrowserPickSingleFile(t *testing.T) {
	dir := browserDir(t)
	b := NewDirBrowser(dir)

	b.HandleKey(down()) // alpha.txt
	b.HandleKey(enter())

	require.True(t, b.Done())
	assert.Equal(t, []string{filepath.Join(dir, "alpha.txt")}, b.Value())
}

func TestDirBrowserMultiSelect(t *testing.T) {
	dir := browserDir(t)
	b := NewDirBrowser(dir)

	b.HandleKey(down())
	b.HandleKey(rkey(' ')) // select alpha.txt
	b.HandleKey(down())
	b.HandleKey(rkey(' ')) // select beta.txt
	b.HandleKey(enter())

	require.True(t, b.Done())
	assert.Equal(t, []string{
		filepath.Join(dir, "alpha.txt"),
		filepath.Join(dir, "beta.txt"),
	}, b.Value())
}

func TestDirBrowserToggleOff(t *testing.T) {
	dir := browserDir(t)
	b := NewDirBrowser(dir)

	b.HandleKey(down())
	b.HandleKey(rkey(' '))
	b.HandleKey(rkey(' ')) // deselect again
	assert.Contains(t, b.Status(), "(0 selected)")
}

func TestDirBrowserAscend(t *testing.T) {
	dir := browserDir(t)
	b := NewDirBrowser(filepath.Join(dir, "sub"))

	b.HandleKey(rkey('h'))
	assert.Contains(t, b.Status(), dir)

	root := NewDirBrowser("/")
	root.HandleKey(rkey('h'))
	assert.Contains(t, root.Status(), "/", "the root has no parent")
}

func TestDirBrowserValueBeforeDone(t *testing.T) {
	b := NewDirBrowser(browserDir(t))
	assert.False(t, b.Done())

	paths, ok := b.Value().([]string)
	assert.True(t, ok)
	assert.Nil(t, paths, "cancelled browsing yields an empty selection")
}
