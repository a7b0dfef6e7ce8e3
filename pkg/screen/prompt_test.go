package screen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/screenstack/pkg/completion"
	"github.com/halvard/screenstack/pkg/errors"
	"github.com/halvard/screenstack/pkg/ui/terminal"
)

func TestAskReturnsTypedAnswer(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	be.InjectKeyString("hello")
	be.InjectKey(terminal.KeyEnter, 0)

	ans, ok, err := m.Ask("test", "Say: ", "", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", ans)
	assert.False(t, m.Minibuffer().PromptActive(), "prompt line released on exit")
}

func TestAskDefaultAnswer(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	be.InjectKey(terminal.KeyEnter, 0)

	ans, ok, err := m.Ask("test", "Say: ", "preset", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "preset", ans)
}

func TestAskCancelled(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	for _, cancel := range []terminal.Key{terminal.KeyEscape, terminal.KeyCtrlG} {
		be.InjectKeyString("junk")
		be.InjectKey(cancel, 0)

		ans, ok, err := m.Ask("test", "Say: ", "", nil)
		require.NoError(t, err)
		assert.False(t, ok, "cancel is expected absence, not an error")
		assert.Empty(t, ans)
	}
}

func TestAskRejectsNestedSession(t *testing.T) {
	m, _ := newTestManager(t)

	m.mu.Lock()
	m.asking = true
	m.mu.Unlock()

	_, _, err := m.Ask("test", "Say: ", "", nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePromptActive, errors.CodeOf(err))
}

func TestAskShowsAndTearsDownCompletions(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	comp := func(text string) []completion.Candidate {
		return []completion.Candidate{
			{Value: "aa", Label: "aa"},
			{Value: "ab", Label: "ab"},
		}
	}

	// First Tab pops the candidate list, second Tab cycles into the field.
	be.InjectKeyRune('a')
	be.InjectKey(terminal.KeyTab, 0)
	be.InjectKey(terminal.KeyTab, 0)
	be.InjectKey(terminal.KeyEnter, 0)

	ans, ok, err := m.Ask("test", "File: ", "", comp)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "aa", ans)

	_, found := m.Find(completionsTitle)
	assert.False(t, found, "completions buffer is killed on exit")
	assert.Equal(t, 1, m.BufferCount())
}

func TestAskRepeatedTabAdvancesSelection(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	comp := func(text string) []completion.Candidate {
		return []completion.Candidate{
			{Value: "aa", Label: "aa"},
			{Value: "ab", Label: "ab"},
		}
	}

	// First Tab pops the list; each further Tab advances the selection,
	// even though the rolled candidate was written back into the field.
	be.InjectKeyRune('a')
	be.InjectKey(terminal.KeyTab, 0)
	be.InjectKey(terminal.KeyTab, 0)
	be.InjectKey(terminal.KeyTab, 0)
	be.InjectKey(terminal.KeyEnter, 0)

	ans, ok, err := m.Ask("test", "File: ", "", comp)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ab", ans)
}

func TestAskPaintsPromptLine(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	be.InjectKeyString("abc")
	be.InjectKey(terminal.KeyEnter, 0)

	_, _, err := m.Ask("test", "Query: ", "", nil)
	require.NoError(t, err)

	// The prompt already tore down; the session must have painted at some
	// point, which we can only check indirectly through the field state.
	assert.Equal(t, "abc", m.field("test").Text())
	_ = be
}

func TestAskGetch(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	be.InjectKeyRune('x')
	r, ok := m.AskGetch("Press any key: ", nil)
	assert.True(t, ok)
	assert.Equal(t, 'x', r)
}

func TestAskGetchIgnoresUnaccepted(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	be.InjectKeyRune('z')
	be.InjectKeyRune('q')
	r, ok := m.AskGetch("q to confirm: ", []rune{'q'})
	assert.True(t, ok)
	assert.Equal(t, 'q', r)
}

func TestAskGetchCancel(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	be.InjectKey(terminal.KeyCtrlG, 0)
	_, ok := m.AskGetch("Press: ", nil)
	assert.False(t, ok)

	_, has := m.Minibuffer().FlashText()
	assert.False(t, has, "the flashed question is erased on exit")
}

func TestAskYesNo(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	be.InjectKeyRune('z') // ignored
	be.InjectKeyRune('y')
	yes, ok := m.AskYesNo("Sure? ")
	assert.True(t, ok)
	assert.True(t, yes)

	be.InjectKeyRune('N')
	yes, ok = m.AskYesNo("Sure? ")
	assert.True(t, ok)
	assert.False(t, yes)

	be.InjectKey(terminal.KeyEscape, 0)
	_, ok = m.AskYesNo("Sure? ")
	assert.False(t, ok)
}

func TestAskForFilenamesPlainFile(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	path := filepath.Join(t.TempDir(), "mail.mbox")
	be.InjectKey(terminal.KeyEnter, 0)

	paths, err := m.AskForFilenames("file", "Save to: ", path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)
}

func TestAskForFilenamesCancelled(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	be.InjectKey(terminal.KeyEscape, 0)
	paths, err := m.AskForFilenames("file", "Save to: ", "whatever")
	require.NoError(t, err)
	assert.Nil(t, paths)
}

func TestAskForFilenamesDirectoryOpensBrowser(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	dir := t.TempDir()
	want := []string{filepath.Join(dir, "a"), filepath.Join(dir, "b")}
	var browsed string
	m.SetDirBrowser(func(d string) ModalView {
		browsed = d
		return &doneModalView{fakeView: *newFakeView("browse"), value: want}
	})

	be.InjectKey(terminal.KeyEnter, 0)
	paths, err := m.AskForFilenames("file", "Attach: ", dir)
	require.NoError(t, err)
	assert.Equal(t, want, paths)
	assert.Equal(t, dir, browsed)
}

func TestAskForFilenamesDirectoryWithoutBrowser(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	dir := t.TempDir()
	be.InjectKey(terminal.KeyEnter, 0)
	paths, err := m.AskForFilenames("file", "Attach: ", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, paths)
}

func TestAskForFilenamesEmptyAnswer(t *testing.T) {
	m, be := newTestManager(t)
	m.Spawn("bg", newFakeView("bg"), SpawnOpts{})

	be.InjectKey(terminal.KeyEnter, 0)
	paths, err := m.AskForFilenames("file", "Attach: ", "")
	require.NoError(t, err)
	assert.Nil(t, paths, "no browser installed: an empty answer means nothing selected")
}

func TestFieldIsPerDomain(t *testing.T) {
	m, _ := newTestManager(t)

	a := m.field("search")
	b := m.field("filename")
	assert.NotSame(t, a, b)
	assert.Same(t, a, m.field("search"))
}
