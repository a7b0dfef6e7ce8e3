package screen

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/halvard/screenstack/pkg/completion"
	"github.com/halvard/screenstack/pkg/errors"
	"github.com/halvard/screenstack/pkg/logging"
	"github.com/halvard/screenstack/pkg/ui/backend"
	"github.com/halvard/screenstack/pkg/ui/terminal"
	"github.com/halvard/screenstack/pkg/ui/theme"
)

// DefaultPollInterval is the input poll timeout used when none is configured.
const DefaultPollInterval = 50 * time.Millisecond

// Options configure a Manager. Zero values fall back to defaults.
type Options struct {
	Theme        *theme.Theme
	Logger       *logging.Logger
	PollInterval time.Duration
	Shell        string
	Accounts     completion.AccountSource
}

// Manager owns the buffer stack, input focus, the minibuffer and the
// terminal surface. It is constructed explicitly and passed around; there is
// no process-global instance.
//
// One mutex serializes every compositor pass and every direct terminal
// mutation. The minibuffer carries its own narrower lock since Say/Clear may
// run outside a compositor pass.
type Manager struct {
	backend      backend.Backend
	theme        *theme.Theme
	log          *logging.Logger
	pollInterval time.Duration
	shell        string
	accounts     completion.AccountSource

	mu         sync.Mutex
	buffers    []*Buffer // oldest first; last is topmost and visible
	byTitle    map[string]*Buffer
	focused    *Buffer
	dirty      bool
	shelledOut bool

	minibuf *Minibuffer

	fields map[string]*TextField
	asking bool

	dirBrowser func(dir string) ModalView
}

// NewManager creates a buffer manager on an initialized backend.
func NewManager(b backend.Backend, opts Options) *Manager {
	th := opts.Theme
	if th == nil {
		th = theme.DefaultTheme()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	shell := opts.Shell
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	accounts := opts.Accounts
	if accounts == nil {
		accounts = completion.NewPasswdSource()
	}
	return &Manager{
		backend:      b,
		theme:        th,
		log:          log,
		pollInterval: interval,
		shell:        shell,
		accounts:     accounts,
		byTitle:      make(map[string]*Buffer),
		minibuf:      NewMinibuffer(),
		fields:       make(map[string]*TextField),
	}
}

// Minibuffer returns the minibuffer composer.
func (m *Manager) Minibuffer() *Minibuffer { return m.minibuf }

// Theme returns the active theme.
func (m *Manager) Theme() *theme.Theme { return m.theme }

// SetDirBrowser installs the factory used by AskForFilenames when the answer
// names a directory. Without one, directory answers are returned as-is.
func (m *Manager) SetDirBrowser(factory func(dir string) ModalView) {
	m.dirBrowser = factory
}

// PollEvent waits up to the configured poll interval for the next input
// event. Nil means "no event yet", never an error.
func (m *Manager) PollEvent() terminal.Event {
	return m.backend.PollEvent(m.pollInterval)
}

// Focused returns the buffer holding input focus, or nil.
func (m *Manager) Focused() *Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

// Top returns the topmost (visible) buffer, or nil.
func (m *Manager) Top() *Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.buffers) == 0 {
		return nil
	}
	return m.buffers[len(m.buffers)-1]
}

// Find returns the buffer with the given realized title.
func (m *Manager) Find(title string) (*Buffer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byTitle[title]
	return b, ok
}

// BufferCount returns the stack size.
func (m *Manager) BufferCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffers)
}

// Titles returns the stack's realized titles, bottom (oldest) first.
func (m *Manager) Titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.buffers))
	for i, b := range m.buffers {
		out[i] = b.title
	}
	return out
}

// SpawnOpts adjust Spawn behavior. Zero width/height default to the full
// screen (height leaves one row for the minibuffer).
type SpawnOpts struct {
	Width      int
	Height     int
	Hidden     bool
	ForceToTop bool
}

// Spawn creates a buffer hosting view. Title collisions are resolved by
// appending " <2>", " <3>", ... — the realized title is what the buffer is
// stored and found under. Unless opts.Hidden, the new buffer is raised to
// the front; a hidden buffer still takes focus when nothing has it.
func (m *Manager) Spawn(title string, view View, opts SpawnOpts) (*Buffer, error) {
	if title == "" {
		return nil, errors.New(errors.ErrCodeEmptyTitle, "buffer title must be non-empty")
	}

	m.mu.Lock()
	realized := title
	for num := 2; ; num++ {
		if _, taken := m.byTitle[realized]; !taken {
			break
		}
		realized = fmt.Sprintf("%s <%d>", title, num)
	}

	cols, rows := m.backend.Size()
	width := opts.Width
	if width <= 0 {
		width = cols
	}
	height := opts.Height
	if height <= 0 {
		height = rows - 1
	}

	b := newBuffer(view, realized, m.backend, m.theme, width, height)
	b.forceToTop = opts.ForceToTop
	m.byTitle[realized] = b
	m.buffers = append([]*Buffer{b}, m.buffers...)

	if opts.Hidden {
		if m.focused == nil {
			m.focusLocked(b)
		}
	} else {
		m.raiseToFrontLocked(b)
	}
	m.dirty = true
	m.mu.Unlock()

	m.log.Debug(logging.CategoryBuffer, "spawned buffer",
		map[string]any{"title": realized, "view": view.Name()})
	m.DrawScreen(DrawOpts{})
	return b, nil
}

// SpawnUnlessExists returns the buffer with the given title if present,
// raising it to the front unless opts.Hidden. Otherwise the provider is
// invoked to materialize a view lazily and a new buffer is spawned.
func (m *Manager) SpawnUnlessExists(title string, opts SpawnOpts, provider func() View) (*Buffer, error) {
	m.mu.Lock()
	if b, ok := m.byTitle[title]; ok {
		if !opts.Hidden {
			m.raiseToFrontLocked(b)
		}
		m.mu.Unlock()
		m.DrawScreen(DrawOpts{})
		return b, nil
	}
	m.mu.Unlock()
	return m.Spawn(title, provider(), opts)
}

// RaiseToFront moves a buffer to the top of the stack and gives it focus.
// When the current top is pinned (force_to_top), the buffer lands just below
// it instead, so always-on-top overlays stay on top.
func (m *Manager) RaiseToFront(b *Buffer) error {
	m.mu.Lock()
	if !m.memberLocked(b) {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeBufferNotInStack, "raise of buffer not on stack").
			WithContext("title", b.title)
	}
	m.raiseToFrontLocked(b)
	m.mu.Unlock()
	m.DrawScreen(DrawOpts{})
	return nil
}

// RollBuffers raises the bottom-most buffer to the front, cycling the stack
// forward. The current top's pin is cleared first so programmatic overlays
// don't block manual cycling.
func (m *Manager) RollBuffers() {
	m.mu.Lock()
	if len(m.buffers) == 0 {
		m.mu.Unlock()
		return
	}
	m.buffers[len(m.buffers)-1].forceToTop = false
	m.raiseToFrontLocked(m.buffers[0])
	m.mu.Unlock()
	m.DrawScreen(DrawOpts{})
}

// RollBuffersBackwards raises the second-to-top buffer, cycling the stack
// the other way. No-op with fewer than two buffers.
func (m *Manager) RollBuffersBackwards() {
	m.mu.Lock()
	if len(m.buffers) < 2 {
		m.mu.Unlock()
		return
	}
	m.buffers[len(m.buffers)-1].forceToTop = false
	m.raiseToFrontLocked(m.buffers[len(m.buffers)-2])
	m.mu.Unlock()
	m.DrawScreen(DrawOpts{})
}

// KillBuffer removes a buffer from the stack, invoking the view's cleanup
// hook first. The new top, if any, is raised to front. Killing the last
// buffer leaves the stack empty; preventing that is the caller's job (via
// Killable views), not this core's.
func (m *Manager) KillBuffer(b *Buffer) error {
	m.mu.Lock()
	if !m.memberLocked(b) {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeBufferNotInStack, "kill of buffer not on stack").
			WithContext("title", b.title)
	}

	b.view.Cleanup()
	for i, other := range m.buffers {
		if other == b {
			m.buffers = append(m.buffers[:i], m.buffers[i+1:]...)
			break
		}
	}
	delete(m.byTitle, b.title)
	if m.focused == b {
		m.focused = nil
	}
	if len(m.buffers) > 0 {
		m.raiseToFrontLocked(m.buffers[len(m.buffers)-1])
	}
	m.dirty = true
	m.mu.Unlock()

	m.log.Debug(logging.CategoryBuffer, "killed buffer", map[string]any{"title": b.title})
	m.DrawScreen(DrawOpts{})
	return nil
}

// KillBufferSafely kills a buffer only if its view permits it.
func (m *Manager) KillBufferSafely(b *Buffer) error {
	if !b.view.Killable() {
		return errors.New(errors.ErrCodeNotKillable, "buffer is not killable").
			WithContext("title", b.title)
	}
	return m.KillBuffer(b)
}

// KillAllBuffersSafely kills buffers from the top down, honoring each view's
// killable predicate. The batch aborts on the first non-killable member,
// except views marked AlwaysPresent, which are skipped rather than treated
// as blocking.
func (m *Manager) KillAllBuffersSafely() error {
	for {
		m.mu.Lock()
		var target *Buffer
		for i := len(m.buffers) - 1; i >= 0; i-- {
			b := m.buffers[i]
			if _, always := b.view.(AlwaysPresent); always {
				continue
			}
			target = b
			break
		}
		m.mu.Unlock()

		if target == nil {
			return nil
		}
		if err := m.KillBufferSafely(target); err != nil {
			return err
		}
	}
}

// HandleInput routes one input event: resizes trigger a compositor pass,
// keys go to the focused buffer's view. A pending flash is erased when a key
// arrives, so flashed messages survive exactly until the next keystroke.
// Returns true if the event was consumed.
func (m *Manager) HandleInput(ev terminal.Event) bool {
	switch e := ev.(type) {
	case terminal.ResizeEvent:
		m.mu.Lock()
		m.dirty = true
		m.mu.Unlock()
		m.DrawScreen(DrawOpts{Sync: true})
		return true

	case terminal.KeyEvent:
		m.minibuf.EraseFlash()
		focused := m.Focused()
		if focused == nil {
			// Still repaint so an erased flash leaves the screen now.
			m.DrawScreen(DrawOpts{})
			return false
		}
		consumed := focused.view.HandleKey(e)
		if consumed {
			focused.MarkDirty()
		}
		m.DrawScreen(DrawOpts{})
		return consumed
	}
	return false
}

// Say adds a persistent status line and returns its handle. Adding a line
// changes the minibuffer height, so a full compositor pass runs.
func (m *Manager) Say(text string) int {
	handle := m.minibuf.Say(text)
	m.DrawScreen(DrawOpts{Sync: true})
	return handle
}

// UpdateSay replaces the text of an existing status line. The layout height
// is unchanged, so only the minibuffer region repaints.
func (m *Manager) UpdateSay(handle int, text string) {
	m.minibuf.UpdateSay(handle, text)
	m.drawMinibufOnly()
}

// SayWhile shows a status line for the duration of fn and clears it
// afterwards regardless of outcome.
func (m *Manager) SayWhile(text string, fn func()) {
	handle := m.Say(text)
	defer m.Clear(handle)
	fn()
}

// Clear removes a status line. The minibuffer may shrink, so a full
// compositor pass runs.
func (m *Manager) Clear(handle int) {
	m.minibuf.Clear(handle)
	m.DrawScreen(DrawOpts{Sync: true})
}

// Flash shows a transient message until the next keystroke.
func (m *Manager) Flash(text string) {
	m.minibuf.Flash(text)
	m.DrawScreen(DrawOpts{Sync: true})
}

// EraseFlash drops the transient message without forcing a redraw.
func (m *Manager) EraseFlash() {
	m.minibuf.EraseFlash()
}

// DrawOpts adjust a compositor pass.
type DrawOpts struct {
	// Sync forces an immediate full hardware repaint instead of a diffed
	// update.
	Sync bool

	// SkipMinibuf leaves the minibuffer region untouched.
	SkipMinibuf bool

	// CallerHoldsLock must be set by callers already inside the paint lock,
	// so nested compositor passes don't deadlock.
	CallerHoldsLock bool
}

// DrawScreen runs one compositor pass: resize and draw the topmost buffer,
// paint the minibuffer, flush to the terminal in one batched update. A no-op
// while shelled out.
//
// Only the topmost buffer is rendered even though the stack can hold many;
// one visible stacked buffer is the supported layout.
func (m *Manager) DrawScreen(opts DrawOpts) {
	if !opts.CallerHoldsLock {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	m.drawScreenLocked(opts)
}

func (m *Manager) drawScreenLocked(opts DrawOpts) {
	if m.shelledOut {
		return
	}

	cols, rows := m.backend.Size()
	mbLines := m.minibuf.Lines()

	if len(m.buffers) > 0 {
		top := m.buffers[len(m.buffers)-1]
		top.Resize(rows-len(mbLines), cols)
		if m.dirty {
			top.Draw()
		} else {
			top.Redraw()
		}
	}

	if !opts.SkipMinibuf {
		m.paintMinibufLocked(rows, cols, mbLines)
	}

	m.dirty = false
	if opts.Sync {
		m.backend.Sync()
	} else {
		m.backend.Show()
	}
}

// CompletelyRedrawScreen clears the physical terminal and repaints
// everything, used after external disruption such as returning from a
// shelled-out process.
func (m *Manager) CompletelyRedrawScreen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shelledOut {
		return
	}
	m.backend.Clear()
	m.dirty = true
	for _, b := range m.buffers {
		b.MarkDirty()
	}
	m.drawScreenLocked(DrawOpts{Sync: true, CallerHoldsLock: true})
}

// ShellOut releases the terminal, runs command under the configured shell,
// and reclaims the terminal afterwards. The command's exit status is not
// inspected; control simply returns here. While shelled out the compositor
// refuses to paint. An empty command runs an interactive shell.
func (m *Manager) ShellOut(command string) error {
	m.mu.Lock()
	if m.shelledOut {
		m.mu.Unlock()
		return errors.New(errors.ErrCodeShellOut, "already shelled out")
	}
	m.shelledOut = true
	m.mu.Unlock()

	reclaim := func() {
		m.mu.Lock()
		m.shelledOut = false
		m.mu.Unlock()
	}

	if err := m.backend.Suspend(); err != nil {
		reclaim()
		return errors.Wrap(err, errors.ErrCodeShellOut, "failed to release terminal")
	}

	var cmd *exec.Cmd
	if command == "" {
		cmd = exec.Command(m.shell)
	} else {
		cmd = exec.Command(m.shell, "-c", command)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		m.log.Debug(logging.CategoryShell, "shelled-out command exited with error",
			map[string]any{"command": command, "error": err.Error()})
	}

	err := m.backend.Resume()
	reclaim()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeShellOut, "failed to reclaim terminal")
	}

	m.CompletelyRedrawScreen()
	return nil
}

// paintMinibufLocked paints the minibuffer rows at the bottom of the screen.
func (m *Manager) paintMinibufLocked(rows, cols int, lines []string) {
	_, hasFlash := m.minibuf.FlashText()
	flashIdx := -1
	if hasFlash {
		flashIdx = 0
		if m.minibuf.PromptActive() {
			flashIdx = 1
		}
	}

	startRow := rows - len(lines)
	for i, line := range lines {
		style := m.theme.Minibuffer
		if i == flashIdx {
			style = m.theme.Flash
		}
		m.paintLineLocked(startRow+i, cols, line, style)
	}
}

// paintLineLocked paints one full-width line directly on the backend.
func (m *Manager) paintLineLocked(row, cols int, text string, style backend.Style) {
	text = runewidth.Truncate(text, cols, "")
	x := 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		m.backend.SetContent(x, row, r, nil, style)
		for i := 1; i < w; i++ {
			m.backend.SetContent(x+i, row, ' ', nil, style)
		}
		x += w
	}
	for ; x < cols; x++ {
		m.backend.SetContent(x, row, ' ', nil, style)
	}
}

// focusLocked moves focus to b, running blur/focus hooks.
func (m *Manager) focusLocked(b *Buffer) {
	if m.focused == b {
		return
	}
	if m.focused != nil {
		m.focused.Blur()
	}
	m.focused = b
	b.Focus()
}

// raiseToFrontLocked implements the stacking rule: pinned tops stay on top,
// everything else goes above the rest and takes focus.
func (m *Manager) raiseToFrontLocked(b *Buffer) {
	for i, other := range m.buffers {
		if other == b {
			m.buffers = append(m.buffers[:i], m.buffers[i+1:]...)
			break
		}
	}
	if n := len(m.buffers); n > 0 && m.buffers[n-1].forceToTop && m.buffers[n-1] != b {
		m.buffers = append(m.buffers[:n-1], b, m.buffers[n-1])
	} else {
		m.buffers = append(m.buffers, b)
		m.focusLocked(b)
	}
	m.dirty = true
}

func (m *Manager) memberLocked(b *Buffer) bool {
	for _, other := range m.buffers {
		if other == b {
			return true
		}
	}
	return false
}

// drawMinibufOnly repaints just the minibuffer region.
func (m *Manager) drawMinibufOnly() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shelledOut {
		return
	}
	cols, rows := m.backend.Size()
	m.paintMinibufLocked(rows, cols, m.minibuf.Lines())
	m.backend.Show()
}
