package screen

import (
	"os"

	"github.com/mattn/go-runewidth"

	"github.com/halvard/screenstack/pkg/completion"
	"github.com/halvard/screenstack/pkg/errors"
	"github.com/halvard/screenstack/pkg/logging"
	"github.com/halvard/screenstack/pkg/ui/terminal"
)

// Ask runs a blocking question/answer session on the minibuffer's prompt
// line, with live completion. Only one session may be active at a time;
// starting a second is a caller bug and fails fast.
//
// The returned bool is false when the user cancelled. Expected absence of an
// answer is not an error.
func (m *Manager) Ask(domain, question, def string, comp completion.Func) (string, bool, error) {
	m.mu.Lock()
	if m.asking {
		m.mu.Unlock()
		return "", false, errors.New(errors.ErrCodePromptActive,
			"prompt session already active").WithContext("domain", domain)
	}
	m.asking = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.asking = false
		m.mu.Unlock()
	}()

	tf := m.field(domain)
	tf.Activate(question, def, comp)
	defer tf.Deactivate()

	m.minibuf.SetPromptActive(true)

	var compBuf *Buffer
	var compView *completionsView
	var cands []completion.Candidate
	killComps := func() {
		if compBuf != nil {
			m.KillBuffer(compBuf)
			compBuf = nil
			compView = nil
		}
	}

	m.DrawScreen(DrawOpts{Sync: true})
	m.drawPromptLine(tf)

	accepted := false
loop:
	for {
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
			m.drawPromptLine(tf)

		case terminal.KeyEvent:
			if e.Key == terminal.KeyEnter {
				accepted = true
				break loop
			}
			if e.IsCancel() {
				break loop
			}
			tf.HandleKey(e)

			if newCands, changed := tf.TakeCompletionsChanged(); changed {
				killComps()
				cands = newCands
				if len(cands) > 0 {
					labels := make([]string, len(cands))
					for i, c := range cands {
						labels[i] = c.Label
					}
					compView = newCompletionsView(labels)
					height := len(labels) + 1 // one extra row for the status line
					if height > maxCompletionRows {
						height = maxCompletionRows
					}
					compBuf, _ = m.Spawn(completionsTitle, compView, SpawnOpts{Height: height})
				}
			} else if tf.TakeRoll() && compView != nil {
				if i := compView.Roll(); i >= 0 && i < len(cands) {
					tf.SetRolledText(cands[i].Value)
				}
				if compBuf != nil {
					compBuf.MarkDirty()
				}
			}

			m.DrawScreen(DrawOpts{})
			m.drawPromptLine(tf)
		}
	}

	killComps()
	m.minibuf.SetPromptActive(false)
	m.backend.HideCursor()
	m.DrawScreen(DrawOpts{Sync: true})

	m.log.Debug(logging.CategoryPrompt, "prompt session ended",
		map[string]any{"domain": domain, "accepted": accepted})
	if !accepted {
		return "", false, nil
	}
	return tf.Text(), true, nil
}

// AskGetch asks a single-keystroke question: the question is flashed, the
// cursor shown after it, and polling continues until a cancel keystroke or
// (when accept is non-empty) a matching rune arrives. Keystrokes outside the
// accepted set are ignored. Returns ok=false on cancel.
func (m *Manager) AskGetch(question string, accept []rune) (rune, bool) {
	m.Flash(question)

	m.mu.Lock()
	cols, rows := m.backend.Size()
	lines := m.minibuf.Lines()
	x := runewidth.StringWidth(question)
	if x >= cols {
		x = cols - 1
	}
	m.backend.SetCursorPos(x, rows-len(lines))
	m.backend.Show()
	m.mu.Unlock()

	defer func() {
		m.backend.HideCursor()
		m.EraseFlash()
		m.DrawScreen(DrawOpts{Sync: true})
	}()

	for {
		ev := m.PollEvent()
		k, ok := ev.(terminal.KeyEvent)
		if !ok {
			continue
		}
		if k.IsCancel() {
			return 0, false
		}
		if len(accept) == 0 {
			return k.Rune, true
		}
		for _, r := range accept {
			if k.Rune == r {
				return r, true
			}
		}
	}
}

// AskYesNo asks a yes/no question. y/Y answers true, n/N answers false, and
// ok=false means the user cancelled.
func (m *Manager) AskYesNo(question string) (answer, ok bool) {
	r, ok := m.AskGetch(question, []rune{'y', 'Y', 'n', 'N'})
	if !ok {
		return false, false
	}
	return r == 'y' || r == 'Y', true
}

// AskForFilenames asks for a path with filename completion. An answer naming
// a directory (or an empty answer) opens the directory browser modal and
// returns its selection, possibly empty; otherwise the single expanded path
// is returned. Cancelling returns nil.
func (m *Manager) AskForFilenames(domain, question, def string) ([]string, error) {
	ans, ok, err := m.Ask(domain, question, def, completion.Filename(m.accounts))
	if err != nil || !ok {
		return nil, err
	}

	expanded := completion.ExpandTilde(m.accounts, ans)
	if ans != "" && !isDir(expanded) {
		return []string{expanded}, nil
	}

	if m.dirBrowser == nil {
		if ans == "" {
			return nil, nil
		}
		return []string{expanded}, nil
	}

	dir := expanded
	if ans == "" {
		dir = "."
	}
	result, err := m.SpawnModal("file browser", m.dirBrowser(dir), SpawnOpts{})
	if err != nil {
		return nil, err
	}
	paths, _ := result.([]string)
	return paths, nil
}

// field returns the reusable input line for a domain, creating it on first
// use.
func (m *Manager) field(domain string) *TextField {
	m.mu.Lock()
	defer m.mu.Unlock()
	tf, ok := m.fields[domain]
	if !ok {
		tf = newTextField(domain)
		m.fields[domain] = tf
	}
	return tf
}

// drawPromptLine paints the question and current text on the reserved
// prompt row and parks the hardware cursor at the editing position.
func (m *Manager) drawPromptLine(tf *TextField) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shelledOut {
		return
	}

	cols, rows := m.backend.Size()
	row := rows - len(m.minibuf.Lines())
	m.paintLineLocked(row, cols, tf.Question()+tf.Text(), m.theme.Prompt)

	x := runewidth.StringWidth(tf.Question()) +
		runewidth.StringWidth(string([]rune(tf.Text())[:tf.Cursor()]))
	if x >= cols {
		x = cols - 1
	}
	m.backend.SetCursorPos(x, row)
	m.backend.Show()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
