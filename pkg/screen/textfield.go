package screen

import (
	"unicode"

	"github.com/halvard/screenstack/pkg/completion"
	"github.com/halvard/screenstack/pkg/ui/terminal"
)

// TextField is the reusable input line behind a prompt session. One field
// exists per semantic domain ("filename", "search", ...) so each domain
// keeps its own editing state across sessions.
//
// HandleKey reports whether a keystroke was consumed as an editing command;
// confirm and cancel keys are not consumed — they terminate the session's
// loop instead.
type TextField struct {
	domain   string
	question string

	text   []rune
	cursor int

	completer completion.Func

	// Completion state. candidatesFor remembers the text the current
	// candidate set was computed against, so a repeated Tab cycles instead
	// of recomputing.
	candidates    []completion.Candidate
	candidatesFor string
	haveCands     bool
	changed       bool
	roll          bool
}

func newTextField(domain string) *TextField {
	return &TextField{domain: domain}
}

// Activate seeds the field for a new session.
func (t *TextField) Activate(question, def string, comp completion.Func) {
	t.question = question
	t.text = []rune(def)
	t.cursor = len(t.text)
	t.completer = comp
	t.resetCompletions()
	t.changed = false
	t.roll = false
}

// Deactivate ends the session. The text survives for inspection; the
// completion provider does not.
func (t *TextField) Deactivate() {
	t.completer = nil
	t.resetCompletions()
}

// Domain returns the field's semantic domain.
func (t *TextField) Domain() string { return t.domain }

// Question returns the active prompt question.
func (t *TextField) Question() string { return t.question }

// Text returns the current input text.
func (t *TextField) Text() string { return string(t.text) }

// Cursor returns the rune index of the cursor.
func (t *TextField) Cursor() int { return t.cursor }

// SetText replaces the text and moves the cursor to the end.
func (t *TextField) SetText(text string) {
	t.text = []rune(text)
	t.cursor = len(t.text)
}

// SetRolledText writes a rolled candidate back into the field. Unlike
// SetText it keeps the candidate set valid for the new text, so the next
// Tab cycles onward instead of recomputing the list.
func (t *TextField) SetRolledText(text string) {
	t.SetText(text)
	t.candidatesFor = text
}

// TakeCompletionsChanged returns the pending candidate set when the last
// keystroke produced (or invalidated) one, clearing the flag. An empty set
// with changed=true means "drop the completion list".
func (t *TextField) TakeCompletionsChanged() ([]completion.Candidate, bool) {
	if !t.changed {
		return nil, false
	}
	t.changed = false
	return t.candidates, true
}

// TakeRoll reports a pending cycle-completions request, clearing the flag.
func (t *TextField) TakeRoll() bool {
	roll := t.roll
	t.roll = false
	return roll
}

// HandleKey applies one keystroke. Returns false for session-terminating
// keys (confirm or cancel), true for everything consumed as editing.
func (t *TextField) HandleKey(k terminal.KeyEvent) bool {
	switch k.Key {
	case terminal.KeyEnter, terminal.KeyEscape, terminal.KeyCtrlG:
		return false

	case terminal.KeyTab:
		t.complete()
		return true

	case terminal.KeyBackspace:
		if t.cursor > 0 {
			t.text = append(t.text[:t.cursor-1], t.text[t.cursor:]...)
			t.cursor--
			t.invalidateCompletions()
		}
		return true

	case terminal.KeyDelete:
		if t.cursor < len(t.text) {
			t.text = append(t.text[:t.cursor], t.text[t.cursor+1:]...)
			t.invalidateCompletions()
		}
		return true

	case terminal.KeyLeft:
		if t.cursor > 0 {
			t.cursor--
		}
		return true

	case terminal.KeyRight:
		if t.cursor < len(t.text) {
			t.cursor++
		}
		return true

	case terminal.KeyHome, terminal.KeyCtrlA:
		t.cursor = 0
		return true

	case terminal.KeyEnd, terminal.KeyCtrlE:
		t.cursor = len(t.text)
		return true

	case terminal.KeyCtrlK:
		if t.cursor < len(t.text) {
			t.text = t.text[:t.cursor]
			t.invalidateCompletions()
		}
		return true

	case terminal.KeyCtrlU:
		if len(t.text) > 0 {
			t.text = nil
			t.cursor = 0
			t.invalidateCompletions()
		}
		return true

	case terminal.KeyCtrlW:
		t.deleteWordBack()
		return true

	case terminal.KeyRune:
		if k.Ctrl || k.Alt {
			return true
		}
		t.text = append(t.text[:t.cursor], append([]rune{k.Rune}, t.text[t.cursor:]...)...)
		t.cursor++
		t.invalidateCompletions()
		return true
	}

	// Unknown keys are swallowed rather than leaked to the buffer below.
	return true
}

// complete computes candidates for the current text, or requests a cycle
// when the text hasn't changed since the last completion.
func (t *TextField) complete() {
	if t.completer == nil {
		return
	}
	if t.haveCands && string(t.text) == t.candidatesFor {
		if len(t.candidates) > 0 {
			t.roll = true
		}
		return
	}

	t.candidates = t.completer(string(t.text))
	t.haveCands = true
	t.changed = true

	// Extend the typed text to the longest common prefix. The candidate set
	// stays valid for the extended text, so the next Tab cycles.
	cur := string(t.text)
	if prefix := completion.Common(t.candidates); len(prefix) > len(cur) {
		t.SetText(prefix)
	}
	t.candidatesFor = string(t.text)
}

func (t *TextField) invalidateCompletions() {
	if t.haveCands {
		t.changed = true
	}
	t.resetCompletions()
}

func (t *TextField) resetCompletions() {
	t.candidates = nil
	t.candidatesFor = ""
	t.haveCands = false
}

func (t *TextField) deleteWordBack() {
	if t.cursor == 0 {
		return
	}
	i := t.cursor
	for i > 0 && unicode.IsSpace(t.text[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(t.text[i-1]) {
		i--
	}
	t.text = append(t.text[:i], t.text[t.cursor:]...)
	t.cursor = i
	t.invalidateCompletions()
}
