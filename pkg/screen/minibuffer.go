package screen

import "sync"

// Minibuffer composes the variable-height status region at the bottom of the
// screen from three independent sources: a transient flash message, an
// active-prompt placeholder, and persistent status lines addressed by stable
// integer handles.
//
// Handles are allocated from a monotonic counter. Clearing a line in the
// middle leaves a hole so concurrently-open messages keep their handles;
// clearing the highest live handle walks the counter back down past any
// holes, so freed handle space is reused.
//
// All state is guarded by one mutex so the compositor never paints a torn
// snapshot.
type Minibuffer struct {
	mu           sync.Mutex
	flash        string
	hasFlash     bool
	promptActive bool
	lines        map[int]string
	next         int
}

// NewMinibuffer returns an empty minibuffer.
func NewMinibuffer() *Minibuffer {
	return &Minibuffer{lines: make(map[int]string)}
}

// Say allocates the next handle, stores text under it, and returns it.
func (m *Minibuffer) Say(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	handle := m.next
	m.next++
	m.lines[handle] = text
	return handle
}

// UpdateSay replaces the text of an existing line. Unknown or cleared
// handles are ignored.
func (m *Minibuffer) UpdateSay(handle int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lines[handle]; !ok {
		return
	}
	m.lines[handle] = text
}

// Clear removes a line. Clearing the highest live handle rolls the handle
// counter back past any holes; holes below a live handle persist.
func (m *Minibuffer) Clear(handle int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lines[handle]; !ok {
		return
	}
	delete(m.lines, handle)
	if handle == m.next-1 {
		for m.next > 0 {
			if _, live := m.lines[m.next-1]; live {
				break
			}
			m.next--
		}
	}
}

// Flash sets the transient message.
func (m *Minibuffer) Flash(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flash = text
	m.hasFlash = true
}

// EraseFlash clears the transient message without forcing a redraw; the next
// natural redraw simply omits it.
func (m *Minibuffer) EraseFlash() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flash = ""
	m.hasFlash = false
}

// FlashText returns the current flash and whether one is set.
func (m *Minibuffer) FlashText() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flash, m.hasFlash
}

// SetPromptActive reserves (or releases) the prompt placeholder line.
func (m *Minibuffer) SetPromptActive(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promptActive = on
}

// PromptActive reports whether a prompt line is reserved.
func (m *Minibuffer) PromptActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.promptActive
}

// SlotCount returns the handle space currently spanned, holes included.
func (m *Minibuffer) SlotCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next
}

// Lines returns the minibuffer rows to paint, top to bottom: the prompt
// placeholder first, then the flash, then each live status line in handle
// order. An empty region renders as one blank line.
func (m *Minibuffer) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lines []string
	if m.promptActive {
		lines = append(lines, "")
	}
	if m.hasFlash {
		lines = append(lines, m.flash)
	}
	for handle := 0; handle < m.next; handle++ {
		if text, ok := m.lines[handle]; ok {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// LineCount returns the rendered height of the minibuffer region:
// max(1, prompt + flash + live lines).
func (m *Minibuffer) LineCount() int {
	return len(m.Lines())
}
