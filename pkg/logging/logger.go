// Package logging writes structured JSONL events and keeps a bounded
// in-memory tail for on-screen display.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Category represents the subsystem generating the log.
type Category string

const (
	CategoryScreen Category = "screen"
	CategoryBuffer Category = "buffer"
	CategoryInput  Category = "input"
	CategoryPrompt Category = "prompt"
	CategoryShell  Category = "shell"
	CategoryConfig Category = "config"
)

// Event represents a structured log event.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Category  Category       `json:"category"`
	SessionID string         `json:"session_id,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// Line renders the event the way the on-screen log tail shows it.
func (e Event) Line() string {
	return fmt.Sprintf("%s %-5s %-6s %s",
		e.Timestamp.Format("15:04:05"), e.Level, e.Category, e.Message)
}

// DefaultTailSize is how many recent events a logger retains in memory.
const DefaultTailSize = 512

// Logger writes events to an optional JSONL file and a bounded ring.
// A subscriber can be attached to observe events as they arrive.
type Logger struct {
	mu        sync.Mutex
	sessionID string
	file      *os.File
	minLevel  Level
	ring      []Event
	ringNext  int
	ringFull  bool
	onEvent   func(Event)
}

// New creates a logger writing to dir/<session>.jsonl. An empty dir disables
// file output; events still reach the ring and subscriber.
func New(dir string) (*Logger, error) {
	l := &Logger{
		sessionID: ulid.Make().String(),
		minLevel:  LevelInfo,
		ring:      make([]Event, DefaultTailSize),
	}
	if dir == "" {
		return l, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(
		filepath.Join(dir, l.sessionID+".jsonl"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0644,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}
	l.file = file
	return l, nil
}

// Nop returns a logger that keeps the in-memory tail only.
func Nop() *Logger {
	l, _ := New("")
	return l
}

// SessionID returns this logger's session identifier.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// SetMinLevel sets the minimum level written to the file and ring.
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// Subscribe attaches a callback invoked (outside the logger lock) for each
// accepted event. Only one subscriber is supported; the last call wins.
func (l *Logger) Subscribe(fn func(Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onEvent = fn
}

// Log records an event at the given level.
func (l *Logger) Log(level Level, category Category, message string, details map[string]any) {
	ev := Event{
		Timestamp: time.Now(),
		Level:     level,
		Category:  category,
		SessionID: l.sessionID,
		Message:   message,
		Details:   details,
	}

	l.mu.Lock()
	if !accepts(l.minLevel, level) {
		l.mu.Unlock()
		return
	}
	l.ring[l.ringNext] = ev
	l.ringNext = (l.ringNext + 1) % len(l.ring)
	if l.ringNext == 0 {
		l.ringFull = true
	}
	if l.file != nil {
		if data, err := json.Marshal(ev); err == nil {
			l.file.Write(append(data, '\n'))
		}
	}
	cb := l.onEvent
	l.mu.Unlock()

	if cb != nil {
		cb(ev)
	}
}

// Debug logs a debug event.
func (l *Logger) Debug(category Category, message string, details map[string]any) {
	l.Log(LevelDebug, category, message, details)
}

// Info logs an info event.
func (l *Logger) Info(category Category, message string, details map[string]any) {
	l.Log(LevelInfo, category, message, details)
}

// Warn logs a warning event.
func (l *Logger) Warn(category Category, message string, details map[string]any) {
	l.Log(LevelWarn, category, message, details)
}

// Error logs an error event.
func (l *Logger) Error(category Category, message string, details map[string]any) {
	l.Log(LevelError, category, message, details)
}

// Tail returns up to n of the most recent events, oldest first.
func (l *Logger) Tail(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.ringNext
	if l.ringFull {
		size = len(l.ring)
	}
	if n > size {
		n = size
	}
	out := make([]Event, 0, n)
	start := l.ringNext - n
	if start < 0 {
		start += len(l.ring)
	}
	for i := 0; i < n; i++ {
		out = append(out, l.ring[(start+i)%len(l.ring)])
	}
	return out
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

func accepts(min, level Level) bool {
	return levelRank[level] >= levelRank[min]
}
