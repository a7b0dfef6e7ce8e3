// Package errors provides structured errors with stable codes.
// Contract-violation codes mark caller bugs: they are returned immediately
// and are not meant to be recovered from at runtime.
package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorCode represents a structured error code.
type ErrorCode string

const (
	// Contract violations (caller bugs)
	ErrCodeEmptyTitle       ErrorCode = "EMPTY_TITLE"
	ErrCodeBufferNotInStack ErrorCode = "BUFFER_NOT_IN_STACK"
	ErrCodePromptActive     ErrorCode = "PROMPT_ACTIVE"

	// Expected operational failures
	ErrCodeNotKillable ErrorCode = "NOT_KILLABLE"
	ErrCodeBackendInit ErrorCode = "BACKEND_INIT"
	ErrCodeShellOut    ErrorCode = "SHELL_OUT"

	// Configuration errors
	ErrCodeConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrCodeConfigParse ErrorCode = "CONFIG_PARSE"

	// Generic
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error is a structured error carrying a code, context and capture stack.
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Context    map[string]any
	Stack      []Frame
}

// Frame represents one captured stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// New creates a new structured error.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
		Stack:   captureStack(2),
	}
}

// Newf creates a new structured error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Context: make(map[string]any),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with a code and message.
// Returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Context:    make(map[string]any),
		Stack:      captureStack(2),
	}
}

// WithContext adds a context key-value pair.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if len(e.Context) > 0 {
		b.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, v)
			first = false
		}
		b.WriteString(")")
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches errors by code so callers can test sentinel-style:
//
//	errors.Is(err, &Error{Code: ErrCodeBufferNotInStack})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of a structured error, or ErrCodeInternal for any
// other error. Returns "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrCodeInternal
}

// captureStack records up to 8 frames, skipping the error constructors.
func captureStack(skip int) []Frame {
	var frames []Frame
	pcs := make([]uintptr, 8)
	n := runtime.Callers(skip+1, pcs)
	iter := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := iter.Next()
		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
	return frames
}
