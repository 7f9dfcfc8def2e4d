// Package notify surfaces user-facing messages and the busy indicator shown
// while an analysis run is in progress.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Level is the severity of a user notice
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier shows messages to the user
type Notifier interface {
	Notify(level Level, message string)
}

// Indicator is a busy indicator. Stop reports whether the work succeeded and
// must be safe to call without Start and more than once.
type Indicator interface {
	Start(message string)
	Stop(success bool)
}

// Writer prints notices to an io.Writer, one per line
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter creates a Notifier printing to out
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Notify(level Level, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch level {
	case LevelError:
		fmt.Fprintf(w.out, "❌ %s\n", message)
	case LevelWarning:
		fmt.Fprintf(w.out, "⚠️  %s\n", message)
	default:
		fmt.Fprintf(w.out, "%s\n", message)
	}
}

// Infof is a convenience wrapper for informational notices
func Infof(n Notifier, format string, args ...any) {
	n.Notify(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf is a convenience wrapper for warnings
func Warnf(n Notifier, format string, args ...any) {
	n.Notify(LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf is a convenience wrapper for errors
func Errorf(n Notifier, format string, args ...any) {
	n.Notify(LevelError, fmt.Sprintf(format, args...))
}

// Nop discards notices and ignores indicator calls
type Nop struct{}

func (Nop) Notify(Level, string) {}
func (Nop) Start(string)         {}
func (Nop) Stop(bool)            {}
