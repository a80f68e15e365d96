// Package diag provides a small leveled diagnostic writer used across the
// pipeline for transient/component-level errors that must never abort a
// scan (spec §7). It mirrors the teacher's internal/debug logger: a thin
// wrapper around the standard log package, with color/TTY detection for
// terminal-friendly output.
package diag

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Logger is a leveled diagnostic sink. The zero value is not usable; use
// New.
type Logger struct {
	mu     sync.Mutex
	out    *log.Logger
	quiet  bool
	color  bool
	warned map[string]bool // summarize-once dedup, per spec §7
}

// New creates a Logger writing to w. quiet suppresses Info/Warn output but
// never suppresses Error.
func New(w io.Writer, quiet bool) *Logger {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Logger{
		out:    log.New(w, "", 0),
		quiet:  quiet,
		color:  useColor,
		warned: make(map[string]bool),
	}
}

// Default is a Logger over stderr, used by packages that do not thread a
// Logger through explicitly (e.g. library call sites reached from tests).
var Default = New(os.Stderr, false)

func (l *Logger) paint(c *color.Color, prefix, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	if l.color {
		l.out.Println(c.Sprint(prefix) + " " + msg)
		return
	}
	l.out.Println(prefix + " " + msg)
}

// Info logs a routine diagnostic. Suppressed when quiet.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.quiet {
		return
	}
	l.paint(color.New(color.FgCyan), "info:", format, args...)
}

// Warn logs a recoverable, component-level problem (spec §7 "Component-level").
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.quiet {
		return
	}
	l.paint(color.New(color.FgYellow), "warn:", format, args...)
}

// WarnOnce logs a per-file transient error (spec §7 "Transient, per-file")
// at most once per key, summarizing repeats. key is typically the error
// class, not the file, so repeated permission-denied errors across
// thousands of files collapse to a single line.
func (l *Logger) WarnOnce(key, format string, args ...interface{}) {
	l.mu.Lock()
	seen := l.warned[key]
	l.warned[key] = true
	l.mu.Unlock()
	if seen {
		return
	}
	l.Warn(format, args...)
}

// Error logs a fatal, user-facing diagnostic (spec §7 "Fatal"). Callers
// are responsible for the non-zero exit.
func (l *Logger) Error(format string, args ...interface{}) {
	l.paint(color.New(color.FgRed, color.Bold), "error:", format, args...)
}
