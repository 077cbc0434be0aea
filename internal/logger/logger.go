// Package logger provides leveled logging for storyfeed.
//
// Debug, Info and Section messages are printed only in verbose mode (the
// --verbose flag) and trace the feed pipeline: page fetches, refilters,
// slot placement. Warnings report suppressed data inconsistencies such as
// duplicate story IDs or malformed source URLs and are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is the severity of a log line.
type Level int

// Levels in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

// String returns the tag printed in front of a line.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables debug and info output.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// IsVerbose reports whether debug and info output is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects all log lines. Tests use it to capture warnings.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// Enabled reports whether lines at level are currently printed.
func Enabled(level Level) bool {
	return level >= LevelWarn || IsVerbose()
}

// Debug traces pipeline steps.
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

// Info reports milestones such as a session opening.
func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

// Warn reports a suppressed inconsistency. It is always printed.
func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

// Section prints a header in verbose mode.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// logf holds the lock for the whole write so lines from concurrent
// sessions never interleave.
func logf(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < LevelWarn && !verbose {
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", level, fmt.Sprintf(format, args...))
}
