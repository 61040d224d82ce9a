// Package logger provides leveled logging for the paperqa CLI.
// Debug, Info and Section output is printed only in verbose mode
// (--verbose). Warnings, errors and construction steps are always printed.
// Everything goes to stderr so answers on stdout stay clean.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	verbosef("[DEBUG] "+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	verbosef("\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	verbosef("[INFO] "+format+"\n", args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	printf("[WARN] "+format+"\n", args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	printf("[ERROR] "+format+"\n", args...)
}

// Step prints a numbered progress line such as "[2/4] Splitting".
func Step(n, total int, format string, args ...any) {
	printf(fmt.Sprintf("[%d/%d] ", n, total)+format+"\n", args...)
}

func verbosef(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, format, args...)
	}
}

func printf(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, format, args...)
}
