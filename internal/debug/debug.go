// Package debug provides lightweight, process-wide logging for the
// geocoder. It intentionally avoids a structured-logging framework: most
// of this module's diagnostics are one-line progress/retry notices, not
// structured events consumed by a log pipeline.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Enabled toggles verbose logging. It is a var, not a const, so callers
// (including tests) can flip it at runtime.
var Enabled = os.Getenv("GEOCODER_DEBUG") != ""

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
)

// SetOutput redirects debug output. Passing nil restores os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	output = w
}

func write(level, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output, "%s [%s] %s\n", time.Now().Format(time.RFC3339), level, fmt.Sprintf(format, args...))
}

// Logf writes a debug-level message only when Enabled is true.
func Logf(format string, args ...interface{}) {
	if !Enabled {
		return
	}
	write("DEBUG", format, args...)
}

// Infof always writes an informational message.
func Infof(format string, args ...interface{}) {
	write("INFO", format, args...)
}

// Warnf always writes a warning.
func Warnf(format string, args ...interface{}) {
	write("WARN", format, args...)
}

// Errorf always writes an error notice. It does not itself construct an
// error value; callers still return their own errors.
func Errorf(format string, args ...interface{}) {
	write("ERROR", format, args...)
}
