// Package warnings writes user-visible, non-fatal notices such as an ignored
// changelog or a skipped registry entry.
package warnings

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu         sync.RWMutex
	warnWriter io.Writer = os.Stderr
	quiet      bool
)

// Warnf writes a formatted warning message to the configured writer.
//
// Parameters:
//   - format: Printf-style format string; a trailing newline is not added
//   - args: Variadic arguments to format into the string
func Warnf(format string, args ...any) {
	mu.RLock()
	w, q := warnWriter, quiet
	mu.RUnlock()
	if q {
		return
	}
	_, _ = fmt.Fprintf(w, format, args...)
}

// SetQuiet suppresses all warnings when q is true and returns a restore function.
func SetQuiet(q bool) func() {
	mu.Lock()
	defer mu.Unlock()
	previous := quiet
	quiet = q
	return func() {
		mu.Lock()
		defer mu.Unlock()
		quiet = previous
	}
}

// SetWarningWriter swaps the warning writer and returns a restore function.
//
// Parameters:
//   - w: The new io.Writer to use; if nil, defaults to os.Stderr
//
// Returns:
//   - func(): restores the previous writer
func SetWarningWriter(w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()

	previous := warnWriter
	if w == nil {
		warnWriter = os.Stderr
	} else {
		warnWriter = w
	}

	return func() {
		mu.Lock()
		defer mu.Unlock()
		warnWriter = previous
	}
}
