// Package verbose provides debug logging for update resolution.
//
// Messages are written only when verbose mode is enabled. Trace mode adds
// per-version detail that is too noisy for --verbose alone.
package verbose

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	enabled bool
	trace   bool
	writer  io.Writer = os.Stderr
)

// Enable turns on verbose logging and allows debug messages to be printed.
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
}

// Disable turns off verbose and trace logging.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
	trace = false
}

// EnableTrace turns on verbose logging together with trace detail.
func EnableTrace() {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
	trace = true
}

// IsEnabled returns whether verbose logging is currently enabled.
//
// Returns:
//   - bool: true if verbose logging is enabled, false otherwise
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// IsTrace returns whether trace detail is enabled.
func IsTrace() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled && trace
}

// SetWriter sets the output writer for verbose messages.
//
// Parameters:
//   - w: The io.Writer to use for output; if nil, the writer remains unchanged
func SetWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w != nil {
		writer = w
	}
}

func getWriter() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return writer
}

// Printf prints a formatted verbose message with a [DEBUG] prefix if enabled.
//
// Parameters:
//   - format: Printf-style format string
//   - args: Variadic arguments to format into the string
func Printf(format string, args ...any) {
	if IsEnabled() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] "+format+"\n", args...)
	}
}

// Info prints an informational verbose message if enabled.
func Info(msg string) {
	if IsEnabled() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] %s\n", msg)
	}
}

// Infof prints a formatted informational verbose message if enabled.
func Infof(format string, args ...any) {
	Printf(format, args...)
}

// Debugf is an alias of Printf used for resolution-step detail.
func Debugf(format string, args ...any) {
	Printf(format, args...)
}

// Tracef prints a formatted message with a [TRACE] prefix when trace is enabled.
func Tracef(format string, args ...any) {
	if IsTrace() {
		_, _ = fmt.Fprintf(getWriter(), "[TRACE] "+format+"\n", args...)
	}
}

// ConfigLoaded logs which config file was loaded if enabled.
//
// Parameters:
//   - path: The config file path, or "" for the built-in defaults
func ConfigLoaded(path string) {
	if !IsEnabled() {
		return
	}
	if path == "" {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] Config loaded: built-in defaults\n")
		return
	}
	_, _ = fmt.Fprintf(getWriter(), "[DEBUG] Config loaded: %s\n", path)
}

// RegistryCall logs a registry collaborator call if enabled.
//
// Parameters:
//   - operation: The registry operation name
//   - pkg: The package identifier
//   - detail: Free-form detail such as the version range
func RegistryCall(operation, pkg, detail string) {
	if IsEnabled() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] Registry %s: %s %s\n", operation, pkg, detail)
	}
}

// BreakpointMatched logs a breakpoint classification result if enabled.
func BreakpointMatched(pkg, installed, target string) {
	if IsEnabled() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] Breakpoint for '%s' at %s: must install %s first\n", pkg, installed, target)
	}
}

// VersionSelected logs upgrade target selection details if enabled.
//
// Parameters:
//   - pkg: The name of the package
//   - current: The installed version
//   - target: The selected upper bound, or "latest"
//   - reason: Why this bound was selected
func VersionSelected(pkg, current, target, reason string) {
	if IsEnabled() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] Version selected for '%s': %s → %s (%s)\n", pkg, current, target, reason)
	}
}

// Versions logs a version list, truncated to ten entries unless trace is on.
func Versions(label, pkg string, versions []string) {
	if !IsEnabled() {
		return
	}
	if len(versions) <= 10 || IsTrace() {
		_, _ = fmt.Fprintf(getWriter(), "[DEBUG] %s for %s: %s\n", label, pkg, strings.Join(versions, ", "))
		return
	}
	_, _ = fmt.Fprintf(getWriter(), "[DEBUG] %s for %s: %s... (%d more)\n",
		label, pkg, strings.Join(versions[:10], ", "), len(versions)-10)
}
