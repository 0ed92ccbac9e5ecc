package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedVersion is wrapped by every ParseError.
	ErrMalformedVersion = errors.New("malformed version")

	// ErrRegistryUnavailable is wrapped by every RegistryError.
	ErrRegistryUnavailable = errors.New("registry unavailable")

	// ErrMissingInstalledVersion is returned when the caller did not supply
	// the installed version of the core application.
	ErrMissingInstalledVersion = errors.New("unable to determine the current core version")

	// ErrUnknownPlugin is reported for a plugin handle the catalog cannot map
	// to a package.
	ErrUnknownPlugin = errors.New("unknown plugin")

	// ErrIncompleteRenewal is reported for an expired license that lacks a
	// renewal URL or a positive renewal price.
	ErrIncompleteRenewal = errors.New("expired license without renewal details")
)

// ParseErrorKind classifies version parse failures.
type ParseErrorKind string

const (
	// ParseErrorEmpty means the input was empty or whitespace.
	ParseErrorEmpty ParseErrorKind = "empty"

	// ParseErrorMalformed means the input did not match the version grammar.
	ParseErrorMalformed ParseErrorKind = "malformed"
)

// ParseError reports a version string that cannot be parsed.
//
// Fields:
//   - Input: The raw string that was rejected
//   - Kind: Why it was rejected
type ParseError struct {
	Input string
	Kind  ParseErrorKind
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Kind == ParseErrorEmpty {
		return "malformed version: empty version string"
	}
	return fmt.Sprintf("malformed version: %q", e.Input)
}

// Unwrap makes every ParseError match ErrMalformedVersion.
func (e *ParseError) Unwrap() error {
	return ErrMalformedVersion
}

// IsParseError reports whether err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// RegistryError reports a failed registry collaborator call.
//
// Fields:
//   - Operation: The registry call that failed (e.g. "versions", "changelog")
//   - Package: The package identifier the call was made for
//   - Err: The underlying failure, often a context deadline
type RegistryError struct {
	Operation string
	Package   string
	Err       error
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("registry unavailable: %s %s: %v", e.Operation, e.Package, e.Err)
	}
	return fmt.Sprintf("registry unavailable: %s: %v", e.Operation, e.Err)
}

// Unwrap returns both the sentinel and the cause so errors.Is matches
// ErrRegistryUnavailable as well as context.DeadlineExceeded.
func (e *RegistryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRegistryUnavailable}
	}
	return []error{ErrRegistryUnavailable, e.Err}
}

// NewRegistryError wraps err as a RegistryError. A nil err yields nil, and
// an err that already is a RegistryError is returned unchanged.
//
// Parameters:
//   - operation: The registry call that failed
//   - pkg: Package identifier
//   - err: Underlying failure
//
// Returns:
//   - error: The wrapped error, or nil
func NewRegistryError(operation, pkg string, err error) error {
	if err == nil {
		return nil
	}
	var existing *RegistryError
	if errors.As(err, &existing) {
		return err
	}
	return &RegistryError{Operation: operation, Package: pkg, Err: err}
}

// IsRegistryUnavailable reports whether err is or wraps a RegistryError.
func IsRegistryUnavailable(err error) bool {
	return errors.Is(err, ErrRegistryUnavailable)
}

// ComponentError attaches the failing component's handle to an error.
type ComponentError struct {
	Handle string
	Err    error
}

// Error implements the error interface.
func (e *ComponentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Handle, e.Err)
}

// Unwrap returns the underlying error.
func (e *ComponentError) Unwrap() error {
	return e.Err
}
