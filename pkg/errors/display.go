package errors

import (
	"fmt"
	"io"
	"strings"
)

// ErrorHint provides an actionable resolution hint for a class of errors.
//
// Fields:
//   - Pattern: Substring to match in error message (case-insensitive)
//   - Hint: Brief description of the issue
//   - Resolution: Command or action to resolve the issue
type ErrorHint struct {
	Pattern    string
	Hint       string
	Resolution string
}

// CommonErrorHints lists hints matched against error messages in order.
var CommonErrorHints = []ErrorHint{
	{
		Pattern:    "malformed version",
		Hint:       "Version string could not be parsed",
		Resolution: "Use a numeric version such as 3.1.20, 1.2.0-beta.1 or 3.0.41.1",
	},
	{
		Pattern:    "unable to determine the current core version",
		Hint:       "Core version missing",
		Resolution: "Pass --core VERSION or --system craft:VERSION",
	},
	{
		Pattern:    "unknown plugin",
		Hint:       "Plugin handle not found in the catalog",
		Resolution: "Add the handle under 'plugins' in the registry file",
	},
	{
		Pattern:    "circuit breaker open",
		Hint:       "Registry has failed repeatedly",
		Resolution: "Wait for the registry to recover and retry",
	},
	{
		Pattern:    "deadline exceeded",
		Hint:       "Registry call timed out",
		Resolution: "Increase registry.timeout_seconds in .updatecheck.yml",
	},
	{
		Pattern:    "no such file or directory",
		Hint:       "File or directory not found",
		Resolution: "Verify the path exists and you have read permissions",
	},
	{
		Pattern:    "404",
		Hint:       "Package or version not found",
		Resolution: "Verify the package name exists in the registry",
	},
}

// GetHint returns an actionable hint for the given error, or "".
func GetHint(err error) string {
	if err == nil {
		return ""
	}

	errStr := strings.ToLower(err.Error())
	for _, hint := range CommonErrorHints {
		if strings.Contains(errStr, strings.ToLower(hint.Pattern)) {
			return hint.Hint + ": " + hint.Resolution
		}
	}

	return ""
}

// EnhanceErrorWithHint adds an actionable hint to an error message if a
// matching pattern is found.
//
// Parameters:
//   - err: The error to enhance
//
// Returns:
//   - string: Error message with hint appended if found, otherwise just the error message
func EnhanceErrorWithHint(err error) string {
	if err == nil {
		return ""
	}

	if hint := GetHint(err); hint != "" {
		return err.Error() + "\n  \U0001F4A1 " + hint
	}

	return err.Error()
}

// PrintErrorWithHints prints errors with actionable hints to the writer.
//
// Output format:
//
//	Error: <error message>
//	  💡 <hint if available>
//
// Parameters:
//   - w: Writer to output to (typically os.Stderr)
//   - errs: Errors to display
//   - verbose: If true, includes additional details for validation and partial errors
func PrintErrorWithHints(w io.Writer, errs []error, verbose bool) {
	for _, err := range errs {
		printSingleError(w, err, verbose)
	}
}

func printSingleError(w io.Writer, err error, verbose bool) {
	if err == nil {
		return
	}

	if ve, ok := IsValidationError(err); ok {
		if verbose {
			_, _ = fmt.Fprintf(w, "Validation Error: %s\n", ve.VerboseError())
		} else {
			_, _ = fmt.Fprintf(w, "Validation Error: %s\n", ve.Error())
		}
		return
	}

	if pse, ok := IsPartialSuccess(err); ok {
		_, _ = fmt.Fprintf(w, "Partial Success: %s\n", pse.Error())
		if verbose {
			for _, e := range pse.Errors {
				_, _ = fmt.Fprintf(w, "    - %s\n", EnhanceErrorWithHint(e))
			}
		}
		return
	}

	_, _ = fmt.Fprintf(w, "Error: %s\n", EnhanceErrorWithHint(err))
}
