// Package errors provides the error types shared by the update resolver and
// the updatecheck CLI.
//
// Resolution errors:
//   - ParseError: an installed or candidate version string is malformed
//   - RegistryError: a registry collaborator call failed or timed out
//   - ErrMissingInstalledVersion: the core application version was not supplied
//   - ErrUnknownPlugin: a plugin handle is not known to the plugin catalog
//
// Command errors:
//   - ExitError: command exit with a specific exit code
//   - PartialSuccessError: some plugins resolved, some failed
//   - ValidationError: configuration validation failures
//
// Error Checking:
//
// Use the standard library helpers or the Is* functions:
//
//	if errors.IsParseError(err) {
//	    // the component cannot be compared safely
//	}
//
// Exit Codes:
//   - ExitSuccess (0): every component resolved
//   - ExitPartialFailure (1): one or more plugins failed to resolve
//   - ExitFailure (2): the core application could not be resolved
//   - ExitConfigError (3): configuration or usage error
package errors
