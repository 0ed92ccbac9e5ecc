// Package output renders resolution results as JSON, YAML or a terminal table.
// The structured formats carry the wire field names clients expect.
package output

import (
	"fmt"
	"strings"

	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/errors"
)

// Format represents the output format type.
type Format string

const (
	// FormatTable is the default terminal table output.
	FormatTable Format = constants.FormatTable
	// FormatJSON outputs the wire response as JSON.
	FormatJSON Format = constants.FormatJSON
	// FormatYAML outputs the wire response as YAML.
	FormatYAML Format = constants.FormatYAML
)

// Formats lists the accepted format names.
var Formats = []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}

// ParseFormat parses a format string into a Format type.
//
// The parsing is case-insensitive and an empty string selects the table.
//
// Parameters:
//   - s: Format string to parse (e.g., "json", "YAML")
//
// Returns:
//   - Format: The parsed format
//   - error: A *errors.ValidationError naming the valid formats when s is unknown
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	default:
		return "", &errors.ValidationError{
			Field:     "format",
			Message:   fmt.Sprintf("unknown output format %q", s),
			Expected:  strings.Join(Formats, ", "),
			ValidKeys: Formats,
		}
	}
}

// IsStructuredFormat returns true if the format is meant for machine consumption.
//
// Parameters:
//   - f: The format to check
//
// Returns:
//   - bool: true for JSON and YAML; false for table format
func IsStructuredFormat(f Format) bool {
	return f == FormatJSON || f == FormatYAML
}
