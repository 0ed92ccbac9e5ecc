package display

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/output"
	"github.com/ajxudir/updatecheck/pkg/resolver"
)

// NotesWidth is the display width notes are truncated to in tables.
const NotesWidth = 60

// SafeValue returns the trimmed value, or placeholder when it is blank.
//
// Example:
//
//	display.SafeValue("", "#N/A")      // Returns "#N/A"
//	display.SafeValue(" 3.1.0 ", "-")  // Returns "3.1.0"
func SafeValue(val, placeholder string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return placeholder
	}
	return val
}

// FormatTarget returns the upgrade target, or "latest" when unbounded.
func FormatTarget(toVersion string) string {
	return SafeValue(toVersion, constants.PlaceholderLatest)
}

// FormatDate formats a release date as YYYY-MM-DD, or "#N/A" when unknown.
func FormatDate(t *time.Time) string {
	if t == nil {
		return constants.PlaceholderNA
	}
	return t.Format(output.DateLayout)
}

// FormatRenewal describes a renewal for a table cell.
//
// Parameters:
//   - r: Renewal details; nil yields an empty string
//
// Returns:
//   - string: e.g. "renew 59 USD at https://example.com/renew"
func FormatRenewal(r *resolver.Renewal) string {
	if r == nil {
		return ""
	}
	price := strconv.FormatFloat(r.Price, 'f', -1, 64)
	if r.URL == "" {
		return fmt.Sprintf("renew %s %s", price, r.Currency)
	}
	return fmt.Sprintf("renew %s %s at %s", price, r.Currency, r.URL)
}

// SummarizeNotes reduces multi-line release notes to their first non-empty
// line, without list markers, truncated to maxWidth display cells.
//
// Example:
//
//	display.SummarizeNotes("- Fixed a bug.\n- Added X.", 60) // Returns "Fixed a bug. (+1)"
func SummarizeNotes(notes string, maxWidth int) string {
	var lines []string
	for _, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range []string{"- ", "* "} {
			line = strings.TrimSpace(strings.TrimPrefix(line, marker))
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	summary := lines[0]
	if len(lines) > 1 {
		summary = fmt.Sprintf("%s (+%d)", summary, len(lines)-1)
	}
	return output.Truncate(summary, maxWidth)
}
