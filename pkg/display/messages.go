package display

import (
	"fmt"
	"io"

	"github.com/ajxudir/updatecheck/pkg/constants"
)

// PrintWarnings prints warning messages to the writer.
//
// Formats each warning on its own line with a warning icon prefix.
// Does nothing if warnings slice is empty.
// Prints a blank line before the warnings for separation.
//
// Parameters:
//   - w: Writer to output to (typically os.Stderr)
//   - warnings: Slice of warning messages
func PrintWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w)
	for _, warning := range warnings {
		_, _ = fmt.Fprintf(w, "%s %s\n", constants.IconWarn, warning)
	}
}

// Summary holds resolution counts for display.
//
// Fields:
//   - Total: Components resolved, core included
//   - Eligible: Components free to update
//   - Blocked: Components at a breakpoint or with an expired license
//   - Failed: Plugins that could not be resolved
type Summary struct {
	Total    int
	Eligible int
	Blocked  int
	Failed   int
}

// PrintSummary prints a resolution summary.
//
// Example output:
//
//	Summary: 3 total, 1 eligible, 1 blocked, 1 failed
func PrintSummary(w io.Writer, summary Summary) {
	_, _ = fmt.Fprintf(w, "Summary: %d total", summary.Total)
	if summary.Eligible > 0 {
		_, _ = fmt.Fprintf(w, ", %d eligible", summary.Eligible)
	}
	if summary.Blocked > 0 {
		_, _ = fmt.Fprintf(w, ", %d blocked", summary.Blocked)
	}
	if summary.Failed > 0 {
		_, _ = fmt.Fprintf(w, ", %d failed", summary.Failed)
	}
	_, _ = fmt.Fprintln(w)
}

// PrintNoReleasesMessage prints the message shown when nothing newer exists.
//
// Example output:
//
//	No newer releases of craftcms/cms after 3.1.34
func PrintNoReleasesMessage(w io.Writer, pkg, from string) {
	_, _ = fmt.Fprintf(w, "No newer releases of %s after %s\n", pkg, from)
}
