package display

import (
	"fmt"

	"github.com/ajxudir/updatecheck/pkg/constants"
)

// FormatStatus formats a status string with the appropriate icon.
//
// Parameters:
//   - status: The status string (e.g., "eligible", "breakpoint", "expired")
//
// Returns:
//   - string: Formatted status with icon prefix (e.g., "🟢 eligible"), or
//     status unchanged when it is unknown
//
// Example:
//
//	display.FormatStatus("eligible")   // Returns "🟢 eligible"
//	display.FormatStatus("expired")    // Returns "⛔ expired"
func FormatStatus(status string) string {
	icon := StatusIcon(status)
	if icon == "" {
		return status
	}
	return fmt.Sprintf("%s %s", icon, status)
}

// StatusIcon returns the icon for a given status, or an empty string if unknown.
func StatusIcon(status string) string {
	switch status {
	case constants.StatusEligible:
		return constants.IconSuccess
	case constants.StatusBreakpoint:
		return constants.IconWarning
	case constants.StatusExpired:
		return constants.IconBlocked
	case constants.StatusFailed:
		return constants.IconError
	default:
		return ""
	}
}

// IsBlockedStatus returns true when the component cannot move straight to
// its newest release.
func IsBlockedStatus(status string) bool {
	return status == constants.StatusBreakpoint || status == constants.StatusExpired
}

// IsFailureStatus returns true if the status indicates a failed resolution.
func IsFailureStatus(status string) bool {
	return status == constants.StatusFailed
}
