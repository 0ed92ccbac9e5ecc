package output

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DisplayWidth returns the display width of a string, accounting for unicode characters.
//
// Wide characters such as CJK text and status icons occupy two cells.
//
// Parameters:
//   - val: The string to measure
//
// Returns:
//   - int: The display width in character cells
func DisplayWidth(val string) int {
	return runewidth.StringWidth(val)
}

// ToWidth pads a string with spaces to a specific display width.
//
// Parameters:
//   - val: The string to pad
//   - width: The target display width in character cells
//
// Returns:
//   - string: The padded string, or val if already wide enough or width <= 0
func ToWidth(val string, width int) string {
	if width <= 0 {
		return val
	}
	current := DisplayWidth(val)
	if current >= width {
		return val
	}
	return val + strings.Repeat(" ", width-current)
}

// Truncate shortens a string to at most width display cells, marking the
// cut with "...".
//
// Parameters:
//   - val: The string to shorten
//   - width: Maximum display width; values below 4 are raised to 4
//
// Returns:
//   - string: val unchanged when it fits, otherwise the shortened string
func Truncate(val string, width int) string {
	if width < 4 {
		width = 4
	}
	return runewidth.Truncate(val, width, "...")
}
