// Package display provides terminal presentation for updatecheck output.
//
// Value Formatting:
//
// Use formatting functions for consistent value display:
//
//	target := display.FormatTarget(info.ToVersion)   // Returns "latest" if empty
//	date := display.FormatDate(meta.Date)            // Returns "#N/A" if unknown
//
// Status Formatting:
//
// Use status functions for consistent status display with icons:
//
//	status := display.FormatStatus("breakpoint")  // Returns "🟠 breakpoint"
//
// Tables:
//
// RenderResult and RenderReleases print the table form of a resolution
// result and a release list. JSON and YAML live in pkg/output.
package display
