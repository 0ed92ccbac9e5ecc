// Package constants provides centralized string constants used throughout the application.
// This eliminates magic strings and provides a single source of truth for status values.
package constants

// Update status wire values. They are part of the public response format
// and must not change.
const (
	// StatusEligible indicates the component may update to any listed release.
	StatusEligible = "eligible"

	// StatusBreakpoint indicates the component must first install a specific
	// intermediate release before moving further.
	StatusBreakpoint = "breakpoint"

	// StatusExpired indicates the component's license has lapsed.
	StatusExpired = "expired"

	// StatusFailed is a display-only value for a component that could not
	// be resolved. It never appears in a successful response.
	StatusFailed = "failed"
)

// Component kinds.
const (
	// KindCore is the host application.
	KindCore = "core"

	// KindPlugin is an extension installed on the host application.
	KindPlugin = "plugin"
)

// Well-known identifiers of the default ecosystem.
const (
	// DefaultCoreHandle is the legacy descriptor handle of the core application.
	DefaultCoreHandle = "craft"

	// DefaultCorePackage is the package identifier of the core application.
	DefaultCorePackage = "craftcms/cms"

	// DefaultRenewalCurrency is used when a license carries no currency.
	DefaultRenewalCurrency = "USD"

	// DefaultPackageNameSince is the first core version whose clients
	// understand the packageName response field.
	DefaultPackageNameSince = "3.1.21"

	// DefaultPackageNameExclude is a core pre-release that predates the
	// packageName field despite sorting above DefaultPackageNameSince.
	DefaultPackageNameExclude = "3.2.0-alpha.1"

	// DefaultConcurrency bounds concurrent plugin resolutions.
	DefaultConcurrency = 8
)

// Placeholder values for display when data is not available.
const (
	// PlaceholderNA is used when a value is not available.
	PlaceholderNA = "#N/A"

	// PlaceholderLatest is displayed when the upgrade target is unrestricted.
	PlaceholderLatest = "latest"
)

// Output format constants.
const (
	// FormatTable renders a terminal table.
	FormatTable = "table"

	// FormatJSON renders the wire response as JSON.
	FormatJSON = "json"

	// FormatYAML renders the wire response as YAML.
	FormatYAML = "yaml"
)

// Icon constants for status display.
// These provide visual indicators for component states in CLI output.
const (
	// IconSuccess indicates an eligible component (green circle).
	IconSuccess = "🟢"

	// IconWarning indicates a breakpoint (orange circle).
	IconWarning = "🟠"

	// IconError indicates a failed component (red X).
	IconError = "❌"

	// IconBlocked indicates an expired license (stop sign).
	IconBlocked = "⛔"

	// IconCritical marks a critical release.
	IconCritical = "🔴"

	// IconCheckmark indicates a passed check (checkmark).
	IconCheckmark = "✓"

	// IconWarn is the warning prefix for messages.
	IconWarn = "⚠️"

	// IconLightbulb indicates a hint or suggestion.
	IconLightbulb = "💡"
)
