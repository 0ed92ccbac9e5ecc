package resolver

import (
	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/version"
)

// Capability decides whether responses echo the package name back to the
// installation. Clients older than Since do not understand the field.
type Capability struct {
	Since   version.Version
	Exclude []version.Version
}

// DefaultCapability returns the capability boundaries of the core
// application: 3.1.21 and later, except 3.2.0-alpha.1.
func DefaultCapability() Capability {
	return Capability{
		Since:   version.MustParse(constants.DefaultPackageNameSince),
		Exclude: []version.Version{version.MustParse(constants.DefaultPackageNameExclude)},
	}
}

// IncludePackageName reports whether a core version supports the
// packageName response field.
//
// Parameters:
//   - core: Installed core version
//   - since: First supporting version
//   - exclude: Versions that do not support it despite being >= since
//
// Returns:
//   - bool: true when the field should be sent
func IncludePackageName(core, since version.Version, exclude []version.Version) bool {
	if core.Less(since) {
		return false
	}
	for _, x := range exclude {
		if core.Equal(x) {
			return false
		}
	}
	return true
}

// Allows applies IncludePackageName with the capability's boundaries.
func (c Capability) Allows(core version.Version) bool {
	return IncludePackageName(core, c.Since, c.Exclude)
}
