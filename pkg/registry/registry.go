// Package registry provides access to published package versions.
//
// The Registry interface is the resolution engine's only view of the
// outside world. Adapters in this package read a local YAML fixture (File)
// or the Composer v2 metadata API (Packagist); WithTimeout bounds every
// call of any adapter.
package registry

import (
	"context"

	"github.com/ajxudir/updatecheck/pkg/version"
)

// Registry answers version queries for package identifiers.
type Registry interface {
	// VersionsBetween returns versions v with from < v <= to whose
	// stability is accepted by min. Order is unspecified.
	VersionsBetween(ctx context.Context, pkg string, from, to version.Version, min version.Stability) ([]version.Version, error)

	// VersionsAfter returns versions v with v > from whose stability is
	// accepted by min. Order is unspecified.
	VersionsAfter(ctx context.Context, pkg string, from version.Version, min version.Stability) ([]version.Version, error)

	// LatestCompatible returns the newest version that declares
	// compatibility with the host version, or false when there is none.
	// Stable releases win unless installed is a pre-release that is at
	// least as new as every compatible stable release.
	LatestCompatible(ctx context.Context, pkg string, host, installed version.Version) (version.Version, bool, error)

	// Changelog returns the changelog text published with a release, or
	// false when the release has none.
	Changelog(ctx context.Context, pkg string, v version.Version) (string, bool, error)
}

// Catalog maps plugin handles to package identifiers.
type Catalog interface {
	PackageFor(handle string) (string, bool)
}

// MapCatalog is a Catalog backed by a map.
type MapCatalog map[string]string

// PackageFor implements Catalog.
func (m MapCatalog) PackageFor(handle string) (string, bool) {
	pkg, ok := m[handle]
	return pkg, ok && pkg != ""
}

// Catalogs consults each Catalog in order and returns the first match. It
// lets configured plugins take precedence over a fixture's catalog.
type Catalogs []Catalog

// PackageFor implements Catalog.
func (c Catalogs) PackageFor(handle string) (string, bool) {
	for _, catalog := range c {
		if catalog == nil {
			continue
		}
		if pkg, ok := catalog.PackageFor(handle); ok {
			return pkg, true
		}
	}
	return "", false
}

// filterRange keeps versions inside (from, to] accepted by min. A nil to
// means unbounded. Adapters share it so their range semantics agree.
func filterRange(versions []version.Version, from version.Version, to *version.Version, min version.Stability) []version.Version {
	out := make([]version.Version, 0, len(versions))
	for _, v := range versions {
		if !from.Less(v) {
			continue
		}
		if to != nil && v.Greater(*to) {
			continue
		}
		if !version.Accepts(min, v.Stability()) {
			continue
		}
		out = append(out, v)
	}
	return out
}
