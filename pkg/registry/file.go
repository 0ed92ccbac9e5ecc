package registry

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/version"
)

// maxFileSize bounds registry fixture files.
const maxFileSize = 16 * 1024 * 1024

// File is a Registry and Catalog backed by a YAML document:
//
//	host_package: craftcms/cms
//	plugins:
//	  commerce: craftcms/commerce
//	packages:
//	  craftcms/commerce:
//	    changelog: |
//	      ## 2.0.1 - 2019-02-01
//	      - Fixed a bug.
//	    versions:
//	      - 2.0.0
//	      - version: 2.0.1
//	        requires:
//	          craftcms/cms: ^3.1.0
//	        changelog: ...
//
// A version entry is either a plain string or a mapping. Release-level
// changelogs win over the package-level one.
type File struct {
	hostPackage string
	plugins     map[string]string
	packages    map[string]*filePackage
}

type filePackage struct {
	changelog string
	releases  []release
}

type fileDocument struct {
	HostPackage string                    `yaml:"host_package"`
	Plugins     map[string]string         `yaml:"plugins"`
	Packages    map[string]filePackageDoc `yaml:"packages"`
}

type filePackageDoc struct {
	Changelog string           `yaml:"changelog"`
	Versions  []fileReleaseDoc `yaml:"versions"`
}

type fileReleaseDoc struct {
	Version   string            `yaml:"version"`
	Requires  map[string]string `yaml:"requires"`
	Changelog string            `yaml:"changelog"`
}

// UnmarshalYAML accepts either a bare version scalar or a full mapping.
//
// Parameters:
//   - value: the YAML node to unmarshal
//
// Returns:
//   - error: error if the node is neither a scalar nor a mapping
func (d *fileReleaseDoc) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		d.Version = strings.TrimSpace(value.Value)
		return nil
	case yaml.MappingNode:
		type plain fileReleaseDoc
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*d = fileReleaseDoc(p)
		return nil
	default:
		return fmt.Errorf("line %d: version entry must be a string or a mapping", value.Line)
	}
}

// LoadFile reads a registry fixture from disk.
//
// Parameters:
//   - path: Path to the YAML document
//   - hostPackage: Requirement key of the host; empty uses the document's
//     host_package, then the default core package
//
// Returns:
//   - *File: The loaded registry
//   - error: When the file cannot be read or is invalid
func LoadFile(path, hostPackage string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file %s: %w", path, err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("registry file %s too large: %d bytes (max %d)", path, info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file %s: %w", path, err)
	}
	f, err := ParseFile(data, hostPackage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseFile decodes a registry fixture.
func ParseFile(data []byte, hostPackage string) (*File, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	host := hostPackage
	if host == "" {
		host = doc.HostPackage
	}
	if host == "" {
		host = constants.DefaultCorePackage
	}

	f := &File{
		hostPackage: host,
		plugins:     make(map[string]string, len(doc.Plugins)),
		packages:    make(map[string]*filePackage, len(doc.Packages)),
	}
	for handle, pkg := range doc.Plugins {
		f.plugins[handle] = pkg
	}

	for name, pkgDoc := range doc.Packages {
		p := &filePackage{changelog: pkgDoc.Changelog}
		for _, rd := range pkgDoc.Versions {
			v, err := version.Parse(rd.Version)
			if err != nil {
				return nil, fmt.Errorf("package %s: %w", name, err)
			}
			rawReq := rd.Requires[host]
			c, err := parseConstraint(rawReq)
			if err != nil {
				return nil, fmt.Errorf("package %s version %s: %w", name, rd.Version, err)
			}
			p.releases = append(p.releases, release{version: v, constraint: c, rawReq: rawReq, changelog: rd.Changelog})
		}
		f.packages[name] = p
	}

	return f, nil
}

// HostPackage returns the requirement key used for host compatibility.
func (f *File) HostPackage() string { return f.hostPackage }

// Packages returns the package identifiers in the fixture, sorted.
func (f *File) Packages() []string {
	out := make([]string, 0, len(f.packages))
	for name := range f.packages {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PackageFor implements Catalog.
func (f *File) PackageFor(handle string) (string, bool) {
	pkg, ok := f.plugins[handle]
	return pkg, ok && pkg != ""
}

// VersionsBetween implements Registry.
func (f *File) VersionsBetween(ctx context.Context, pkg string, from, to version.Version, min version.Stability) ([]version.Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filterRange(f.versions(pkg), from, &to, min), nil
}

// VersionsAfter implements Registry.
func (f *File) VersionsAfter(ctx context.Context, pkg string, from version.Version, min version.Stability) ([]version.Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filterRange(f.versions(pkg), from, nil, min), nil
}

// LatestCompatible implements Registry.
func (f *File) LatestCompatible(ctx context.Context, pkg string, host, installed version.Version) (version.Version, bool, error) {
	if err := ctx.Err(); err != nil {
		return version.Version{}, false, err
	}
	p, ok := f.packages[pkg]
	if !ok {
		return version.Version{}, false, nil
	}
	v, found := latestCompatible(p.releases, host, installed)
	return v, found, nil
}

// Changelog implements Registry.
func (f *File) Changelog(ctx context.Context, pkg string, v version.Version) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	p, ok := f.packages[pkg]
	if !ok {
		return "", false, nil
	}
	for _, r := range p.releases {
		if r.version.Equal(v) && r.changelog != "" {
			return r.changelog, true, nil
		}
	}
	if p.changelog != "" {
		return p.changelog, true, nil
	}
	return "", false, nil
}

func (f *File) versions(pkg string) []version.Version {
	p, ok := f.packages[pkg]
	if !ok {
		return nil
	}
	return versionsOf(p.releases)
}
