// Package configtest builds configurations for tests.
//
// It lives apart from testutil because config depends on the resolver,
// and resolver tests depend on testutil.
package configtest

import (
	"github.com/ajxudir/updatecheck/pkg/config"
)

// ConfigBuilder provides a fluent API for building test configurations.
//
// Use this builder to construct Config objects for testing purposes
// without needing to set all required fields manually.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfig creates a new ConfigBuilder.
//
// The configuration starts with the working directory "." and a file
// registry source; every other field is unset so getters return defaults.
//
// Returns:
//   - *ConfigBuilder: New builder instance ready for method chaining
func NewConfig() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			WorkingDir: ".",
			Plugins:    make(map[string]string),
			Registry:   config.RegistryCfg{Source: config.RegistrySourceFile},
		},
	}
}

// WithWorkingDir sets the working directory for the configuration.
func (b *ConfigBuilder) WithWorkingDir(dir string) *ConfigBuilder {
	b.cfg.WorkingDir = dir
	return b
}

// WithPlugin maps a plugin handle to its package identifier.
//
// Parameters:
//   - handle: Plugin handle as reported by installations
//   - pkg: Package identifier in the registry
//
// Returns:
//   - *ConfigBuilder: Self for method chaining
func (b *ConfigBuilder) WithPlugin(handle, pkg string) *ConfigBuilder {
	b.cfg.Plugins[handle] = pkg
	return b
}

// WithBreakpoint appends a breakpoint rule with an inclusive lower bound.
//
// Parameters:
//   - pkg: Package the rule applies to
//   - lower: Lowest matching version
//   - upper: Exclusive upper bound
//   - target: Release that must be installed first
//
// Returns:
//   - *ConfigBuilder: Self for method chaining
func (b *ConfigBuilder) WithBreakpoint(pkg, lower, upper, target string) *ConfigBuilder {
	if b.cfg.Breakpoints == nil {
		b.cfg.Breakpoints = make(map[string][]config.BreakpointCfg)
	}
	b.cfg.Breakpoints[pkg] = append(b.cfg.Breakpoints[pkg], config.BreakpointCfg{Lower: lower, Upper: upper, Target: target})
	return b
}

// WithRegistryFile selects a YAML fixture registry.
func (b *ConfigBuilder) WithRegistryFile(path string) *ConfigBuilder {
	b.cfg.Registry.Source = config.RegistrySourceFile
	b.cfg.Registry.Path = path
	return b
}

// WithPackagist selects the Packagist registry at url.
func (b *ConfigBuilder) WithPackagist(url string) *ConfigBuilder {
	b.cfg.Registry.Source = config.RegistrySourcePackagist
	b.cfg.Registry.URL = url
	return b
}

// WithLicenses sets the license file path.
func (b *ConfigBuilder) WithLicenses(path string) *ConfigBuilder {
	b.cfg.Licenses = path
	return b
}

// WithRenewalCurrency sets the currency used for renewals that carry none.
func (b *ConfigBuilder) WithRenewalCurrency(currency string) *ConfigBuilder {
	b.cfg.RenewalCurrency = currency
	return b
}

// Build returns the constructed configuration.
//
// Returns:
//   - *config.Config: Pointer to a copy of the built configuration
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.cfg
	return &cfg
}
