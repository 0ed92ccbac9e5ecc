package config

import (
	"path/filepath"
	"time"

	"github.com/ajxudir/updatecheck/pkg/constants"
)

// Registry sources.
const (
	// RegistrySourceFile reads versions from a local YAML fixture.
	RegistrySourceFile = "file"

	// RegistrySourcePackagist queries a Composer v2 repository over HTTP.
	RegistrySourcePackagist = "packagist"
)

// DefaultMaxConfigFileSize is the default maximum config file size (10MB).
const DefaultMaxConfigFileSize = 10 * 1024 * 1024

// DefaultTimeoutSeconds bounds each registry call when no timeout is configured.
const DefaultTimeoutSeconds = 30

// DefaultMaxRetries is the default retry count for HTTP registries.
const DefaultMaxRetries = 3

// Config is the root configuration structure.
type Config struct {
	Extends         []string                   `yaml:"extends,omitempty"`
	WorkingDir      string                     `yaml:"working_dir,omitempty"`
	Core            CoreCfg                    `yaml:"core,omitempty"`
	HostPackage     string                     `yaml:"host_package,omitempty"`
	Plugins         map[string]string          `yaml:"plugins,omitempty"`
	Breakpoints     map[string][]BreakpointCfg `yaml:"breakpoints,omitempty"`
	PackageName     *PackageNameCfg            `yaml:"package_name,omitempty"`
	RenewalCurrency string                     `yaml:"renewal_currency,omitempty"`
	Concurrency     int                        `yaml:"concurrency,omitempty"`
	Registry        RegistryCfg                `yaml:"registry,omitempty"`
	Licenses        string                     `yaml:"licenses,omitempty"`
	Security        *SecurityCfg               `yaml:"security,omitempty"`

	// isRootConfig is set to true only for the root config file (not imported configs).
	// Security settings can only be enabled from the root config.
	isRootConfig bool `yaml:"-"`
}

// CoreCfg identifies the core application.
type CoreCfg struct {
	// Handle is the name the core uses for license lookups and error reports.
	Handle string `yaml:"handle,omitempty"`

	// Package is the registry package identifier of the core.
	Package string `yaml:"package,omitempty"`
}

// BreakpointCfg is one breakpoint rule as written in YAML.
//
// A rule matches installed versions with lower <= v < upper
// (lower < v < upper when LowerExclusive is set).
type BreakpointCfg struct {
	Lower          string `yaml:"lower"`
	LowerExclusive bool   `yaml:"lower_exclusive,omitempty"`
	Upper          string `yaml:"upper"`
	Target         string `yaml:"target"`
}

// PackageNameCfg configures which core versions receive the packageName field.
type PackageNameCfg struct {
	Since   string   `yaml:"since,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// RegistryCfg configures the version source.
type RegistryCfg struct {
	// Source is "file" or "packagist".
	Source string `yaml:"source,omitempty"`

	// Path is the fixture path for the file source.
	Path string `yaml:"path,omitempty"`

	// URL is the repository root for the packagist source.
	URL string `yaml:"url,omitempty"`

	// ChangelogURL is a template with {package}, {version} and {normalized}
	// placeholders used by the packagist source.
	ChangelogURL string `yaml:"changelog_url,omitempty"`

	// TimeoutSeconds bounds each registry call. 0 uses DefaultTimeoutSeconds.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// MaxRetries is the HTTP retry count. nil uses DefaultMaxRetries.
	MaxRetries *int `yaml:"max_retries,omitempty"`
}

// SecurityCfg holds security-related configuration options.
// These settings can ONLY be enabled from the root config file, not from imported configs.
type SecurityCfg struct {
	// AllowPathTraversal permits the use of ".." in extends paths.
	AllowPathTraversal bool `yaml:"allow_path_traversal,omitempty"`

	// AllowAbsolutePaths permits absolute paths in extends.
	AllowAbsolutePaths bool `yaml:"allow_absolute_paths,omitempty"`

	// MaxConfigFileSize overrides the default 10MB limit for config files (in bytes).
	MaxConfigFileSize int64 `yaml:"max_config_file_size,omitempty"`
}

// IsRootConfig returns true if this is the root configuration (not an imported config).
//
// Returns:
//   - bool: true if this is the root config, false otherwise
func (c *Config) IsRootConfig() bool {
	return c.isRootConfig
}

// SetRootConfig marks this config as the root config.
//
// Parameters:
//   - isRoot: true to mark as root config, false otherwise
func (c *Config) SetRootConfig(isRoot bool) {
	c.isRootConfig = isRoot
}

// GetMaxConfigFileSize returns the configured max file size or the default.
//
// Returns:
//   - int64: maximum allowed config file size in bytes
func (c *Config) GetMaxConfigFileSize() int64 {
	if c.Security != nil && c.Security.MaxConfigFileSize > 0 {
		return c.Security.MaxConfigFileSize
	}
	return DefaultMaxConfigFileSize
}

// AllowsPathTraversal returns true if path traversal is allowed in extends.
func (c *Config) AllowsPathTraversal() bool {
	return c.Security != nil && c.Security.AllowPathTraversal
}

// AllowsAbsolutePaths returns true if absolute paths are allowed in extends.
func (c *Config) AllowsAbsolutePaths() bool {
	return c.Security != nil && c.Security.AllowAbsolutePaths
}

// GetCoreHandle returns the core handle or "craft".
func (c *Config) GetCoreHandle() string {
	if c.Core.Handle != "" {
		return c.Core.Handle
	}
	return constants.DefaultCoreHandle
}

// GetCorePackage returns the core package identifier or "craftcms/cms".
func (c *Config) GetCorePackage() string {
	if c.Core.Package != "" {
		return c.Core.Package
	}
	return constants.DefaultCorePackage
}

// GetHostPackage returns the requirement key that plugin releases use to
// declare host compatibility. It defaults to the core package.
func (c *Config) GetHostPackage() string {
	if c.HostPackage != "" {
		return c.HostPackage
	}
	return c.GetCorePackage()
}

// GetRenewalCurrency returns the renewal currency or "USD".
func (c *Config) GetRenewalCurrency() string {
	if c.RenewalCurrency != "" {
		return c.RenewalCurrency
	}
	return constants.DefaultRenewalCurrency
}

// GetConcurrency returns the plugin fan-out limit.
func (c *Config) GetConcurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return constants.DefaultConcurrency
}

// GetRegistrySource returns the registry source, "packagist" when unset.
func (c *Config) GetRegistrySource() string {
	if c.Registry.Source != "" {
		return c.Registry.Source
	}
	return RegistrySourcePackagist
}

// GetTimeout returns the per-call registry timeout.
//
// Returns:
//   - time.Duration: Configured timeout, or DefaultTimeoutSeconds
func (c *Config) GetTimeout() time.Duration {
	if c.Registry.TimeoutSeconds > 0 {
		return time.Duration(c.Registry.TimeoutSeconds) * time.Second
	}
	return DefaultTimeoutSeconds * time.Second
}

// GetMaxRetries returns the HTTP retry count.
func (c *Config) GetMaxRetries() int {
	if c.Registry.MaxRetries != nil {
		return *c.Registry.MaxRetries
	}
	return DefaultMaxRetries
}

// ResolvePath resolves a path relative to the working directory. Paths read
// from config files are already relative to their file when loaded.
//
// Parameters:
//   - path: Path as written in the config
//
// Returns:
//   - string: Resolved path; empty input stays empty
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.WorkingDir == "" {
		return path
	}
	return filepath.Join(c.WorkingDir, path)
}
