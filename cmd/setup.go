package cmd

import (
	"fmt"
	"os"

	"github.com/ajxudir/updatecheck/pkg/changelog"
	"github.com/ajxudir/updatecheck/pkg/config"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/license"
	"github.com/ajxudir/updatecheck/pkg/output"
	"github.com/ajxudir/updatecheck/pkg/registry"
	"github.com/ajxudir/updatecheck/pkg/resolver"
	"github.com/ajxudir/updatecheck/pkg/verbose"
)

var (
	loadConfigFunc  = config.LoadConfig
	writeFileFunc   = os.WriteFile
	readFileFunc    = os.ReadFile
	newRegistryFunc = newRegistry
)

// loadEngineConfig loads the configuration selected by --config and --dir.
//
// Validation failures keep their ValidationError so hints and the config
// exit code apply; every other load failure is wrapped as a config error.
//
// Returns:
//   - *config.Config: Loaded, merged and validated configuration
//   - error: ExitError with ExitConfigError, or a ValidationError
func loadEngineConfig() (*config.Config, error) {
	cfg, err := loadConfigFunc(configFlag, dirFlag)
	if err != nil {
		if _, ok := errors.IsValidationError(err); ok {
			return nil, err
		}
		return nil, errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to load config: %w", err))
	}
	return cfg, nil
}

// newRegistry builds the version source and plugin catalog for a config.
//
// The file source reads a YAML fixture that also carries a catalog; the
// packagist source queries a Composer repository. Configured plugin
// mappings take precedence over the fixture catalog in both cases.
//
// Parameters:
//   - cfg: Loaded configuration
//
// Returns:
//   - registry.Registry: Version source bounded by the configured timeout
//   - registry.Catalog: Handle to package mapping
//   - error: When the source is unknown or the fixture cannot be loaded
func newRegistry(cfg *config.Config) (registry.Registry, registry.Catalog, error) {
	catalogs := registry.Catalogs{registry.MapCatalog(cfg.Plugins)}

	var reg registry.Registry
	switch source := cfg.GetRegistrySource(); source {
	case config.RegistrySourceFile:
		path := cfg.ResolvePath(cfg.Registry.Path)
		verbose.Infof("Using registry fixture: %s", path)
		file, err := registry.LoadFile(path, cfg.GetHostPackage())
		if err != nil {
			return nil, nil, errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to load registry: %w", err))
		}
		reg = file
		catalogs = append(catalogs, file)
	case config.RegistrySourcePackagist:
		verbose.Infof("Using Packagist repository: %s", cfg.Registry.URL)
		reg = registry.NewPackagist(cfg.Registry.URL,
			registry.WithHostPackage(cfg.GetHostPackage()),
			registry.WithChangelogURL(cfg.Registry.ChangelogURL),
			registry.WithMaxRetries(cfg.GetMaxRetries()),
			registry.WithUserAgent(userAgent()),
		)
	default:
		return nil, nil, errors.NewExitError(errors.ExitConfigError, &errors.ValidationError{
			Field:     "registry.source",
			Message:   fmt.Sprintf("unknown registry source %q", source),
			ValidKeys: []string{config.RegistrySourceFile, config.RegistrySourcePackagist},
		})
	}

	return registry.WithTimeout(reg, cfg.GetTimeout()), catalogs, nil
}

// newResolver wires a resolver from the configuration.
//
// Parameters:
//   - cfg: Loaded configuration
//   - licenses: License store for the installation
//
// Returns:
//   - *resolver.Resolver: Configured resolver
//   - error: When the registry or configured rules cannot be built
func newResolver(cfg *config.Config, licenses license.Store) (*resolver.Resolver, error) {
	reg, catalog, err := newRegistryFunc(cfg)
	if err != nil {
		return nil, err
	}

	breakpoints, err := cfg.BreakpointSet()
	if err != nil {
		return nil, errors.NewExitError(errors.ExitConfigError, err)
	}
	capability, err := cfg.Capability()
	if err != nil {
		return nil, errors.NewExitError(errors.ExitConfigError, err)
	}

	r := resolver.New(reg, changelog.NewMarkdownParser(), catalog)
	r.Breakpoints = breakpoints
	r.Capability = &capability
	r.Licenses = licenses
	r.Concurrency = cfg.GetConcurrency()
	r.RenewalCurrency = cfg.GetRenewalCurrency()
	r.CorePackage = cfg.GetCorePackage()
	r.CoreHandle = cfg.GetCoreHandle()
	return r, nil
}

// loadLicenses returns the license store of the configuration.
//
// Without a configured licenses file every component is licensed. When the
// installation reported license keys, only records with a matching key (or
// no key at all) apply.
//
// Parameters:
//   - cfg: Loaded configuration
//   - keys: Reported license keys by handle; nil disables key matching
//
// Returns:
//   - license.Store: The store
//   - error: ExitError with ExitConfigError when the file cannot be read
func loadLicenses(cfg *config.Config, keys map[string]string) (license.Store, error) {
	if cfg.Licenses == "" {
		return license.None{}, nil
	}

	path := cfg.ResolvePath(cfg.Licenses)
	store, err := license.LoadFile(path)
	if err != nil {
		return nil, errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to load licenses: %w", err))
	}
	verbose.Infof("Loaded %d license record(s) from %s", store.Len(), path)

	if keys != nil {
		return license.ForKeys(store, keys), nil
	}
	return store, nil
}

// parseFormatFlag parses a --format value as a usage error.
func parseFormatFlag(value string) (output.Format, error) {
	format, err := output.ParseFormat(value)
	if err != nil {
		return "", errors.NewExitError(errors.ExitConfigError, err)
	}
	return format, nil
}
