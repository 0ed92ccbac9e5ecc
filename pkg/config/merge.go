package config

import "github.com/ajxudir/updatecheck/pkg/verbose"

// mergeConfigs merges two configurations with custom taking precedence.
//
// Scalars in custom replace base values when set. Plugins merge per handle
// and breakpoints merge per package, so a package listed in custom replaces
// all of its base rules. Security settings are never merged; they are read
// from the root config only.
//
// Parameters:
//   - base: the base configuration
//   - custom: the custom configuration that overrides base
//
// Returns:
//   - *Config: the merged configuration
func mergeConfigs(base, custom *Config) *Config {
	if custom == nil {
		return base
	}

	merged := &Config{
		WorkingDir:      firstNonEmpty(custom.WorkingDir, base.WorkingDir),
		Core:            mergeCore(base.Core, custom.Core),
		HostPackage:     firstNonEmpty(custom.HostPackage, base.HostPackage),
		Plugins:         make(map[string]string, len(base.Plugins)+len(custom.Plugins)),
		Breakpoints:     make(map[string][]BreakpointCfg, len(base.Breakpoints)+len(custom.Breakpoints)),
		PackageName:     base.PackageName,
		RenewalCurrency: firstNonEmpty(custom.RenewalCurrency, base.RenewalCurrency),
		Concurrency:     base.Concurrency,
		Registry:        mergeRegistry(base.Registry, custom.Registry),
		Licenses:        firstNonEmpty(custom.Licenses, base.Licenses),
		Security:        custom.Security,
		isRootConfig:    custom.isRootConfig,
	}

	for handle, pkg := range base.Plugins {
		merged.Plugins[handle] = pkg
	}
	for handle, pkg := range custom.Plugins {
		if existing, ok := merged.Plugins[handle]; ok && existing != pkg {
			verbose.Printf("Plugin %q: %s replaced by %s", handle, existing, pkg)
		}
		merged.Plugins[handle] = pkg
	}

	for pkg, rules := range base.Breakpoints {
		merged.Breakpoints[pkg] = rules
	}
	for pkg, rules := range custom.Breakpoints {
		if _, ok := merged.Breakpoints[pkg]; ok {
			verbose.Printf("Breakpoints for %s: %d inherited rules replaced by %d", pkg, len(merged.Breakpoints[pkg]), len(rules))
		}
		merged.Breakpoints[pkg] = rules
	}

	if custom.PackageName != nil {
		merged.PackageName = mergePackageName(base.PackageName, custom.PackageName)
	}
	if custom.Concurrency != 0 {
		merged.Concurrency = custom.Concurrency
	}

	return merged
}

func mergeCore(base, custom CoreCfg) CoreCfg {
	return CoreCfg{
		Handle:  firstNonEmpty(custom.Handle, base.Handle),
		Package: firstNonEmpty(custom.Package, base.Package),
	}
}

func mergePackageName(base, custom *PackageNameCfg) *PackageNameCfg {
	if base == nil {
		return custom
	}
	merged := &PackageNameCfg{
		Since:   firstNonEmpty(custom.Since, base.Since),
		Exclude: base.Exclude,
	}
	if custom.Exclude != nil {
		merged.Exclude = custom.Exclude
	}
	return merged
}

// mergeRegistry merges registry settings field by field. Switching the
// source does not drop inherited settings of the other source.
func mergeRegistry(base, custom RegistryCfg) RegistryCfg {
	merged := RegistryCfg{
		Source:         firstNonEmpty(custom.Source, base.Source),
		Path:           firstNonEmpty(custom.Path, base.Path),
		URL:            firstNonEmpty(custom.URL, base.URL),
		ChangelogURL:   firstNonEmpty(custom.ChangelogURL, base.ChangelogURL),
		TimeoutSeconds: base.TimeoutSeconds,
		MaxRetries:     base.MaxRetries,
	}
	if custom.TimeoutSeconds != 0 {
		merged.TimeoutSeconds = custom.TimeoutSeconds
	}
	if custom.MaxRetries != nil {
		merged.MaxRetries = custom.MaxRetries
	}
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
