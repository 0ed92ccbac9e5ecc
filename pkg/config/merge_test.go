package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMergeConfigs tests the behavior of mergeConfigs.
//
// It verifies:
//   - Scalars from custom override base when set
//   - Plugins merge per handle and breakpoints per package
//   - Registry settings merge field by field
//   - Security settings come only from custom
//   - A nil custom returns base
func TestMergeConfigs(t *testing.T) {
	two := 2
	base := &Config{
		Core:            CoreCfg{Handle: "craft", Package: "craftcms/cms"},
		Plugins:         map[string]string{"commerce": "craftcms/commerce", "seo": "vendor/seo"},
		Breakpoints:     map[string][]BreakpointCfg{"craftcms/cms": {{Lower: "3.1.20", Upper: "3.1.34", Target: "3.1.34"}}, "vendor/seo": {{Lower: "1.0", Upper: "2.0", Target: "2.0"}}},
		PackageName:     &PackageNameCfg{Since: "3.1.21", Exclude: []string{"3.2.0-alpha.1"}},
		RenewalCurrency: "USD",
		Concurrency:     8,
		Registry:        RegistryCfg{Source: "packagist", URL: "https://repo.packagist.org", TimeoutSeconds: 30, MaxRetries: &two},
		Security:        &SecurityCfg{AllowPathTraversal: true},
	}
	custom := &Config{
		Core:        CoreCfg{Package: "acme/host"},
		Plugins:     map[string]string{"seo": "other/seo"},
		Breakpoints: map[string][]BreakpointCfg{"vendor/seo": {}},
		PackageName: &PackageNameCfg{Since: "4.0.0"},
		Registry:    RegistryCfg{Source: "file", Path: "registry.yml"},
	}

	merged := mergeConfigs(base, custom)

	assert.Equal(t, CoreCfg{Handle: "craft", Package: "acme/host"}, merged.Core)
	assert.Equal(t, map[string]string{"commerce": "craftcms/commerce", "seo": "other/seo"}, merged.Plugins)
	assert.Len(t, merged.Breakpoints["craftcms/cms"], 1)
	assert.Empty(t, merged.Breakpoints["vendor/seo"])
	assert.Contains(t, merged.Breakpoints, "vendor/seo")
	assert.Equal(t, &PackageNameCfg{Since: "4.0.0", Exclude: []string{"3.2.0-alpha.1"}}, merged.PackageName)
	assert.Equal(t, "USD", merged.RenewalCurrency)
	assert.Equal(t, 8, merged.Concurrency)
	assert.Equal(t, RegistryCfg{Source: "file", Path: "registry.yml", URL: "https://repo.packagist.org", TimeoutSeconds: 30, MaxRetries: &two}, merged.Registry)
	assert.Nil(t, merged.Security)

	assert.Same(t, base, mergeConfigs(base, nil))
	assert.Equal(t, "vendor/seo", base.Plugins["seo"], "base must not be modified")
}

func TestMergePackageName(t *testing.T) {
	custom := &PackageNameCfg{Exclude: []string{}}
	assert.Same(t, custom, mergePackageName(nil, custom))

	merged := mergePackageName(&PackageNameCfg{Since: "3.1.21", Exclude: []string{"3.2.0-alpha.1"}}, custom)
	assert.Equal(t, "3.1.21", merged.Since)
	assert.Empty(t, merged.Exclude, "an explicit empty exclude list clears inherited exclusions")
}
