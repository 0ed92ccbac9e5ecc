package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/updatecheck/pkg/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadConfigComplete tests the behavior of LoadConfig with various scenarios.
//
// It verifies:
//   - Default config loads successfully with working directory
//   - A local .updatecheck.yml is picked up without --config
//   - Explicit config files are loaded correctly
//   - Nonexistent config files return an error
//   - Default config fallback works with invalid default YAML
func TestLoadConfigComplete(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfg, err := LoadConfig("", tmpDir)
		require.NoError(t, err)
		assert.Equal(t, tmpDir, cfg.WorkingDir)
		assert.Equal(t, "craftcms/cms", cfg.GetCorePackage())
		assert.Len(t, cfg.Breakpoints["craftcms/cms"], 2)
		assert.Equal(t, RegistrySourcePackagist, cfg.GetRegistrySource())
		assert.Equal(t, 30*time.Second, cfg.GetTimeout())
		assert.True(t, cfg.IsRootConfig())
	})

	t.Run("local config", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeConfig(t, tmpDir, LocalConfigName, "renewal_currency: EUR\nconcurrency: 2\n")

		cfg, err := LoadConfig("", tmpDir)
		require.NoError(t, err)
		assert.Equal(t, "EUR", cfg.GetRenewalCurrency())
		assert.Equal(t, 2, cfg.GetConcurrency())
		assert.Empty(t, cfg.Breakpoints, "a config without extends stands alone")
	})

	t.Run("explicit config", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := writeConfig(t, tmpDir, "custom.yml", "registry:\n  source: file\n  path: fixtures/registry.yml\nlicenses: licenses.yml\n")

		cfg, err := LoadConfig(path, tmpDir)
		require.NoError(t, err)
		assert.Equal(t, RegistrySourceFile, cfg.GetRegistrySource())
		assert.Equal(t, filepath.Join(tmpDir, "fixtures", "registry.yml"), cfg.Registry.Path)
		assert.Equal(t, filepath.Join(tmpDir, "licenses.yml"), cfg.Licenses)
	})

	t.Run("nonexistent config", func(t *testing.T) {
		cfg, err := LoadConfig("/nonexistent/config.yml", t.TempDir())
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("invalid config", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := writeConfig(t, tmpDir, "bad.yml", "registry:\n  source: ftp\n")

		_, err := LoadConfig(path, tmpDir)
		require.Error(t, err)
		ve, ok := errors.IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "registry.source", ve.Field)
		assert.Equal(t, errors.ExitConfigError, errors.GetExitCode(err))
	})

	t.Run("default config fallback", func(t *testing.T) {
		original := defaultConfigYAML
		defaultConfigYAML = "invalid: ["
		defer func() { defaultConfigYAML = original }()

		cfg := loadDefaultConfig()
		require.NotNil(t, cfg)
		assert.Empty(t, cfg.Breakpoints)
		assert.Equal(t, "craft", cfg.GetCoreHandle())
	})
}

// TestLoadConfigExtends tests the extends inheritance chain.
//
// It verifies:
//   - "default" pulls in the built-in breakpoints
//   - Files merge in order, with the extending config on top
//   - Relative paths stay anchored to the file that declared them
func TestLoadConfigExtends(t *testing.T) {
	tmpDir := t.TempDir()
	sharedDir := filepath.Join(tmpDir, "shared")
	require.NoError(t, os.MkdirAll(sharedDir, 0o755))

	writeConfig(t, sharedDir, "base.yml", `extends: [default]
plugins:
  commerce: craftcms/commerce
  seo: vendor/seo
registry:
  source: file
  path: registry.yml
`)
	path := writeConfig(t, tmpDir, LocalConfigName, `extends: [shared/base.yml]
plugins:
  seo: nystudio107/craft-seomatic
breakpoints:
  craftcms/commerce:
    - lower: 2.0.0
      upper: 2.1.5
      target: 2.1.5
`)

	cfg, err := LoadConfig(path, tmpDir)
	require.NoError(t, err)

	assert.Empty(t, cfg.Extends)
	assert.Equal(t, map[string]string{
		"commerce": "craftcms/commerce",
		"seo":      "nystudio107/craft-seomatic",
	}, cfg.Plugins)
	assert.Len(t, cfg.Breakpoints["craftcms/cms"], 2)
	assert.Len(t, cfg.Breakpoints["craftcms/commerce"], 1)
	assert.Equal(t, filepath.Join(sharedDir, "registry.yml"), cfg.Registry.Path)
	assert.Equal(t, "USD", cfg.GetRenewalCurrency())
}

// TestLoadConfigExtendsSecurity tests the extends path policy.
//
// It verifies:
//   - Path traversal and absolute paths are rejected by default
//   - The root config can allow them
//   - Cycles are detected
//   - Missing files fail loading
func TestLoadConfigExtendsSecurity(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeConfig(t, tmpDir, "parent.yml", "renewal_currency: GBP\n")

	t.Run("path traversal", func(t *testing.T) {
		path := writeConfig(t, nested, "traverse.yml", "extends: [../parent.yml]\n")
		_, err := LoadConfig(path, nested)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path traversal not allowed")

		path = writeConfig(t, nested, "allowed.yml", "extends: [../parent.yml]\nsecurity:\n  allow_path_traversal: true\n")
		cfg, err := LoadConfig(path, nested)
		require.NoError(t, err)
		assert.Equal(t, "GBP", cfg.GetRenewalCurrency())
	})

	t.Run("absolute path", func(t *testing.T) {
		abs := filepath.Join(tmpDir, "parent.yml")
		path := writeConfig(t, nested, "absolute.yml", "extends: ['"+abs+"']\n")
		_, err := LoadConfig(path, nested)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "absolute paths not allowed")
	})

	t.Run("cycle", func(t *testing.T) {
		writeConfig(t, tmpDir, "a.yml", "extends: [b.yml]\n")
		path := writeConfig(t, tmpDir, "b.yml", "extends: [a.yml]\n")
		_, err := LoadConfig(path, tmpDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cyclic extends")
	})

	t.Run("missing", func(t *testing.T) {
		path := writeConfig(t, tmpDir, "missing.yml", "extends: [nope.yml]\n")
		_, err := LoadConfig(path, tmpDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to resolve extend")
	})
}

// TestLoadConfigFileSizeLimit tests the config file size guard.
func TestLoadConfigFileSizeLimit(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeConfig(t, tmpDir, "big.yml", "# "+strings.Repeat("x", 200)+"\n")

	_, err := loadConfigFileWithLimit(path, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file too large")
	assert.Contains(t, err.Error(), "max_config_file_size")
}

// TestLoadConfigFileStrict tests unknown field detection.
func TestLoadConfigFileStrict(t *testing.T) {
	tmpDir := t.TempDir()

	path := writeConfig(t, tmpDir, "typo.yml", "renewalCurrency: EUR\n")
	_, err := LoadConfigFileStrict(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean 'renewal_currency'")

	path = writeConfig(t, tmpDir, "ok.yml", "licenses: licenses.yml\n")
	cfg, err := LoadConfigFileStrict(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "licenses.yml"), cfg.Licenses)
}

// TestEmbeddedConfigs tests that the embedded YAML is valid.
func TestEmbeddedConfigs(t *testing.T) {
	assert.False(t, ValidateConfigFile([]byte(GetDefaultConfig())).HasErrors())
	assert.False(t, ValidateConfigFile([]byte(GetTemplateConfig())).HasErrors())
	assert.Contains(t, GetTemplateConfig(), "extends: [default]")
}
