package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleRegistryYAML is a registry fixture covering the common resolution
// cases:
//   - craftcms/cms 3.0.10 sits inside the 3.0.41.1 breakpoint
//   - craftcms/commerce 1.2.0 sees 1.2.1 and 1.3.0 but not 2.0.0-beta.1
//   - the commerce changelog has an entry for an unlisted release
//   - seo has a release that needs a newer host than 3.1.40
const SampleRegistryYAML = `host_package: craftcms/cms
plugins:
  commerce: craftcms/commerce
  seo: nystudio107/craft-seomatic
packages:
  craftcms/cms:
    versions:
      - 3.0.0
      - 3.0.10
      - 3.0.40
      - 3.0.41
      - 3.0.41.1
      - 3.1.0
      - 3.1.20
      - 3.1.34
      - 3.1.40
      - 3.2.0-beta.1
    changelog: |
      # Release Notes for Craft CMS 3

      ## 3.1.40 - 2019-03-19
      - Fixed a bug where entries could not be saved.

      ## 3.1.34 - 2019-02-26 [CRITICAL]
      - Fixed an XSS vulnerability.

      ## 3.0.41.1 - 2019-02-01
      - Prepared the database for 3.1.

      ## 3.0.41 - 2019-01-29
      - Fixed a bug.
  craftcms/commerce:
    versions:
      - 1.2.0
      - version: 1.2.1
        requires:
          craftcms/cms: ^3.0.0
      - version: 1.3.0
        requires:
          craftcms/cms: ^3.1.0
      - version: 2.0.0-beta.1
        requires:
          craftcms/cms: ^3.1.0
    changelog: |
      ## 1.4.0 - 2019-04-01 [CRITICAL]
      - Unreleased security fix.

      ## 1.3.0 - 2019-03-01
      - Added order notes.

      ## 1.2.1 - 2019-02-01
      - Fixed tax rounding.
  nystudio107/craft-seomatic:
    versions:
      - version: 3.1.0
        requires:
          craftcms/cms: ^3.1.0
      - version: 3.2.0
        requires:
          craftcms/cms: ^3.1.0
      - version: 4.0.0
        requires:
          craftcms/cms: ^3.2.0
`

// SampleLicensesYAML is a license fixture where commerce has expired and
// seo is licensed under a key.
const SampleLicensesYAML = `licenses:
  commerce:
    expired: true
    renewal_url: https://id.example.com/licenses/commerce
    renewal_price: 99
  seo:
    key: SEO-KEY
    expired: true
    renewal_url: https://id.example.com/licenses/seo
    renewal_price: 59
    renewal_currency: EUR
`

// WriteFile writes content to dir/name, creating parent directories, and
// returns the path.
//
// Parameters:
//   - t: Testing instance; the test fails on I/O errors
//   - dir: Base directory, typically t.TempDir()
//   - name: Relative file name
//   - content: File content
//
// Returns:
//   - string: Path of the written file
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WriteSampleFixtures writes SampleRegistryYAML and SampleLicensesYAML into
// dir as registry.yml and licenses.yml.
//
// Returns:
//   - registryPath: Path of the registry fixture
//   - licensesPath: Path of the license fixture
func WriteSampleFixtures(t *testing.T, dir string) (registryPath, licensesPath string) {
	t.Helper()
	return WriteFile(t, dir, "registry.yml", SampleRegistryYAML),
		WriteFile(t, dir, "licenses.yml", SampleLicensesYAML)
}
