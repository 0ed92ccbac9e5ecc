package changelog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/updatecheck/pkg/version"
)

const sampleChangelog = `# Release Notes for Craft CMS 3.x

## Unreleased

### Added
- Something not yet shipped.

## 3.1.34 - 2019-06-25 [CRITICAL]

### Security
- Fixed an XSS vulnerability.

## [3.1.33] - 2019-06-18

### Changed
- Improved performance.

## Craft CMS 3.1.32.1

- Hotfix.

## 3.1.31 - June 4, 2019
- Older release.

## 3.1.30 - someday
- Unparsable date.
`

// TestMarkdownParserParse tests the behavior of MarkdownParser.Parse.
//
// It verifies:
//   - Entries are keyed by normalized version
//   - Headings without a version ("Unreleased") are skipped
//   - Releases at or below the lower bound are skipped
//   - Critical markers, dates and notes are extracted
func TestMarkdownParserParse(t *testing.T) {
	entries, err := NewMarkdownParser().Parse(sampleChangelog, version.MustParse("3.1.30"))
	require.NoError(t, err)

	assert.Len(t, entries, 4)
	assert.NotContains(t, entries, "3.1.30.0")

	latest, ok := entries["3.1.34.0"]
	require.True(t, ok)
	assert.Equal(t, "3.1.34", latest.Version)
	assert.True(t, latest.Critical)
	require.NotNil(t, latest.Date)
	assert.Equal(t, time.Date(2019, 6, 25, 0, 0, 0, 0, time.UTC), *latest.Date)
	assert.Equal(t, "### Security\n- Fixed an XSS vulnerability.", latest.Notes)

	bracketed := entries["3.1.33.0"]
	assert.Equal(t, "3.1.33", bracketed.Version)
	assert.False(t, bracketed.Critical)
	require.NotNil(t, bracketed.Date)

	prefixed := entries["3.1.32.1"]
	assert.Equal(t, "- Hotfix.", prefixed.Notes)
	assert.Nil(t, prefixed.Date)

	longDate := entries["3.1.31.0"]
	require.NotNil(t, longDate.Date)
	assert.Equal(t, time.June, longDate.Date.Month())
}

// TestMarkdownParserUnparsableDate tests that a bad date is absent, not an error.
func TestMarkdownParserUnparsableDate(t *testing.T) {
	entries, err := NewMarkdownParser().Parse(sampleChangelog, version.MustParse("3.0.0"))
	require.NoError(t, err)

	entry, ok := entries["3.1.30.0"]
	require.True(t, ok)
	assert.Nil(t, entry.Date)
	assert.Equal(t, "- Unparsable date.", entry.Notes)
}

// TestMarkdownParserUnsorted tests that section order does not matter.
func TestMarkdownParserUnsorted(t *testing.T) {
	raw := "## 1.0.0\n- old\n\n## 1.2.0\n- newest\n\n## 1.1.0 [critical]\n- middle\n"

	entries, err := NewMarkdownParser().Parse(raw, version.MustParse("1.0.0"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.True(t, entries["1.1.0.0"].Critical)
	assert.Equal(t, "- newest", entries["1.2.0.0"].Notes)
}

// TestMarkdownParserDuplicates tests that the first section of a repeated version wins.
func TestMarkdownParserDuplicates(t *testing.T) {
	raw := "## 2.0.0\nfirst\n## v2.0\nsecond\n"

	entries, err := NewMarkdownParser().Parse(raw, version.MustParse("1.0"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "first", entries["2.0.0.0"].Notes)
}

// TestMarkdownParserCRLFAndEmpty tests line ending handling and empty input.
func TestMarkdownParserCRLFAndEmpty(t *testing.T) {
	entries, err := NewMarkdownParser().Parse("## 1.1.0 - 2020-01-02\r\n- fix\r\n", version.MustParse("1.0"))
	require.NoError(t, err)
	assert.Equal(t, "- fix", entries["1.1.0.0"].Notes)

	entries, err = NewMarkdownParser().Parse("", version.MustParse("1.0"))
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

// TestMarkdownParserMaxSize tests the size guard.
func TestMarkdownParserMaxSize(t *testing.T) {
	p := &MarkdownParser{MaxSize: 16}
	_, err := p.Parse(strings.Repeat("x", 17), version.MustParse("1.0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

// TestParseDateLayouts tests each accepted date layout.
func TestParseDateLayouts(t *testing.T) {
	for _, raw := range []string{"2019-06-25", "2019-06-25T10:00:00Z", "June 25, 2019", "Jun 25, 2019"} {
		got := parseDate(raw)
		require.NotNil(t, got, raw)
		assert.Equal(t, 25, got.Day(), raw)
	}
	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("yesterday"))
}
