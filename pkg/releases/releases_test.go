package releases

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/updatecheck/pkg/changelog"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/testutil"
	"github.com/ajxudir/updatecheck/pkg/version"
	"github.com/ajxudir/updatecheck/pkg/warnings"
)

func versionsOf(list []Release) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.Version)
	}
	return out
}

func ptr(v version.Version) *version.Version { return &v }

// TestBuildDescendingAndUnique tests ordering and deduplication.
//
// It verifies:
//   - Output is strictly descending
//   - Formatting variants of one version appear once (first occurrence kept)
//   - The installed version itself is dropped
func TestBuildDescendingAndUnique(t *testing.T) {
	reg := testutil.NewRegistry().Raw().
		WithVersions("vendor/pkg", "1.1.0", "1.0.1", "1.1", "1.2.0", "1.0.0")

	list, err := NewBuilder(reg, nil).Build(context.Background(), "vendor/pkg", version.MustParse("1.0.0"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2.0", "1.1.0", "1.0.1"}, versionsOf(list))

	keys := map[string]bool{}
	for i, r := range list {
		assert.False(t, keys[r.Key], "duplicate key %s", r.Key)
		keys[r.Key] = true
		if i > 0 {
			assert.True(t, version.MustParse(list[i-1].Version).Greater(version.MustParse(r.Version)))
		}
	}
	assert.Equal(t, 0, reg.CallCount("changelog"), "nil parser skips the changelog")
}

// TestBuildEmpty tests that an up-to-date component gets an empty, non-nil list.
func TestBuildEmpty(t *testing.T) {
	reg := testutil.NewRegistry().WithVersions("vendor/pkg", "1.0.0")
	parser := &testutil.FakeParser{}

	list, err := NewBuilder(reg, parser).Build(context.Background(), "vendor/pkg", version.MustParse("1.0.0"), nil)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Equal(t, 0, reg.CallCount("changelog"))
	assert.Equal(t, 0, parser.Calls())
}

// TestBuildStabilityFilter tests that pre-releases are dropped for a stable install.
//
// It verifies:
//   - The registry is asked with the installed version's stability
//   - Pre-releases returned by the registry are filtered out
func TestBuildStabilityFilter(t *testing.T) {
	reg := testutil.NewRegistry().Raw().
		WithVersions("vendor/plugin", "1.2.1", "1.3.0-beta.1", "1.3.0")

	list, err := NewBuilder(reg, nil).Build(context.Background(), "vendor/plugin", version.MustParse("1.2.0"), ptr(version.MustParse("1.3.0")))
	require.NoError(t, err)
	assert.Equal(t, []string{"1.3.0", "1.2.1"}, versionsOf(list))

	calls := reg.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, "between", calls[0].Op)
	assert.Equal(t, version.Stable, calls[0].Min)
}

// TestBuildBetweenBound tests that versions above the target are dropped.
func TestBuildBetweenBound(t *testing.T) {
	reg := testutil.NewRegistry().Raw().
		WithVersions("craftcms/cms", "3.0.40", "3.0.41", "3.0.41.1", "3.1.0")

	list, err := NewBuilder(reg, nil).Build(context.Background(), "craftcms/cms", version.MustParse("3.0.10"), ptr(version.MustParse("3.0.41.1")))
	require.NoError(t, err)
	assert.Equal(t, []string{"3.0.41.1", "3.0.41", "3.0.40"}, versionsOf(list))
}

// TestBuildDevAcceptsAll tests that a dev install sees every tier.
func TestBuildDevAcceptsAll(t *testing.T) {
	reg := testutil.NewRegistry().WithVersions("vendor/pkg", "2.0.0-alpha1", "2.0.0-beta1", "2.0.0")

	list, err := NewBuilder(reg, nil).Build(context.Background(), "vendor/pkg", version.MustParse("2.0.0-dev"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0.0", "2.0.0-beta1", "2.0.0-alpha1"}, versionsOf(list))
}

// TestBuildLeftJoin tests changelog enrichment.
//
// It verifies:
//   - The changelog of the newest release is fetched
//   - Matching entries set metadata, others leave it nil
//   - Entries for versions outside the list are discarded
func TestBuildLeftJoin(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("vendor/pkg", "1.2.4", "1.2.5", "1.3.0").
		WithChangelog("vendor/pkg", "1.2.5", "raw changelog")
	parser := &testutil.FakeParser{Entries: map[string]changelog.Entry{
		"1.2.5.0": {Version: "1.2.5", Critical: true, Notes: "- security fix"},
		"1.3.0.0": {Version: "1.3.0", Notes: "- not reachable"},
	}}

	list, err := NewBuilder(reg, parser).Build(context.Background(), "vendor/pkg", version.MustParse("1.2.3"), ptr(version.MustParse("1.2.5")))
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "1.2.5", list[0].Version)
	require.NotNil(t, list[0].Metadata)
	assert.True(t, list[0].Metadata.Critical)
	assert.Equal(t, "- security fix", list[0].Metadata.Notes)

	assert.Equal(t, "1.2.4", list[1].Version)
	assert.Nil(t, list[1].Metadata)

	for _, r := range list {
		assert.NotEqual(t, "1.3.0", r.Version)
	}

	calls := reg.Calls()
	assert.Equal(t, "changelog", calls[len(calls)-1].Op)
	assert.Equal(t, "1.2.5", calls[len(calls)-1].From)
	assert.Equal(t, 1, parser.Calls())
}

// TestBuildWithMarkdownParser tests enrichment end to end with the default parser.
func TestBuildWithMarkdownParser(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("craftcms/cms", "3.1.33", "3.1.34").
		WithChangelog("craftcms/cms", "3.1.34", "## 3.1.34 - 2019-06-25 [CRITICAL]\n- fix\n\n## 3.1.33 - 2019-06-18\n- change\n\n## 3.1.32\n- old\n")

	list, err := NewBuilder(reg, changelog.NewMarkdownParser()).Build(context.Background(), "craftcms/cms", version.MustParse("3.1.32"), nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Metadata)
	assert.True(t, list[0].Metadata.Critical)
	require.NotNil(t, list[0].Metadata.Date)
	require.NotNil(t, list[1].Metadata)
	assert.Equal(t, "- change", list[1].Metadata.Notes)
}

// TestBuildRegistryError tests that range query failures are registry errors.
func TestBuildRegistryError(t *testing.T) {
	reg := testutil.NewRegistry().WithError("after", "vendor/pkg", stderrors.New("connection refused"))

	_, err := NewBuilder(reg, nil).Build(context.Background(), "vendor/pkg", version.MustParse("1.0"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRegistryUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

// TestBuildChangelogUnavailable tests that changelog failures are not fatal.
//
// It verifies:
//   - A registry changelog failure warns and leaves metadata empty
//   - A parser failure warns and leaves metadata empty
//   - A missing changelog is silent
func TestBuildChangelogUnavailable(t *testing.T) {
	var buf bytes.Buffer
	restore := warnings.SetWarningWriter(&buf)
	defer restore()

	reg := testutil.NewRegistry().
		WithVersions("vendor/pkg", "1.1.0").
		WithError("changelog", "vendor/pkg", stderrors.New("404 not found"))
	list, err := NewBuilder(reg, &testutil.FakeParser{}).Build(context.Background(), "vendor/pkg", version.MustParse("1.0"), nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Metadata)
	assert.Contains(t, buf.String(), "unavailable")

	buf.Reset()
	reg = testutil.NewRegistry().
		WithVersions("vendor/pkg", "1.1.0").
		WithChangelog("vendor/pkg", "1.1.0", "text")
	list, err = NewBuilder(reg, &testutil.FakeParser{Err: stderrors.New("bad markdown")}).Build(context.Background(), "vendor/pkg", version.MustParse("1.0"), nil)
	require.NoError(t, err)
	assert.Nil(t, list[0].Metadata)
	assert.Contains(t, buf.String(), "ignored")

	buf.Reset()
	parser := &testutil.FakeParser{}
	reg = testutil.NewRegistry().WithVersions("vendor/pkg", "1.1.0")
	_, err = NewBuilder(reg, parser).Build(context.Background(), "vendor/pkg", version.MustParse("1.0"), nil)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
	assert.Equal(t, 0, parser.Calls())
}

// TestBuildChangelogTimeout tests that a context error during the changelog fetch fails the build.
func TestBuildChangelogTimeout(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("vendor/pkg", "1.1.0").
		WithError("changelog", "vendor/pkg", context.DeadlineExceeded)

	_, err := NewBuilder(reg, &testutil.FakeParser{}).Build(context.Background(), "vendor/pkg", version.MustParse("1.0"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, errors.IsRegistryUnavailable(err))
}
