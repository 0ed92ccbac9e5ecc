package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/updatecheck/pkg/version"
)

// TestParseConstraint tests Composer requirement normalization.
//
// It verifies:
//   - Empty and "*" requirements match any host
//   - Single and double pipes are both alternation
//   - Stability flags are ignored
//   - Four-segment hosts are compared on three segments
func TestParseConstraint(t *testing.T) {
	tests := []struct {
		req   string
		host  string
		match bool
	}{
		{"", "1.0.0", true},
		{"*", "9.9.9", true},
		{"^3.1", "3.1.40", true},
		{"^3.1", "3.0.41.1", false},
		{"^3.0.41", "3.0.41.1", true},
		{"~3.1.0", "3.2.0", false},
		{"^2.0|^3.0", "3.5.0", true},
		{"^2.0 || ^3.0", "2.1.0", true},
		{"^3.0@beta", "3.1.0", true},
		{">=3.2, <4", "3.9.0", true},
		{">=3.2 <4", "4.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.req+"@"+tt.host, func(t *testing.T) {
			c, err := parseConstraint(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.match, hostSatisfies(c, version.MustParse(tt.host)))
		})
	}

	_, err := parseConstraint("dev-main as banana")
	assert.Error(t, err)
}

// stableInstall is an installed version on the stable channel.
var stableInstall = version.MustParse("0.1.0")

// TestLatestCompatiblePrefersStable tests the stable-first fallback.
func TestLatestCompatiblePrefersStable(t *testing.T) {
	rels := []release{
		{version: version.MustParse("1.0.0")},
		{version: version.MustParse("2.0.0-beta.1")},
	}
	v, ok := latestCompatible(rels, version.MustParse("3.0.0"), stableInstall)
	require.True(t, ok)
	assert.Equal(t, "1.0.0", v.Original())

	v, ok = latestCompatible(rels[1:], version.MustParse("3.0.0"), stableInstall)
	require.True(t, ok)
	assert.Equal(t, "2.0.0-beta.1", v.Original())

	_, ok = latestCompatible(nil, version.MustParse("3.0.0"), stableInstall)
	assert.False(t, ok)
}

// TestLatestCompatiblePrereleaseInstall tests the choice for installations
// running a pre-release.
//
// It verifies:
//   - A pre-release newer than every compatible stable release keeps the
//     newest pre-release as the bound
//   - A stable release newer than the installed pre-release still wins
func TestLatestCompatiblePrereleaseInstall(t *testing.T) {
	host := version.MustParse("3.1.40")
	rels := []release{
		{version: version.MustParse("1.9.0")},
		{version: version.MustParse("2.0.0-beta.3")},
		{version: version.MustParse("2.0.0-beta.2")},
	}

	v, ok := latestCompatible(rels, host, version.MustParse("2.0.0-beta.1"))
	require.True(t, ok)
	assert.Equal(t, "2.0.0-beta.3", v.Original())

	v, ok = latestCompatible(rels, host, version.MustParse("1.9.0-rc.1"))
	require.True(t, ok)
	assert.Equal(t, "1.9.0", v.Original())

	withFinal := append(rels, release{version: version.MustParse("2.0.0")})
	v, ok = latestCompatible(withFinal, host, version.MustParse("2.0.0-beta.1"))
	require.True(t, ok)
	assert.Equal(t, "2.0.0", v.Original())
}

// TestFilterRange tests the shared range filter.
func TestFilterRange(t *testing.T) {
	vs := []version.Version{
		version.MustParse("1.0.0"),
		version.MustParse("1.1.0-RC1"),
		version.MustParse("1.1.0"),
		version.MustParse("1.2.0"),
	}
	to := version.MustParse("1.1.0")

	got := filterRange(vs, version.MustParse("1.0.0"), &to, version.RC)
	assert.Equal(t, []string{"1.1.0-RC1", "1.1.0"}, []string{got[0].Original(), got[1].Original()})
	assert.Len(t, filterRange(vs, version.MustParse("1.0.0"), nil, version.Stable), 2)
}
