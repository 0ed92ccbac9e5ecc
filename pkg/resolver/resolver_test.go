package resolver

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/updatecheck/pkg/breakpoint"
	"github.com/ajxudir/updatecheck/pkg/changelog"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/license"
	"github.com/ajxudir/updatecheck/pkg/registry"
	"github.com/ajxudir/updatecheck/pkg/releases"
	"github.com/ajxudir/updatecheck/pkg/testutil"
	"github.com/ajxudir/updatecheck/pkg/version"
)

func releaseVersions(list []releases.Release) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.Version)
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func newTestResolver(reg *testutil.FakeRegistry, catalog registry.MapCatalog) *Resolver {
	return New(reg, nil, catalog)
}

// TestResolveCoreBreakpoint tests a core installation inside the 3.0 breakpoint.
//
// It verifies:
//   - Status is breakpoint with the rule's target
//   - Releases are bounded by the target and newest first
//   - An old core does not get the package name
func TestResolveCoreBreakpoint(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("craftcms/cms", "3.0.10", "3.0.20", "3.0.41", "3.0.41.1", "3.1.0")

	result, err := newTestResolver(reg, nil).Resolve(context.Background(), Request{CoreVersion: "3.0.10"})
	require.NoError(t, err)

	assert.Equal(t, StatusBreakpoint, result.Core.Status)
	assert.Equal(t, "3.0.41.1", result.Core.ToVersion)
	assert.Equal(t, []string{"3.0.41.1", "3.0.41", "3.0.20"}, releaseVersions(result.Core.Releases))
	assert.Empty(t, result.Core.PackageName)
	assert.Nil(t, result.Core.Renewal)
	assert.Empty(t, result.Plugins)
}

// TestResolveCoreUnbounded tests a core installation outside every breakpoint.
func TestResolveCoreUnbounded(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("craftcms/cms", "3.1.34", "3.1.35", "3.2.0-beta.1", "3.2.0")

	result, err := newTestResolver(reg, nil).Resolve(context.Background(), Request{CoreVersion: "3.1.34"})
	require.NoError(t, err)

	assert.Equal(t, StatusEligible, result.Core.Status)
	assert.Empty(t, result.Core.ToVersion)
	assert.Equal(t, []string{"3.2.0", "3.1.35"}, releaseVersions(result.Core.Releases))
	assert.Equal(t, "craftcms/cms", result.Core.PackageName)
	assert.Equal(t, 1, reg.CallCount("after"))
}

// TestResolvePluginStability tests that a stable plugin skips pre-releases.
//
// It verifies:
//   - Plugins are bounded by the newest host-compatible release
//   - Pre-releases are excluded for a stable installed version
func TestResolvePluginStability(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("craftcms/commerce", "1.2.0", "1.2.1", "1.3.0-beta.1", "1.3.0").
		WithLatestCompatible("craftcms/commerce", "1.3.0")

	result, err := newTestResolver(reg, registry.MapCatalog{"commerce": "craftcms/commerce"}).
		Resolve(context.Background(), Request{
			CoreVersion: "3.1.40",
			Plugins:     []PluginInstall{{Handle: "commerce", Version: "1.2.0"}},
		})
	require.NoError(t, err)
	require.Len(t, result.Plugins, 1)

	outcome := result.Plugins[0]
	require.NoError(t, outcome.Err)
	require.NotNil(t, outcome.Info)
	assert.Equal(t, StatusEligible, outcome.Info.Status)
	assert.Equal(t, "1.3.0", outcome.Info.ToVersion)
	assert.Equal(t, []string{"1.3.0", "1.2.1"}, releaseVersions(outcome.Info.Releases))
	assert.Equal(t, "craftcms/commerce", outcome.Info.PackageName)
}

// TestResolveExpiredLicense tests renewal details for expired licenses.
//
// It verifies:
//   - Expired overrides the computed status
//   - The currency falls back to the configured renewal currency
//   - A license-supplied currency wins
//   - Non-expired components carry no renewal
func TestResolveExpiredLicense(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("craftcms/cms", "3.0.41.1").
		WithVersions("craftcms/commerce", "2.0.1").
		WithLatestCompatible("craftcms/commerce", "2.0.1").
		WithVersions("vendor/seo", "1.1.0").
		WithLatestCompatible("vendor/seo", "1.1.0")

	r := newTestResolver(reg, registry.MapCatalog{"commerce": "craftcms/commerce", "seo": "vendor/seo"})
	r.Licenses = testutil.FakeLicenses{States: map[string]license.State{
		"craft":    {Expired: true, RenewalURL: "https://example.com/craft", RenewalPrice: 59, RenewalCurrency: "EUR"},
		"commerce": {Expired: true, RenewalURL: "https://example.com/commerce", RenewalPrice: 99},
		"seo":      {Expired: false, RenewalURL: "https://example.com/seo"},
	}}

	result, err := r.Resolve(context.Background(), Request{
		CoreVersion: "3.0.10",
		Plugins:     []PluginInstall{{Handle: "commerce", Version: "2.0.0"}, {Handle: "seo", Version: "1.0.0"}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusExpired, result.Core.Status)
	require.NotNil(t, result.Core.Renewal)
	assert.Equal(t, "EUR", result.Core.Renewal.Currency)
	assert.Equal(t, "3.0.41.1", result.Core.ToVersion, "breakpoint target is kept for context")
	assert.Equal(t, []string{"3.0.41.1"}, releaseVersions(result.Core.Releases))

	commerce := result.Plugins[0].Info
	require.NotNil(t, commerce)
	assert.Equal(t, StatusExpired, commerce.Status)
	require.NotNil(t, commerce.Renewal)
	assert.Equal(t, "https://example.com/commerce", commerce.Renewal.URL)
	assert.Equal(t, 99.0, commerce.Renewal.Price)
	assert.Equal(t, "USD", commerce.Renewal.Currency)

	seo := result.Plugins[1].Info
	require.NotNil(t, seo)
	assert.Equal(t, StatusEligible, seo.Status)
	assert.Nil(t, seo.Renewal)
}

// TestResolveExpiredWithoutRenewal tests that an expired license without
// renewal details fails the component instead of reporting empty renewal fields.
func TestResolveExpiredWithoutRenewal(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("vendor/plugin", "1.1.0").
		WithLatestCompatible("vendor/plugin", "1.1.0")

	r := newTestResolver(reg, registry.MapCatalog{"plugin": "vendor/plugin"})
	r.Licenses = testutil.FakeLicenses{States: map[string]license.State{
		"plugin": {Expired: true},
	}}

	result, err := r.Resolve(context.Background(), Request{
		CoreVersion: "3.1.40",
		Plugins:     []PluginInstall{{Handle: "plugin", Version: "1.0.0"}},
	})
	require.NoError(t, err)
	require.Len(t, result.Plugins, 1)

	outcome := result.Plugins[0]
	assert.Nil(t, outcome.Info)
	require.Error(t, outcome.Err)
	assert.ErrorIs(t, outcome.Err, errors.ErrIncompleteRenewal)
}

// TestResolveDiscardedChangelogEntry tests that changelog entries beyond the bound are dropped.
func TestResolveDiscardedChangelogEntry(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("vendor/plugin", "1.2.4", "1.2.5", "1.3.0").
		WithLatestCompatible("vendor/plugin", "1.2.5").
		WithChangelog("vendor/plugin", "1.2.5", "## 1.3.0\n- future\n\n## 1.2.5 - 2020-01-01\n- current\n\n## 1.2.4\n- previous\n")

	r := New(reg, changelog.NewMarkdownParser(), registry.MapCatalog{"plugin": "vendor/plugin"})
	result, err := r.Resolve(context.Background(), Request{
		CoreVersion: "3.1.40",
		Plugins:     []PluginInstall{{Handle: "plugin", Version: "1.2.3"}},
	})
	require.NoError(t, err)

	info := result.Plugins[0].Info
	require.NotNil(t, info)
	assert.Equal(t, []string{"1.2.5", "1.2.4"}, releaseVersions(info.Releases))
	require.NotNil(t, info.Releases[0].Metadata)
	assert.Equal(t, "- current", info.Releases[0].Metadata.Notes)
	require.NotNil(t, info.Releases[1].Metadata)
	assert.Equal(t, "- previous", info.Releases[1].Metadata.Notes)
}

// TestResolveNoCompatibleRelease tests a plugin with nothing compatible with the host.
//
// It verifies:
//   - Status stays eligible with zero releases
//   - The release builder is not called
func TestResolveNoCompatibleRelease(t *testing.T) {
	reg := testutil.NewRegistry().WithVersions("vendor/old", "1.0.1")

	result, err := newTestResolver(reg, registry.MapCatalog{"old": "vendor/old"}).
		Resolve(context.Background(), Request{CoreVersion: "3.1.40", Plugins: []PluginInstall{{Handle: "old", Version: "1.0.0"}}})
	require.NoError(t, err)

	info := result.Plugins[0].Info
	require.NotNil(t, info)
	assert.Equal(t, StatusEligible, info.Status)
	assert.NotNil(t, info.Releases)
	assert.Empty(t, info.Releases)
	assert.Empty(t, info.ToVersion)
	assert.Equal(t, 0, reg.CallCount("between"))
}

// TestResolvePluginBreakpointWins tests that a plugin breakpoint takes precedence over host compatibility.
func TestResolvePluginBreakpointWins(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("vendor/plugin", "1.5.0", "2.0.0", "2.1.0").
		WithLatestCompatible("vendor/plugin", "2.1.0")

	r := newTestResolver(reg, registry.MapCatalog{"plugin": "vendor/plugin"})
	r.Breakpoints = breakpoint.DefaultSet().Merge(breakpoint.NewSet(map[string][]breakpoint.Rule{
		"vendor/plugin": {{Lower: version.MustParse("1.0"), Upper: version.MustParse("2.0"), Target: version.MustParse("2.0.0")}},
	}))

	result, err := r.Resolve(context.Background(), Request{CoreVersion: "3.1.40", Plugins: []PluginInstall{{Handle: "plugin", Version: "1.4.0"}}})
	require.NoError(t, err)

	info := result.Plugins[0].Info
	require.NotNil(t, info)
	assert.Equal(t, StatusBreakpoint, info.Status)
	assert.Equal(t, "2.0.0", info.ToVersion)
	assert.Equal(t, []string{"2.0.0", "1.5.0"}, releaseVersions(info.Releases))
	assert.Equal(t, 0, reg.CallCount("latest"))
}

// TestResolvePartialFailures tests per-plugin failure isolation.
//
// It verifies:
//   - Unknown handles fail with ErrUnknownPlugin
//   - Malformed plugin versions and registry errors fail only that plugin
//   - Outcome order equals request order
func TestResolvePartialFailures(t *testing.T) {
	reg := testutil.NewRegistry().
		WithVersions("vendor/good", "1.1.0").
		WithLatestCompatible("vendor/good", "1.1.0").
		WithError("latest", "vendor/down", stderrors.New("503 service unavailable"))

	r := newTestResolver(reg, registry.MapCatalog{
		"good": "vendor/good", "down": "vendor/down", "bad": "vendor/bad", "locked": "vendor/locked",
	})
	r.Licenses = testutil.FakeLicenses{Errs: map[string]error{"locked": stderrors.New("license db offline")}}

	result, err := r.Resolve(context.Background(), Request{
		CoreVersion: "3.1.40",
		Plugins: []PluginInstall{
			{Handle: "missing", Version: "1.0.0"},
			{Handle: "good", Version: "1.0.0"},
			{Handle: "bad", Version: "not-a-version"},
			{Handle: "down", Version: "1.0.0"},
			{Handle: "locked", Version: "1.0.0"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Plugins, 5)

	handles := make([]string, 0, len(result.Plugins))
	for _, p := range result.Plugins {
		handles = append(handles, p.Handle)
	}
	assert.Equal(t, []string{"missing", "good", "bad", "down", "locked"}, handles)

	assert.ErrorIs(t, result.Plugins[0].Err, errors.ErrUnknownPlugin)
	assert.Nil(t, result.Plugins[0].Info)

	assert.NoError(t, result.Plugins[1].Err)
	require.NotNil(t, result.Plugins[1].Info)

	assert.ErrorIs(t, result.Plugins[2].Err, errors.ErrMalformedVersion)
	assert.ErrorIs(t, result.Plugins[3].Err, errors.ErrRegistryUnavailable)
	assert.ErrorContains(t, result.Plugins[4].Err, "license db offline")

	assert.Equal(t, []string{"missing", "bad", "down", "locked"}, result.Failed())
	assert.Len(t, result.Errors(), 4)
}

// TestResolveCoreFailures tests that core failures fail the whole request.
func TestResolveCoreFailures(t *testing.T) {
	_, err := newTestResolver(testutil.NewRegistry(), nil).Resolve(context.Background(), Request{CoreVersion: "  "})
	assert.ErrorIs(t, err, errors.ErrMissingInstalledVersion)

	result, err := newTestResolver(testutil.NewRegistry(), nil).Resolve(context.Background(), Request{CoreVersion: "three"})
	assert.ErrorIs(t, err, errors.ErrMalformedVersion)
	assert.Nil(t, result)

	reg := testutil.NewRegistry().WithError("after", "craftcms/cms", stderrors.New("timeout"))
	_, err = newTestResolver(reg, nil).Resolve(context.Background(), Request{CoreVersion: "3.1.40"})
	require.Error(t, err)
	assert.True(t, errors.IsRegistryUnavailable(err))
	var ce *errors.ComponentError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "craft", ce.Handle)

	r := newTestResolver(testutil.NewRegistry(), nil)
	r.Licenses = testutil.FakeLicenses{Errs: map[string]error{"craft": stderrors.New("no db")}}
	_, err = r.Resolve(context.Background(), Request{CoreVersion: "3.1.40"})
	assert.ErrorContains(t, err, "no db")
}

// TestResolvePackageNameCapability tests the packageName echo rule.
//
// It verifies:
//   - 3.1.21 and later get the package name
//   - 3.2.0-alpha.1 is excluded
//   - An explicit override wins
func TestResolvePackageNameCapability(t *testing.T) {
	tests := []struct {
		core     string
		override *bool
		expected bool
	}{
		{"3.1.20", nil, false},
		{"3.1.21", nil, true},
		{"3.2.0-alpha.1", nil, false},
		{"3.2.0-alpha.2", nil, true},
		{"3.1.20", boolPtr(true), true},
		{"3.5.0", boolPtr(false), false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.core, tt.override), func(t *testing.T) {
			result, err := newTestResolver(testutil.NewRegistry(), nil).
				Resolve(context.Background(), Request{CoreVersion: tt.core, IncludePackageName: tt.override})
			require.NoError(t, err)
			if tt.expected {
				assert.Equal(t, "craftcms/cms", result.Core.PackageName)
			} else {
				assert.Empty(t, result.Core.PackageName)
			}
		})
	}
}

// TestResolveConcurrentOrdering tests that many concurrent plugins keep request order.
func TestResolveConcurrentOrdering(t *testing.T) {
	reg := testutil.NewRegistry()
	catalog := registry.MapCatalog{}
	var plugins []PluginInstall
	for i := 0; i < 25; i++ {
		handle := fmt.Sprintf("plugin-%02d", i)
		pkg := "vendor/" + handle
		catalog[handle] = pkg
		reg.WithVersions(pkg, "1.0.1").WithLatestCompatible(pkg, "1.0.1")
		plugins = append(plugins, PluginInstall{Handle: handle, Version: "1.0.0"})
	}
	original := append([]PluginInstall(nil), plugins...)

	r := newTestResolver(reg, catalog)
	r.Concurrency = 4

	result, err := r.Resolve(context.Background(), Request{CoreVersion: "3.1.40", Plugins: plugins})
	require.NoError(t, err)
	require.Len(t, result.Plugins, 25)
	for i, p := range result.Plugins {
		assert.Equal(t, plugins[i].Handle, p.Handle)
		require.NoError(t, p.Err)
		assert.Equal(t, []string{"1.0.1"}, releaseVersions(p.Info.Releases))
	}
	assert.Equal(t, original, plugins, "request must not be mutated")
}

// TestResolveCancelled tests that a cancelled context fails components instead of hanging.
func TestResolveCancelled(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	reg := testutil.NewRegistry().BlockUntil(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestResolver(reg, nil).Resolve(ctx, Request{CoreVersion: "3.1.40"})
	assert.ErrorIs(t, err, context.Canceled)
}

// TestConcurrencyBounds tests the concurrency clamp.
func TestConcurrencyBounds(t *testing.T) {
	r := &Resolver{}
	assert.Equal(t, 8, r.concurrency(100))
	assert.Equal(t, 3, r.concurrency(3))
	r.Concurrency = 1000
	assert.Equal(t, maxConcurrency, r.concurrency(1000))
	assert.Equal(t, 8, (&Resolver{}).concurrency(0))
}
