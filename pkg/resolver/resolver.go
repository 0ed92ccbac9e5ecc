// Package resolver determines the update status of an installation: the
// core application and every installed plugin.
//
// For each component the resolver classifies the installed version against
// the breakpoint table, picks an upper bound (breakpoint target, newest
// host-compatible plugin release, or unbounded), builds the release list,
// and applies license state. Plugins are resolved concurrently and reported
// in request order.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ajxudir/updatecheck/pkg/breakpoint"
	"github.com/ajxudir/updatecheck/pkg/changelog"
	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/license"
	"github.com/ajxudir/updatecheck/pkg/registry"
	"github.com/ajxudir/updatecheck/pkg/releases"
	"github.com/ajxudir/updatecheck/pkg/verbose"
	"github.com/ajxudir/updatecheck/pkg/version"
)

const maxConcurrency = 64

// Resolver holds the collaborators used for resolution. Zero-valued
// optional fields fall back to the core application's defaults.
//
// Fields:
//   - Registry: Version source; required
//   - Parser: Changelog parser; nil disables release metadata
//   - Breakpoints: Rules per package; nil means breakpoint.DefaultSet()
//   - Catalog: Plugin handle to package; nil means no plugin is known
//   - Licenses: License state; nil means no licenses
//   - Concurrency: Maximum concurrent plugin resolutions
//   - RenewalCurrency: Currency for renewals that carry none
//   - CorePackage: Package identifier of the core application
//   - CoreHandle: Handle of the core application for license lookups
//   - Capability: packageName boundaries; nil means DefaultCapability()
type Resolver struct {
	Registry        registry.Registry
	Parser          changelog.Parser
	Breakpoints     *breakpoint.Set
	Catalog         registry.Catalog
	Licenses        license.Store
	Concurrency     int
	RenewalCurrency string
	CorePackage     string
	CoreHandle      string
	Capability      *Capability
}

// New creates a Resolver with the default breakpoints and capability.
func New(reg registry.Registry, parser changelog.Parser, catalog registry.Catalog) *Resolver {
	capability := DefaultCapability()
	return &Resolver{
		Registry:        reg,
		Parser:          parser,
		Breakpoints:     breakpoint.DefaultSet(),
		Catalog:         catalog,
		Licenses:        license.None{},
		Concurrency:     constants.DefaultConcurrency,
		RenewalCurrency: constants.DefaultRenewalCurrency,
		CorePackage:     constants.DefaultCorePackage,
		CoreHandle:      constants.DefaultCoreHandle,
		Capability:      &capability,
	}
}

// Resolve computes update information for an installation.
//
// The core is resolved first and its failure fails the whole request.
// Plugins are then resolved concurrently; a plugin failure is recorded in
// its PluginOutcome and does not affect the others.
//
// Parameters:
//   - ctx: Context for all collaborator calls
//   - req: Installation state
//
// Returns:
//   - *Result: Core info and one outcome per requested plugin, in order
//   - error: errors.ErrMissingInstalledVersion, or the core's failure
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	coreRaw := strings.TrimSpace(req.CoreVersion)
	if coreRaw == "" {
		return nil, errors.ErrMissingInstalledVersion
	}

	include := r.includePackageName(coreRaw, req.IncludePackageName)
	verbose.Printf("Resolving %s %s with %d plugin(s), packageName=%t", r.corePackage(), coreRaw, len(req.Plugins), include)

	coreLicense, err := r.licenses().Lookup(ctx, r.coreHandle())
	if err != nil {
		return nil, &errors.ComponentError{Handle: r.coreHandle(), Err: fmt.Errorf("license lookup: %w", err)}
	}

	core, err := r.ResolveComponent(ctx, Component{
		Kind:               KindCore,
		Handle:             r.coreHandle(),
		PackageName:        r.corePackage(),
		InstalledVersion:   coreRaw,
		HostVersion:        coreRaw,
		License:            coreLicense,
		IncludePackageName: include,
	})
	if err != nil {
		return nil, &errors.ComponentError{Handle: r.coreHandle(), Err: err}
	}

	outcomes := make([]PluginOutcome, len(req.Plugins))

	eg := new(errgroup.Group)
	eg.SetLimit(r.concurrency(len(req.Plugins)))

	for i, plugin := range req.Plugins {
		eg.Go(func() error {
			outcomes[i] = r.resolvePlugin(ctx, plugin, coreRaw, include)
			return nil
		})
	}
	// Plugin failures are recorded per outcome, so the group only limits
	// concurrency; a non-nil result would be a programming error.
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &Result{Core: core, Plugins: outcomes}, nil
}

// resolvePlugin resolves one plugin into an outcome. It never panics on
// collaborator failures; every failure becomes the outcome's Err.
func (r *Resolver) resolvePlugin(ctx context.Context, plugin PluginInstall, hostVersion string, include bool) PluginOutcome {
	outcome := PluginOutcome{Handle: plugin.Handle}

	pkg, ok := r.packageFor(plugin.Handle)
	if !ok {
		verbose.Printf("Plugin '%s' is not in the catalog", plugin.Handle)
		outcome.Err = &errors.ComponentError{Handle: plugin.Handle, Err: errors.ErrUnknownPlugin}
		return outcome
	}

	state, err := r.licenses().Lookup(ctx, plugin.Handle)
	if err != nil {
		outcome.Err = &errors.ComponentError{Handle: plugin.Handle, Err: fmt.Errorf("license lookup: %w", err)}
		return outcome
	}

	info, err := r.ResolveComponent(ctx, Component{
		Kind:               KindPlugin,
		Handle:             plugin.Handle,
		PackageName:        pkg,
		InstalledVersion:   plugin.Version,
		HostVersion:        hostVersion,
		License:            state,
		IncludePackageName: include,
	})
	if err != nil {
		outcome.Err = &errors.ComponentError{Handle: plugin.Handle, Err: err}
		return outcome
	}

	outcome.Info = &info
	return outcome
}

// ResolveComponent computes update information for a single component.
//
// It performs the following operations:
//   - Step 1: Parse the installed version
//   - Step 2: Classify it against the package's breakpoints
//   - Step 3: For plugins without a breakpoint, bound by the newest
//     release compatible with the host version
//   - Step 4: Build the release list
//   - Step 5: Apply an expired license
//   - Step 6: Echo the package name when enabled
//
// Parameters:
//   - ctx: Context for collaborator calls
//   - c: The component
//
// Returns:
//   - Info: The component's update information
//   - error: *errors.ParseError, *errors.RegistryError, or an error wrapping
//     errors.ErrIncompleteRenewal
func (r *Resolver) ResolveComponent(ctx context.Context, c Component) (Info, error) {
	installed, err := version.Parse(c.InstalledVersion)
	if err != nil {
		return Info{}, err
	}

	info := Info{Status: StatusEligible, Releases: []releases.Release{}}

	var (
		to        *version.Version
		bound     = true
		rule, hit = r.breakpoints().Classify(c.PackageName, installed)
	)

	switch {
	case hit:
		target := rule.Target
		to = &target
		info.Status = StatusBreakpoint
		info.ToVersion = target.Original()
		verbose.BreakpointMatched(c.PackageName, installed.Original(), target.Original())
		verbose.VersionSelected(c.PackageName, installed.Original(), target.Original(), "breakpoint "+rule.String())

	case c.Kind == KindPlugin:
		host, err := version.Parse(c.HostVersion)
		if err != nil {
			return Info{}, fmt.Errorf("host version: %w", err)
		}
		verbose.RegistryCall("latest-compatible", c.PackageName, "host "+host.Original())
		latest, ok, err := r.Registry.LatestCompatible(ctx, c.PackageName, host, installed)
		if err != nil {
			return Info{}, errors.NewRegistryError("latest-compatible", c.PackageName, err)
		}
		if ok {
			to = &latest
			info.ToVersion = latest.Original()
			verbose.VersionSelected(c.PackageName, installed.Original(), latest.Original(), "latest compatible with host "+host.Original())
		} else {
			bound = false
			verbose.VersionSelected(c.PackageName, installed.Original(), constants.PlaceholderNA, "no release compatible with host "+host.Original())
		}

	default:
		verbose.VersionSelected(c.PackageName, installed.Original(), constants.PlaceholderLatest, "no breakpoint")
	}

	if bound {
		list, err := releases.NewBuilder(r.Registry, r.Parser).Build(ctx, c.PackageName, installed, to)
		if err != nil {
			return Info{}, err
		}
		info.Releases = list
	}

	if c.License != nil && c.License.Expired {
		if err := c.License.Validate(); err != nil {
			return Info{}, fmt.Errorf("license for %s: %w", c.Handle, err)
		}
		currency := c.License.RenewalCurrency
		if currency == "" {
			currency = r.renewalCurrency()
		}
		info.Status = StatusExpired
		info.Renewal = &Renewal{URL: c.License.RenewalURL, Price: c.License.RenewalPrice, Currency: currency}
		verbose.Printf("License for '%s' expired; renewal at %s", c.Handle, c.License.RenewalURL)
	}

	if c.IncludePackageName {
		info.PackageName = c.PackageName
	}

	return info, nil
}

func (r *Resolver) includePackageName(coreRaw string, override *bool) bool {
	if override != nil {
		return *override
	}
	core, err := version.Parse(coreRaw)
	if err != nil {
		return false
	}
	capability := DefaultCapability()
	if r.Capability != nil {
		capability = *r.Capability
	}
	return capability.Allows(core)
}

func (r *Resolver) packageFor(handle string) (string, bool) {
	if r.Catalog == nil {
		return "", false
	}
	return r.Catalog.PackageFor(handle)
}

func (r *Resolver) breakpoints() *breakpoint.Set {
	if r.Breakpoints == nil {
		return breakpoint.DefaultSet()
	}
	return r.Breakpoints
}

func (r *Resolver) licenses() license.Store {
	if r.Licenses == nil {
		return license.None{}
	}
	return r.Licenses
}

func (r *Resolver) corePackage() string {
	if r.CorePackage == "" {
		return constants.DefaultCorePackage
	}
	return r.CorePackage
}

func (r *Resolver) coreHandle() string {
	if r.CoreHandle == "" {
		return constants.DefaultCoreHandle
	}
	return r.CoreHandle
}

func (r *Resolver) renewalCurrency() string {
	if r.RenewalCurrency == "" {
		return constants.DefaultRenewalCurrency
	}
	return r.RenewalCurrency
}

func (r *Resolver) concurrency(plugins int) int {
	n := r.Concurrency
	if n <= 0 {
		n = constants.DefaultConcurrency
	}
	if n > maxConcurrency {
		n = maxConcurrency
	}
	if plugins > 0 && n > plugins {
		n = plugins
	}
	return n
}
