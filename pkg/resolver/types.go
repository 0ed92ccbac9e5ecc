package resolver

import (
	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/license"
	"github.com/ajxudir/updatecheck/pkg/releases"
)

// Status is the update status of a component. Values are wire-stable.
type Status string

const (
	// StatusEligible means the component may update to any listed release.
	StatusEligible Status = constants.StatusEligible
	// StatusBreakpoint means the component must first install ToVersion.
	StatusBreakpoint Status = constants.StatusBreakpoint
	// StatusExpired means the license must be renewed before updating.
	StatusExpired Status = constants.StatusExpired
)

// Kind distinguishes the core application from plugins.
type Kind string

const (
	// KindCore is the host application.
	KindCore Kind = constants.KindCore
	// KindPlugin is an installed extension.
	KindPlugin Kind = constants.KindPlugin
)

// Renewal carries license renewal details. It is present exactly when the
// status is StatusExpired.
type Renewal struct {
	URL      string
	Price    float64
	Currency string
}

// Info is the update information for one component.
//
// Fields:
//   - Status: Eligible, Breakpoint or Expired
//   - Releases: Newest first, never nil
//   - Renewal: Set iff Status is StatusExpired
//   - PackageName: Package identifier, set only when echoing is enabled
//   - ToVersion: Breakpoint or latest-compatible target; empty when unbounded
type Info struct {
	Status      Status
	Releases    []releases.Release
	Renewal     *Renewal
	PackageName string
	ToVersion   string
}

// Component describes one installed component to resolve.
type Component struct {
	Kind               Kind
	Handle             string
	PackageName        string
	InstalledVersion   string
	HostVersion        string
	License            *license.State
	IncludePackageName bool
}

// PluginInstall is a plugin reported by an installation.
type PluginInstall struct {
	Handle  string
	Version string
}

// Request is the installation state to resolve.
//
// Fields:
//   - CoreVersion: Installed core version; required
//   - Plugins: Installed plugins in the order results should be reported
//   - IncludePackageName: Overrides the version-derived capability when set
type Request struct {
	CoreVersion        string
	Plugins            []PluginInstall
	IncludePackageName *bool
}

// PluginOutcome is the per-plugin result. Exactly one of Info and Err is set.
type PluginOutcome struct {
	Handle string
	Info   *Info
	Err    error
}

// Result is the aggregate response for one installation.
type Result struct {
	Core    Info
	Plugins []PluginOutcome
}

// Failed returns the handles of plugins that could not be resolved, in
// request order.
func (r *Result) Failed() []string {
	var out []string
	for _, p := range r.Plugins {
		if p.Err != nil {
			out = append(out, p.Handle)
		}
	}
	return out
}

// Errors returns the per-plugin errors in request order.
func (r *Result) Errors() []error {
	var out []error
	for _, p := range r.Plugins {
		if p.Err != nil {
			out = append(out, p.Err)
		}
	}
	return out
}
