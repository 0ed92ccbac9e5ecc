package output

import (
	"github.com/iancoleman/orderedmap"

	"github.com/ajxudir/updatecheck/pkg/breakpoint"
	"github.com/ajxudir/updatecheck/pkg/releases"
	"github.com/ajxudir/updatecheck/pkg/resolver"
	"github.com/ajxudir/updatecheck/pkg/version"
)

// DateLayout is the wire format of release dates.
const DateLayout = "2006-01-02"

// Wire field names of the update response.
const (
	fieldCore            = "cms"
	fieldPlugins         = "plugins"
	fieldErrors          = "errors"
	fieldStatus          = "status"
	fieldReleases        = "releases"
	fieldRenewalURL      = "renewalUrl"
	fieldRenewalPrice    = "renewalPrice"
	fieldRenewalCurrency = "renewalCurrency"
	fieldPackageName     = "packageName"
	fieldVersion         = "version"
	fieldCritical        = "critical"
	fieldDate            = "date"
	fieldNotes           = "notes"
)

func newMap() *orderedmap.OrderedMap {
	m := orderedmap.New()
	m.SetEscapeHTML(false)
	return m
}

// EncodeResult converts a resolution result into the ordered wire document.
//
// The document holds "cms" and "plugins" in that order, with plugins keyed by
// handle in request order. Plugins that failed are left out of "plugins" and
// listed under a trailing "errors" object instead, which is omitted when
// every plugin resolved.
//
// Parameters:
//   - result: The resolution result
//
// Returns:
//   - *orderedmap.OrderedMap: The document, ready for JSON or YAML encoding
func EncodeResult(result *resolver.Result) *orderedmap.OrderedMap {
	doc := newMap()
	doc.Set(fieldCore, EncodeInfo(&result.Core))

	plugins := newMap()
	failures := newMap()
	for _, p := range result.Plugins {
		if p.Err != nil {
			failures.Set(p.Handle, p.Err.Error())
			continue
		}
		plugins.Set(p.Handle, EncodeInfo(p.Info))
	}
	doc.Set(fieldPlugins, plugins)
	if len(failures.Keys()) > 0 {
		doc.Set(fieldErrors, failures)
	}
	return doc
}

// EncodeInfo converts one component's update information.
//
// Renewal fields appear only for expired components and packageName only
// when it was requested.
func EncodeInfo(info *resolver.Info) *orderedmap.OrderedMap {
	m := newMap()
	m.Set(fieldStatus, string(info.Status))
	m.Set(fieldReleases, EncodeReleases(info.Releases))
	if info.Renewal != nil {
		m.Set(fieldRenewalURL, info.Renewal.URL)
		m.Set(fieldRenewalPrice, info.Renewal.Price)
		m.Set(fieldRenewalCurrency, info.Renewal.Currency)
	}
	if info.PackageName != "" {
		m.Set(fieldPackageName, info.PackageName)
	}
	return m
}

// EncodeReleases converts a release list. Releases without changelog
// metadata carry only their version. The result is never nil so it encodes
// as an empty list.
func EncodeReleases(list []releases.Release) []*orderedmap.OrderedMap {
	out := make([]*orderedmap.OrderedMap, 0, len(list))
	for _, r := range list {
		m := newMap()
		m.Set(fieldVersion, r.Version)
		if r.Metadata != nil {
			m.Set(fieldCritical, r.Metadata.Critical)
			if r.Metadata.Date != nil {
				m.Set(fieldDate, r.Metadata.Date.Format(DateLayout))
			} else {
				m.Set(fieldDate, nil)
			}
			m.Set(fieldNotes, r.Metadata.Notes)
		}
		out = append(out, m)
	}
	return out
}

// EncodeClassification describes how a version classifies against a
// package's breakpoint rules. The rule bounds are present only when a rule
// matched.
//
// Parameters:
//   - pkg: Package identifier
//   - v: The classified version
//   - rule: The matching rule, ignored when matched is false
//   - matched: Whether a rule matched
//
// Returns:
//   - *orderedmap.OrderedMap: The document
func EncodeClassification(pkg string, v version.Version, rule breakpoint.Rule, matched bool) *orderedmap.OrderedMap {
	m := newMap()
	m.Set("package", pkg)
	m.Set(fieldVersion, v.Original())
	m.Set("normalized", v.Normalized())
	m.Set("stability", v.Stability().String())
	m.Set("breakpoint", matched)
	if matched {
		m.Set("lower", rule.Lower.Original())
		m.Set("lowerExclusive", rule.LowerExclusive)
		m.Set("upper", rule.Upper.Original())
		m.Set("target", rule.Target.Original())
	}
	return m
}
