package display

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ajxudir/updatecheck/pkg/breakpoint"
	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/output"
	"github.com/ajxudir/updatecheck/pkg/releases"
	"github.com/ajxudir/updatecheck/pkg/resolver"
	"github.com/ajxudir/updatecheck/pkg/version"
)

// RenderResult prints a resolution result as a table followed by a summary line.
//
// The core row comes first, then plugins in request order. Failed plugins
// show their error in the NOTE column.
//
// Parameters:
//   - w: Writer to output to
//   - coreHandle: Name shown for the core row (e.g., "craft")
//   - result: The resolution result
//
// Returns:
//   - error: The first write error, or nil
func RenderResult(w io.Writer, coreHandle string, result *resolver.Result) error {
	showPackage := result.Core.PackageName != ""
	for _, p := range result.Plugins {
		if p.Info != nil && p.Info.PackageName != "" {
			showPackage = true
		}
	}

	table := NewResultTable(showPackage)
	table.AddRow(infoRow(coreHandle, &result.Core)...)
	for _, p := range result.Plugins {
		if p.Err != nil {
			na := constants.PlaceholderNA
			table.AddRow(p.Handle, FormatStatus(constants.StatusFailed), na, na, "0", "", output.Truncate(p.Err.Error(), NotesWidth))
			continue
		}
		table.AddRow(infoRow(p.Handle, p.Info)...)
	}

	if err := table.Render(w); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w)
	PrintSummary(w, Summarize(result))
	return nil
}

func infoRow(name string, info *resolver.Info) []string {
	latest := constants.PlaceholderNA
	if len(info.Releases) > 0 {
		latest = info.Releases[0].Version
	}
	return []string{
		name,
		FormatStatus(string(info.Status)),
		FormatTarget(info.ToVersion),
		latest,
		strconv.Itoa(len(info.Releases)),
		info.PackageName,
		FormatRenewal(info.Renewal),
	}
}

// Summarize counts the components of a result by outcome.
func Summarize(result *resolver.Result) Summary {
	s := Summary{Total: 1 + len(result.Plugins)}
	count := func(status resolver.Status) {
		if IsBlockedStatus(string(status)) {
			s.Blocked++
		} else {
			s.Eligible++
		}
	}
	count(result.Core.Status)
	for _, p := range result.Plugins {
		if p.Err != nil {
			s.Failed++
			continue
		}
		count(p.Info.Status)
	}
	return s
}

// RenderReleases prints a release list as a table, newest first.
//
// Parameters:
//   - w: Writer to output to
//   - list: Releases as built by releases.Builder
//
// Returns:
//   - error: The first write error, or nil
func RenderReleases(w io.Writer, list []releases.Release) error {
	table := NewReleasesTable()
	for _, r := range list {
		date, critical, notes := constants.PlaceholderNA, "", ""
		if r.Metadata != nil {
			date = FormatDate(r.Metadata.Date)
			if r.Metadata.Critical {
				critical = constants.IconCritical + " yes"
			}
			notes = SummarizeNotes(r.Metadata.Notes, NotesWidth)
		}
		table.AddRow(r.Version, date, critical, notes)
	}
	return table.Render(w)
}

// RenderClassification prints how a version is classified against a
// package's breakpoint rules.
//
// Parameters:
//   - w: Writer to output to
//   - pkg: Package identifier
//   - v: The installed version
//   - rule: The matching rule, ignored when matched is false
//   - matched: Whether a rule matched
//
// Returns:
//   - error: The first write error, or nil
func RenderClassification(w io.Writer, pkg string, v version.Version, rule breakpoint.Rule, matched bool) error {
	table := NewBreakpointTable()
	bp, target := "none", constants.PlaceholderLatest
	if matched {
		bp = rule.String()
		target = rule.Target.Original()
	}
	table.AddRow(pkg, v.Original(), v.Normalized(), v.Stability().String(), bp, target)
	return table.Render(w)
}
