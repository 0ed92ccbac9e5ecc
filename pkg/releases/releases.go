// Package releases builds the ordered list of releases a component may
// update to, enriched with changelog metadata.
package releases

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/ajxudir/updatecheck/pkg/changelog"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/registry"
	"github.com/ajxudir/updatecheck/pkg/verbose"
	"github.com/ajxudir/updatecheck/pkg/version"
	"github.com/ajxudir/updatecheck/pkg/warnings"
)

// Release is one entry of an upgrade path.
//
// Fields:
//   - Version: Display form of the version
//   - Key: Normalized version, unique within a list
//   - Metadata: Changelog details, nil when the changelog has no entry
type Release struct {
	Version  string
	Key      string
	Metadata *Metadata
}

// Metadata holds the changelog details of a release.
type Metadata struct {
	Critical bool
	Date     *time.Time
	Notes    string
}

// Builder assembles release lists from a registry and a changelog parser.
// A nil Parser disables changelog enrichment.
type Builder struct {
	Registry registry.Registry
	Parser   changelog.Parser
}

// NewBuilder creates a Builder.
func NewBuilder(reg registry.Registry, parser changelog.Parser) *Builder {
	return &Builder{Registry: reg, Parser: parser}
}

// Build returns the releases newer than from, up to and including to when
// it is set, newest first. Only releases at least as stable as from are
// included, and every normalized version appears once.
//
// The changelog published with the newest release supplies metadata for
// all listed releases. A missing or unreadable changelog leaves the
// metadata empty and is not an error; context cancellation is.
//
// Parameters:
//   - ctx: Context for registry calls
//   - pkg: Package identifier
//   - from: Installed version (exclusive lower bound)
//   - to: Inclusive upper bound, or nil for unbounded
//
// Returns:
//   - []Release: The releases, never nil
//   - error: *errors.RegistryError when the registry fails
func (b *Builder) Build(ctx context.Context, pkg string, from version.Version, to *version.Version) ([]Release, error) {
	minimum := from.Stability()

	var (
		candidates []version.Version
		err        error
	)
	if to == nil {
		verbose.RegistryCall("versions-after", pkg, "> "+from.Original()+" ("+minimum.String()+")")
		candidates, err = b.Registry.VersionsAfter(ctx, pkg, from, minimum)
		if err != nil {
			return nil, errors.NewRegistryError("versions-after", pkg, err)
		}
	} else {
		verbose.RegistryCall("versions-between", pkg, "("+from.Original()+", "+to.Original()+"] ("+minimum.String()+")")
		candidates, err = b.Registry.VersionsBetween(ctx, pkg, from, *to, minimum)
		if err != nil {
			return nil, errors.NewRegistryError("versions-between", pkg, err)
		}
	}

	candidates = version.Dedupe(admissible(candidates, from, to, minimum))
	if len(candidates) == 0 {
		return []Release{}, nil
	}
	version.Sort(candidates, true)

	if verbose.IsEnabled() {
		names := make([]string, 0, len(candidates))
		for _, v := range candidates {
			names = append(names, v.Original())
		}
		verbose.Versions("Releases", pkg, names)
	}

	list := make([]Release, len(candidates))
	index := make(map[string]int, len(candidates))
	for i, v := range candidates {
		list[i] = Release{Version: v.Original(), Key: v.Normalized()}
		index[list[i].Key] = i
	}

	entries, err := b.changelogEntries(ctx, pkg, candidates[0], from)
	if err != nil {
		return nil, err
	}
	for key, entry := range entries {
		i, ok := index[key]
		if !ok {
			verbose.Tracef("Changelog entry %s for %s has no matching release", entry.Version, pkg)
			continue
		}
		list[i].Metadata = &Metadata{Critical: entry.Critical, Date: entry.Date, Notes: entry.Notes}
	}

	return list, nil
}

// admissible re-applies the range and stability contract to registry
// output. Adapters are not trusted to have filtered correctly.
func admissible(candidates []version.Version, from version.Version, to *version.Version, minimum version.Stability) []version.Version {
	out := make([]version.Version, 0, len(candidates))
	for _, v := range candidates {
		switch {
		case v.LessOrEqual(from):
			verbose.Tracef("Dropping %s: not newer than %s", v.Original(), from.Original())
		case to != nil && v.Greater(*to):
			verbose.Tracef("Dropping %s: above %s", v.Original(), to.Original())
		case !version.Accepts(minimum, v.Stability()):
			verbose.Tracef("Dropping %s: %s below minimum stability %s", v.Original(), v.Stability(), minimum)
		default:
			out = append(out, v)
		}
	}
	return out
}

// changelogEntries fetches and parses the changelog of newest. Only
// context errors are returned; every other failure yields no entries.
func (b *Builder) changelogEntries(ctx context.Context, pkg string, newest, from version.Version) (map[string]changelog.Entry, error) {
	if b.Parser == nil {
		return nil, nil
	}

	verbose.RegistryCall("changelog", pkg, newest.Original())
	raw, ok, err := b.Registry.Changelog(ctx, pkg, newest)
	if err != nil {
		if ctx.Err() != nil || isContextError(err) {
			return nil, errors.NewRegistryError("changelog", pkg, err)
		}
		warnings.Warnf("⚠️  changelog for %s %s unavailable: %v\n", pkg, newest.Original(), err)
		return nil, nil
	}
	if !ok || raw == "" {
		verbose.Printf("No changelog published for %s %s", pkg, newest.Original())
		return nil, nil
	}

	entries, err := b.Parser.Parse(raw, from)
	if err != nil {
		warnings.Warnf("⚠️  changelog for %s %s ignored: %v\n", pkg, newest.Original(), err)
		return nil, nil
	}
	return entries, nil
}

func isContextError(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
