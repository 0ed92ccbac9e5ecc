package testutil

import (
	"context"
	"sync"

	"github.com/ajxudir/updatecheck/pkg/changelog"
	"github.com/ajxudir/updatecheck/pkg/license"
	"github.com/ajxudir/updatecheck/pkg/version"
)

// RegistryCall records one call made to a FakeRegistry.
type RegistryCall struct {
	Op      string
	Package string
	From    string
	To      string
	Min     version.Stability
}

// FakeRegistry is an in-memory registry.Registry for tests.
//
// By default range queries apply the documented (from, to] and stability
// semantics. Raw() turns filtering off so callers can check that they
// filter registry output themselves.
type FakeRegistry struct {
	mu         sync.Mutex
	versions   map[string][]version.Version
	compatible map[string]version.Version
	changelogs map[string]string
	errs       map[string]error
	raw        bool
	calls      []RegistryCall
	block      chan struct{}
}

// NewRegistry creates an empty FakeRegistry.
//
// Returns:
//   - *FakeRegistry: New fake ready for method chaining
func NewRegistry() *FakeRegistry {
	return &FakeRegistry{
		versions:   make(map[string][]version.Version),
		compatible: make(map[string]version.Version),
		changelogs: make(map[string]string),
		errs:       make(map[string]error),
	}
}

// WithVersions adds published versions for a package.
//
// Parameters:
//   - pkg: Package identifier
//   - versions: Version strings; panics on malformed input
//
// Returns:
//   - *FakeRegistry: Self for method chaining
func (f *FakeRegistry) WithVersions(pkg string, versions ...string) *FakeRegistry {
	for _, v := range versions {
		f.versions[pkg] = append(f.versions[pkg], version.MustParse(v))
	}
	return f
}

// WithLatestCompatible sets the LatestCompatible answer for a package,
// regardless of host version.
func (f *FakeRegistry) WithLatestCompatible(pkg, v string) *FakeRegistry {
	f.compatible[pkg] = version.MustParse(v)
	return f
}

// WithChangelog sets the changelog published with a release.
func (f *FakeRegistry) WithChangelog(pkg, v, text string) *FakeRegistry {
	f.changelogs[pkg+"@"+version.MustParse(v).Normalized()] = text
	return f
}

// WithError makes an operation fail for a package. Operations are
// "between", "after", "latest" and "changelog".
func (f *FakeRegistry) WithError(op, pkg string, err error) *FakeRegistry {
	f.errs[op+":"+pkg] = err
	return f
}

// Raw disables range and stability filtering of range queries.
func (f *FakeRegistry) Raw() *FakeRegistry {
	f.raw = true
	return f
}

// BlockUntil makes every call wait until ch is closed or the context ends.
func (f *FakeRegistry) BlockUntil(ch chan struct{}) *FakeRegistry {
	f.block = ch
	return f
}

// Calls returns a copy of the recorded calls.
func (f *FakeRegistry) Calls() []RegistryCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RegistryCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many calls were made for an operation.
func (f *FakeRegistry) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (f *FakeRegistry) record(ctx context.Context, call RegistryCall) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	err := f.errs[call.Op+":"+call.Package]
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (f *FakeRegistry) rangeOf(pkg string, from version.Version, to *version.Version, min version.Stability) []version.Version {
	all := f.versions[pkg]
	out := make([]version.Version, 0, len(all))
	for _, v := range all {
		if !f.raw {
			if v.LessOrEqual(from) || (to != nil && v.Greater(*to)) || !version.Accepts(min, v.Stability()) {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// VersionsBetween implements registry.Registry.
func (f *FakeRegistry) VersionsBetween(ctx context.Context, pkg string, from, to version.Version, min version.Stability) ([]version.Version, error) {
	if err := f.record(ctx, RegistryCall{Op: "between", Package: pkg, From: from.Original(), To: to.Original(), Min: min}); err != nil {
		return nil, err
	}
	return f.rangeOf(pkg, from, &to, min), nil
}

// VersionsAfter implements registry.Registry.
func (f *FakeRegistry) VersionsAfter(ctx context.Context, pkg string, from version.Version, min version.Stability) ([]version.Version, error) {
	if err := f.record(ctx, RegistryCall{Op: "after", Package: pkg, From: from.Original(), Min: min}); err != nil {
		return nil, err
	}
	return f.rangeOf(pkg, from, nil, min), nil
}

// LatestCompatible implements registry.Registry.
func (f *FakeRegistry) LatestCompatible(ctx context.Context, pkg string, host, installed version.Version) (version.Version, bool, error) {
	if err := f.record(ctx, RegistryCall{Op: "latest", Package: pkg, From: host.Original()}); err != nil {
		return version.Version{}, false, err
	}
	v, ok := f.compatible[pkg]
	return v, ok, nil
}

// Changelog implements registry.Registry.
func (f *FakeRegistry) Changelog(ctx context.Context, pkg string, v version.Version) (string, bool, error) {
	if err := f.record(ctx, RegistryCall{Op: "changelog", Package: pkg, From: v.Original()}); err != nil {
		return "", false, err
	}
	text, ok := f.changelogs[pkg+"@"+v.Normalized()]
	return text, ok, nil
}

// FakeParser is a changelog.Parser returning fixed entries.
type FakeParser struct {
	mu      sync.Mutex
	Entries map[string]changelog.Entry
	Err     error
	calls   int
}

// Parse implements changelog.Parser. The lower bound is ignored so tests
// can check that callers drop entries with no matching release.
func (p *FakeParser) Parse(string, version.Version) (map[string]changelog.Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Entries, nil
}

// Calls returns how many times Parse ran.
func (p *FakeParser) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// FakeLicenses is a license.Store with fixed states and errors.
type FakeLicenses struct {
	States map[string]license.State
	Errs   map[string]error
}

// Lookup implements license.Store.
func (l FakeLicenses) Lookup(_ context.Context, handle string) (*license.State, error) {
	if err := l.Errs[handle]; err != nil {
		return nil, err
	}
	s, ok := l.States[handle]
	if !ok {
		return nil, nil
	}
	return &s, nil
}
