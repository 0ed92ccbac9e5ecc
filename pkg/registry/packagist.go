package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/verbose"
	"github.com/ajxudir/updatecheck/pkg/version"
)

// DefaultPackagistURL is the public Composer repository.
const DefaultPackagistURL = "https://repo.packagist.org"

const unsetMarker = "__unset"

// Packagist is a Registry backed by Composer v2 metadata
// (GET {base}/p2/{vendor}/{name}.json).
//
// Metadata is fetched once per package and cached for the lifetime of the
// client; concurrent requests for the same package share one fetch.
// Changelogs are fetched from a URL template with {package} and
// {version} placeholders, e.g.
// https://raw.githubusercontent.com/{package}/{version}/CHANGELOG.md.
type Packagist struct {
	baseURL      string
	changelogURL string
	hostPackage  string
	fetch        *fetcher

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string][]release
}

// PackagistOption configures a Packagist client.
type PackagistOption func(*Packagist)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) PackagistOption {
	return func(p *Packagist) { p.fetch.client = c }
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) PackagistOption {
	return func(p *Packagist) { p.fetch.maxRetries = n }
}

// WithBaseDelay sets the initial retry delay.
func WithBaseDelay(d time.Duration) PackagistOption {
	return func(p *Packagist) { p.fetch.baseDelay = d }
}

// WithRequestTimeout sets the HTTP client timeout of the default client.
func WithRequestTimeout(d time.Duration) PackagistOption {
	return func(p *Packagist) {
		if d > 0 {
			p.fetch.client.Timeout = d
		}
	}
}

// WithChangelogURL sets the changelog URL template.
func WithChangelogURL(template string) PackagistOption {
	return func(p *Packagist) { p.changelogURL = template }
}

// WithHostPackage sets the requirement key used for host compatibility.
func WithHostPackage(pkg string) PackagistOption {
	return func(p *Packagist) {
		if pkg != "" {
			p.hostPackage = pkg
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) PackagistOption {
	return func(p *Packagist) { p.fetch.userAgent = ua }
}

// NewPackagist creates a Packagist client.
//
// Parameters:
//   - baseURL: Repository root; empty uses DefaultPackagistURL
//   - opts: Client options
//
// Returns:
//   - *Packagist: The client
func NewPackagist(baseURL string, opts ...PackagistOption) *Packagist {
	if baseURL == "" {
		baseURL = DefaultPackagistURL
	}
	p := &Packagist{
		baseURL:     strings.TrimRight(baseURL, "/"),
		hostPackage: constants.DefaultCorePackage,
		fetch:       newFetcher(),
		cache:       make(map[string][]release),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BreakerStates reports the circuit breaker state per upstream host.
func (p *Packagist) BreakerStates() map[string]string {
	return p.fetch.states()
}

// VersionsBetween implements Registry.
func (p *Packagist) VersionsBetween(ctx context.Context, pkg string, from, to version.Version, min version.Stability) ([]version.Version, error) {
	releases, err := p.releases(ctx, pkg)
	if err != nil {
		return nil, err
	}
	return filterRange(versionsOf(releases), from, &to, min), nil
}

// VersionsAfter implements Registry.
func (p *Packagist) VersionsAfter(ctx context.Context, pkg string, from version.Version, min version.Stability) ([]version.Version, error) {
	releases, err := p.releases(ctx, pkg)
	if err != nil {
		return nil, err
	}
	return filterRange(versionsOf(releases), from, nil, min), nil
}

// LatestCompatible implements Registry.
func (p *Packagist) LatestCompatible(ctx context.Context, pkg string, host, installed version.Version) (version.Version, bool, error) {
	releases, err := p.releases(ctx, pkg)
	if err != nil {
		return version.Version{}, false, err
	}
	v, ok := latestCompatible(releases, host, installed)
	return v, ok, nil
}

// Changelog implements Registry. Without a URL template no changelog is
// available.
func (p *Packagist) Changelog(ctx context.Context, pkg string, v version.Version) (string, bool, error) {
	if p.changelogURL == "" {
		return "", false, nil
	}
	target := strings.NewReplacer(
		"{package}", pkg,
		"{version}", v.Original(),
		"{normalized}", v.Normalized(),
	).Replace(p.changelogURL)

	body, found, err := p.fetch.get(ctx, target)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}
	return string(body), true, nil
}

// releases returns the cached releases of pkg, fetching them once.
func (p *Packagist) releases(ctx context.Context, pkg string) ([]release, error) {
	p.mu.RLock()
	cached, ok := p.cache[pkg]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The shared fetch must not die with the caller that started it; it is
	// bounded by the client timeout and the retry window instead.
	fetchCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(pkg, func() (interface{}, error) {
		rels, err := p.fetchReleases(fetchCtx, pkg)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cache[pkg] = rels
		p.mu.Unlock()
		return rels, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]release), nil
	}
}

type p2Response struct {
	Packages map[string][]map[string]json.RawMessage `json:"packages"`
	Minified string                                  `json:"minified"`
}

func (p *Packagist) fetchReleases(ctx context.Context, pkg string) ([]release, error) {
	target := fmt.Sprintf("%s/p2/%s.json", p.baseURL, pkg)
	verbose.Printf("GET %s", target)

	body, found, err := p.fetch.get(ctx, target)
	if err != nil {
		return nil, err
	}
	if !found {
		verbose.Printf("Package %s not found on %s", pkg, p.baseURL)
		return []release{}, nil
	}

	var resp p2Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding metadata for %s: %w", pkg, err)
	}

	entries := resp.Packages[pkg]
	if resp.Minified == "composer/2.0" {
		entries = expandMinified(entries)
	}

	out := make([]release, 0, len(entries))
	var skipped []string
	for _, entry := range entries {
		rel, ok := p.decodeRelease(entry)
		if !ok {
			skipped = append(skipped, string(entry["version"]))
			continue
		}
		out = append(out, rel)
	}
	if len(skipped) > 0 {
		verbose.Tracef("Skipped %d unusable versions of %s: %s", len(skipped), pkg, strings.Join(skipped, ", "))
	}
	return out, nil
}

// decodeRelease converts one expanded metadata entry. Branch aliases and
// entries with unusable requirements are skipped.
func (p *Packagist) decodeRelease(entry map[string]json.RawMessage) (release, bool) {
	var raw string
	if err := json.Unmarshal(entry["version"], &raw); err != nil {
		return release{}, false
	}
	v, err := version.Parse(raw)
	if err != nil {
		return release{}, false
	}

	var requires map[string]string
	if req, ok := entry["require"]; ok && !bytes.Equal(bytes.TrimSpace(req), []byte("[]")) {
		if err := json.Unmarshal(req, &requires); err != nil {
			return release{}, false
		}
	}

	rawReq := requires[p.hostPackage]
	c, err := parseConstraint(rawReq)
	if err != nil {
		verbose.Tracef("Ignoring %s: %v", raw, err)
		return release{}, false
	}
	return release{version: v, constraint: c, rawReq: rawReq}, true
}

// expandMinified undoes Composer 2 metadata minification: each entry
// only lists fields that differ from the previous one, and "__unset"
// removes an inherited field.
func expandMinified(entries []map[string]json.RawMessage) []map[string]json.RawMessage {
	out := make([]map[string]json.RawMessage, 0, len(entries))
	var previous map[string]json.RawMessage
	for _, entry := range entries {
		expanded := make(map[string]json.RawMessage, len(previous)+len(entry))
		for k, v := range previous {
			expanded[k] = v
		}
		for k, v := range entry {
			var s string
			if json.Unmarshal(v, &s) == nil && s == unsetMarker {
				delete(expanded, k)
				continue
			}
			expanded[k] = v
		}
		out = append(out, expanded)
		previous = expanded
	}
	return out
}
