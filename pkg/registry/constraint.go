package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ajxudir/updatecheck/pkg/version"
)

var stabilityFlag = regexp.MustCompile(`@[A-Za-z]+`)

// release is one published version together with its host requirement.
type release struct {
	version    version.Version
	constraint *semver.Constraints
	rawReq     string
	changelog  string
}

// parseConstraint converts a Composer host requirement into a semver
// constraint. Composer's single "|" alternation and "@stability" flags are
// normalized first. An empty requirement returns nil, meaning any host.
func parseConstraint(raw string) (*semver.Constraints, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return nil, nil
	}
	normalized := stabilityFlag.ReplaceAllString(raw, "")
	normalized = strings.ReplaceAll(normalized, "||", "|")
	normalized = strings.ReplaceAll(normalized, "|", "||")

	c, err := semver.NewConstraint(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid host requirement %q: %w", raw, err)
	}
	return c, nil
}

// hostSatisfies reports whether host meets c. Four-segment host versions
// are compared on their first three segments.
func hostSatisfies(c *semver.Constraints, host version.Version) bool {
	if c == nil {
		return true
	}
	hv, err := semver.NewVersion(host.Semver())
	if err != nil {
		return false
	}
	return c.Check(hv)
}

// latestCompatible picks the newest stable release whose requirement the
// host satisfies. The newest compatible release of any stability wins
// instead when no stable release qualifies, or when installed is a
// pre-release and no compatible stable release is newer than it.
func latestCompatible(releases []release, host, installed version.Version) (version.Version, bool) {
	var (
		bestStable, bestAny version.Version
		haveStable, haveAny bool
	)
	for _, r := range releases {
		if !hostSatisfies(r.constraint, host) {
			continue
		}
		if !haveAny || r.version.Greater(bestAny) {
			bestAny, haveAny = r.version, true
		}
		if r.version.Stability() == version.Stable && (!haveStable || r.version.Greater(bestStable)) {
			bestStable, haveStable = r.version, true
		}
	}
	if !haveStable {
		return bestAny, haveAny
	}
	if installed.Stability() != version.Stable && !bestStable.Greater(installed) {
		return bestAny, true
	}
	return bestStable, true
}

func versionsOf(releases []release) []version.Version {
	out := make([]version.Version, 0, len(releases))
	for _, r := range releases {
		out = append(out, r.version)
	}
	return out
}
