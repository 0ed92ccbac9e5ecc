// Package version parses and orders release version strings.
//
// Versions have up to four numeric segments (major.minor.patch.build), an
// optional pre-release or patch modifier with a number, and an optional
// trailing -dev flag. Parsing normalizes the input so that formatting
// variants compare and key identically: "1.0", "v1.0.0" and "1.0.0.0" all
// normalize to "1.0.0.0"; "2.0.0-beta.1" normalizes to "2.0.0.0-beta1".
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ajxudir/updatecheck/pkg/errors"
)

// wildcardSegment fills the segments of an x-dev branch alias.
const wildcardSegment = 9999999

var (
	versionPattern = regexp.MustCompile(
		`(?i)^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?` +
			`(?:[._-]?(stable|beta|b|rc|c|alpha|a|patch|pl|p)(?:[._-]?(\d+))?)?` +
			`(?:[._-]?(dev))?$`)
	wildcardPattern = regexp.MustCompile(`(?i)^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?\.[x*][._-]?dev$`)
)

// modifier is the pre-release or patch marker. The zero value is a plain
// stable release so that the zero Version is 0.0.0.0.
type modifier int

const (
	modStable modifier = iota
	modPatch
	modRC
	modBeta
	modAlpha
	modDev
)

// rank orders modifiers: dev < alpha < beta < RC < stable < patch.
func (m modifier) rank() int {
	switch m {
	case modDev:
		return 0
	case modAlpha:
		return 1
	case modBeta:
		return 2
	case modRC:
		return 3
	case modPatch:
		return 5
	default:
		return 4
	}
}

func (m modifier) label() string {
	switch m {
	case modDev:
		return "dev"
	case modAlpha:
		return "alpha"
	case modBeta:
		return "beta"
	case modRC:
		return "RC"
	case modPatch:
		return "patch"
	default:
		return ""
	}
}

func parseModifier(raw string) modifier {
	switch strings.ToLower(raw) {
	case "alpha", "a":
		return modAlpha
	case "beta", "b":
		return modBeta
	case "rc", "c":
		return modRC
	case "patch", "pl", "p":
		return modPatch
	default:
		return modStable
	}
}

// Version is an immutable, comparable release version.
//
// Fields:
//   - original: The trimmed input string, kept for display
//   - segments: major, minor, patch and build numbers
//   - mod: Pre-release or patch modifier
//   - modNum: Number following the modifier (0 when absent)
//   - devSuffix: Trailing -dev after a modifier (e.g. 1.0.0-beta2-dev)
type Version struct {
	original  string
	segments  [4]int
	mod       modifier
	modNum    int
	devSuffix bool
}

// Parse parses a version string.
//
// Accepted forms include "3.1", "v3.1.20", "3.0.41.1", "1.0.0-beta.1",
// "1.0.0RC2", "2.0.0-alpha1-dev", "1.0.0-dev", "3.2.x-dev" and
// "1.2.3+build.5" (build metadata is discarded). Branch names such as
// "dev-main" are rejected because they have no ordering.
//
// Parameters:
//   - raw: The version string
//
// Returns:
//   - Version: The parsed version
//   - error: *errors.ParseError when raw is empty or malformed
func Parse(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Version{}, &errors.ParseError{Input: raw, Kind: errors.ParseErrorEmpty}
	}

	body := trimmed
	if idx := strings.IndexByte(body, '+'); idx >= 0 {
		body = body[:idx]
	}

	if match := wildcardPattern.FindStringSubmatch(body); match != nil {
		v := Version{original: trimmed, mod: modDev}
		for i := range v.segments {
			v.segments[i] = wildcardSegment
		}
		for i := 0; i < 3; i++ {
			if match[i+1] == "" {
				break
			}
			n, err := strconv.Atoi(match[i+1])
			if err != nil {
				return Version{}, malformed(raw)
			}
			v.segments[i] = n
		}
		return v, nil
	}

	match := versionPattern.FindStringSubmatch(body)
	if match == nil {
		return Version{}, malformed(raw)
	}

	v := Version{original: trimmed}
	for i := 0; i < 4; i++ {
		if match[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(match[i+1])
		if err != nil {
			return Version{}, malformed(raw)
		}
		v.segments[i] = n
	}

	if match[5] != "" {
		v.mod = parseModifier(match[5])
		if match[6] != "" && v.mod != modStable {
			n, err := strconv.Atoi(match[6])
			if err != nil {
				return Version{}, malformed(raw)
			}
			v.modNum = n
		}
	}

	if match[7] != "" {
		// A bare -dev (or stable-dev) is the dev modifier itself.
		if v.mod == modStable {
			v.mod = modDev
		} else {
			v.devSuffix = true
		}
	}

	return v, nil
}

// MustParse is like Parse but panics on error. It is intended for
// literals in rule tables and tests.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func malformed(raw string) error {
	return &errors.ParseError{Input: raw, Kind: errors.ParseErrorMalformed}
}

// Original returns the trimmed input string. A version built by the zero
// value returns its normalized form instead.
func (v Version) Original() string {
	if v.original == "" {
		return v.Normalized()
	}
	return v.original
}

// String implements fmt.Stringer using the display form.
func (v Version) String() string {
	return v.Original()
}

// Normalized returns the canonical key: four dot-separated segments plus
// the modifier, e.g. "3.0.41.1", "2.0.0.0-beta1", "1.0.0.0-RC2-dev".
// Parsing the normalized form yields an Equal version.
func (v Version) Normalized() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d.%d", v.segments[0], v.segments[1], v.segments[2], v.segments[3])
	if label := v.mod.label(); label != "" {
		sb.WriteString("-")
		sb.WriteString(label)
		if v.modNum > 0 {
			sb.WriteString(strconv.Itoa(v.modNum))
		}
	}
	if v.devSuffix {
		sb.WriteString("-dev")
	}
	return sb.String()
}

// Semver returns a three-segment semantic version string suitable for
// constraint libraries. The build segment is dropped, so 3.0.41.1 maps to
// 3.0.41; modifiers map to pre-release identifiers (beta1 → -beta.1).
func (v Version) Semver() string {
	base := fmt.Sprintf("%d.%d.%d", v.segments[0], v.segments[1], v.segments[2])
	var pre []string
	switch v.mod {
	case modStable:
	case modPatch:
		// Patch releases sort above the release they patch, which semver
		// cannot express; treat them as the plain release.
	case modDev:
		pre = append(pre, "dev")
	default:
		pre = append(pre, strings.ToLower(v.mod.label()))
		if v.modNum > 0 {
			pre = append(pre, strconv.Itoa(v.modNum))
		}
	}
	if v.devSuffix {
		pre = append(pre, "dev")
	}
	if len(pre) == 0 {
		return base
	}
	return base + "-" + strings.Join(pre, ".")
}

// Segments returns the major, minor, patch and build numbers.
func (v Version) Segments() [4]int {
	return v.segments
}

// Stability returns the release tier of the version.
func (v Version) Stability() Stability {
	if v.devSuffix {
		return Dev
	}
	switch v.mod {
	case modDev:
		return Dev
	case modAlpha:
		return Alpha
	case modBeta:
		return Beta
	case modRC:
		return RC
	default:
		return Stable
	}
}

// Compare returns -1, 0 or +1 when a is older than, equal to, or newer
// than b. The order is total: segments first, then the modifier
// (dev < alpha < beta < RC < stable < patch), then the modifier number,
// then the trailing -dev flag which sorts below its base.
func Compare(a, b Version) int {
	for i := range a.segments {
		if c := compareInts(a.segments[i], b.segments[i]); c != 0 {
			return c
		}
	}
	if c := compareInts(a.mod.rank(), b.mod.rank()); c != 0 {
		return c
	}
	if c := compareInts(a.modNum, b.modNum); c != 0 {
		return c
	}
	switch {
	case a.devSuffix == b.devSuffix:
		return 0
	case a.devSuffix:
		return -1
	default:
		return 1
	}
}

// Less reports whether v is older than other.
func (v Version) Less(other Version) bool { return Compare(v, other) < 0 }

// LessOrEqual reports whether v is older than or equal to other.
func (v Version) LessOrEqual(other Version) bool { return Compare(v, other) <= 0 }

// Greater reports whether v is newer than other.
func (v Version) Greater(other Version) bool { return Compare(v, other) > 0 }

// Equal reports whether v and other normalize identically.
func (v Version) Equal(other Version) bool { return Compare(v, other) == 0 }

func compareInts(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}
