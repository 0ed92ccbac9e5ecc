package version

import (
	"fmt"
	"strings"
)

// Stability is the release maturity tier of a version.
//
// Tiers are ordered Dev < Alpha < Beta < RC < Stable so they can be
// compared directly.
type Stability int

const (
	// Dev marks development snapshots (-dev suffix or x-dev branches).
	Dev Stability = iota
	// Alpha marks alpha pre-releases.
	Alpha
	// Beta marks beta pre-releases.
	Beta
	// RC marks release candidates.
	RC
	// Stable marks final releases, including patch releases.
	Stable
)

var stabilityNames = map[Stability]string{
	Dev:    "dev",
	Alpha:  "alpha",
	Beta:   "beta",
	RC:     "RC",
	Stable: "stable",
}

// String returns the lower-case tier name, except RC which keeps its
// conventional upper-case spelling.
func (s Stability) String() string {
	if name, ok := stabilityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stability(%d)", int(s))
}

// ParseStability parses a tier name case-insensitively.
//
// Parameters:
//   - raw: One of dev, alpha, beta, rc, stable (a, b, c are accepted aliases)
//
// Returns:
//   - Stability: The parsed tier
//   - error: When the name is unknown
func ParseStability(raw string) (Stability, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "dev":
		return Dev, nil
	case "alpha", "a":
		return Alpha, nil
	case "beta", "b":
		return Beta, nil
	case "rc", "c":
		return RC, nil
	case "stable", "":
		return Stable, nil
	}
	return Stable, fmt.Errorf("unknown stability %q", raw)
}

// Accepts reports whether a candidate tier is eligible given the minimum
// tier derived from the installed version. A Dev minimum accepts every tier.
func Accepts(minimum, candidate Stability) bool {
	if minimum == Dev {
		return true
	}
	return candidate >= minimum
}
