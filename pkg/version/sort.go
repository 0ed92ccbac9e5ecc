package version

import "sort"

// Sort sorts versions in place, oldest first unless desc is set.
// The sort is stable so equal versions keep their input order.
//
// Parameters:
//   - versions: Slice of versions to sort (modified in place)
//   - desc: Sort newest first when true
func Sort(versions []Version, desc bool) {
	sort.SliceStable(versions, func(i, j int) bool {
		comparison := Compare(versions[i], versions[j])
		if desc {
			return comparison > 0
		}

		return comparison < 0
	})
}

// Dedupe returns versions with duplicates removed, keeping the first
// occurrence of each normalized key.
//
// Parameters:
//   - versions: Input versions in any order
//
// Returns:
//   - []Version: A new slice, never nil, in input order
func Dedupe(versions []Version) []Version {
	seen := make(map[string]struct{}, len(versions))
	out := make([]Version, 0, len(versions))
	for _, v := range versions {
		key := v.Normalized()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Max returns the newest version, or false for an empty slice.
func Max(versions []Version) (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if v.Greater(best) {
			best = v
		}
	}
	return best, true
}

// ParseAll parses every string, skipping entries that are not versions.
// Registries publish branch aliases such as dev-main alongside tagged
// releases; those have no place in an ordered list.
//
// Returns:
//   - []Version: The parsed versions in input order
//   - []string: The raw strings that were skipped
func ParseAll(raws []string) ([]Version, []string) {
	out := make([]Version, 0, len(raws))
	var skipped []string
	for _, raw := range raws {
		v, err := Parse(raw)
		if err != nil {
			skipped = append(skipped, raw)
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}
