// Package breakpoint classifies installed versions against mandatory
// intermediate releases.
//
// A breakpoint rule says: an installation whose version lies in
// [Lower, Upper) (or (Lower, Upper) for an exclusive lower bound) must
// install Target before it may move any further. Rules are kept per package
// and evaluated narrowest-first so overlapping ranges resolve the same way
// every time.
package breakpoint

import (
	"fmt"
	"sort"

	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/version"
)

// Rule is a single breakpoint range.
//
// Fields:
//   - Lower: Lowest matching version
//   - LowerExclusive: Lower itself does not match when true
//   - Upper: Exclusive upper bound
//   - Target: The release that must be installed first
type Rule struct {
	Lower          version.Version
	LowerExclusive bool
	Upper          version.Version
	Target         version.Version
}

// Matches reports whether v falls inside the rule's range.
func (r Rule) Matches(v version.Version) bool {
	if r.LowerExclusive {
		if !r.Lower.Less(v) {
			return false
		}
	} else if v.Less(r.Lower) {
		return false
	}
	return v.Less(r.Upper)
}

// String renders the rule in interval notation, e.g.
// "[3.1.20, 3.1.34) → 3.1.34".
func (r Rule) String() string {
	open := "["
	if r.LowerExclusive {
		open = "("
	}
	return fmt.Sprintf("%s%s, %s) → %s", open, r.Lower.Original(), r.Upper.Original(), r.Target.Original())
}

// Table is an immutable, priority-ordered list of rules for one package.
// The zero value and a nil *Table match nothing.
type Table struct {
	rules []Rule
}

// NewTable copies rules into narrowest-first priority order: ascending
// Upper, then descending Lower, then declaration order.
//
// Parameters:
//   - rules: Rules in declaration order; the slice is not modified
//
// Returns:
//   - *Table: The ordered table
func NewTable(rules []Rule) *Table {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)

	sort.SliceStable(ordered, func(i, j int) bool {
		if c := version.Compare(ordered[i].Upper, ordered[j].Upper); c != 0 {
			return c < 0
		}
		if c := version.Compare(ordered[i].Lower, ordered[j].Lower); c != 0 {
			return c > 0
		}
		// An exclusive lower bound is the narrower of two equal bounds.
		return ordered[i].LowerExclusive && !ordered[j].LowerExclusive
	})

	return &Table{rules: ordered}
}

// Classify returns the first rule, in priority order, whose range contains
// installed.
//
// Returns:
//   - Rule: The matching rule
//   - bool: false when no rule matches
func (t *Table) Classify(installed version.Version) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	for _, rule := range t.rules {
		if rule.Matches(installed) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Rules returns a copy of the rules in priority order.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Len returns the number of rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Set holds one table per package identifier.
type Set struct {
	tables map[string]*Table
}

// NewSet builds a Set from per-package rule lists.
func NewSet(rules map[string][]Rule) *Set {
	s := &Set{tables: make(map[string]*Table, len(rules))}
	for pkg, rs := range rules {
		s.tables[pkg] = NewTable(rs)
	}
	return s
}

// For returns the table for a package, or nil when it has no rules.
func (s *Set) For(pkg string) *Table {
	if s == nil {
		return nil
	}
	return s.tables[pkg]
}

// Classify looks up the package's table and classifies installed against it.
func (s *Set) Classify(pkg string, installed version.Version) (Rule, bool) {
	return s.For(pkg).Classify(installed)
}

// Packages returns the package identifiers that have rules, sorted.
func (s *Set) Packages() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.tables))
	for pkg := range s.tables {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// Merge returns a new Set where each package in override replaces the
// receiver's rules for that package. Packages only in the receiver keep
// their rules. Neither input is modified.
func (s *Set) Merge(override *Set) *Set {
	merged := &Set{tables: make(map[string]*Table)}
	if s != nil {
		for pkg, t := range s.tables {
			merged.tables[pkg] = t
		}
	}
	if override != nil {
		for pkg, t := range override.tables {
			merged.tables[pkg] = t
		}
	}
	return merged
}

// DefaultRules returns the core application's built-in breakpoints.
//
// Installations of 3.0 pre-releases up to 3.0.41 must pass through 3.0.41.1,
// which carries the migrations 3.1 depends on; 3.1.20 through 3.1.33 must
// pass through 3.1.34.
func DefaultRules() []Rule {
	return []Rule{
		{
			Lower:          version.MustParse("3.0.0-alpha.1"),
			LowerExclusive: true,
			Upper:          version.MustParse("3.0.41.1"),
			Target:         version.MustParse("3.0.41.1"),
		},
		{
			Lower:  version.MustParse("3.1.20"),
			Upper:  version.MustParse("3.1.34"),
			Target: version.MustParse("3.1.34"),
		},
	}
}

// DefaultSet returns a Set holding DefaultRules for the core package.
func DefaultSet() *Set {
	return NewSet(map[string][]Rule{constants.DefaultCorePackage: DefaultRules()})
}
