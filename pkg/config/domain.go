package config

import (
	"fmt"

	"github.com/ajxudir/updatecheck/pkg/breakpoint"
	"github.com/ajxudir/updatecheck/pkg/resolver"
	"github.com/ajxudir/updatecheck/pkg/version"
)

// BreakpointSet builds the breakpoint rules for the resolver.
//
// The built-in rules of the core package are kept unless the config lists
// rules for that package. A package listed with no rules has its
// breakpoints disabled.
//
// Returns:
//   - *breakpoint.Set: Built-in rules overridden per package by the config
//   - error: If a configured version does not parse
func (c *Config) BreakpointSet() (*breakpoint.Set, error) {
	configured := make(map[string][]breakpoint.Rule, len(c.Breakpoints))
	for pkg, rules := range c.Breakpoints {
		out := make([]breakpoint.Rule, 0, len(rules))
		for i, r := range rules {
			rule, err := r.toRule()
			if err != nil {
				return nil, fmt.Errorf("breakpoints.%s[%d]: %w", pkg, i, err)
			}
			out = append(out, rule)
		}
		configured[pkg] = out
	}

	return breakpoint.DefaultSet().Merge(breakpoint.NewSet(configured)), nil
}

func (b BreakpointCfg) toRule() (breakpoint.Rule, error) {
	lower, err := version.Parse(b.Lower)
	if err != nil {
		return breakpoint.Rule{}, fmt.Errorf("lower: %w", err)
	}
	upper, err := version.Parse(b.Upper)
	if err != nil {
		return breakpoint.Rule{}, fmt.Errorf("upper: %w", err)
	}
	target, err := version.Parse(b.Target)
	if err != nil {
		return breakpoint.Rule{}, fmt.Errorf("target: %w", err)
	}
	return breakpoint.Rule{
		Lower:          lower,
		LowerExclusive: b.LowerExclusive,
		Upper:          upper,
		Target:         target,
	}, nil
}

// Capability builds the packageName capability boundaries.
//
// Returns:
//   - resolver.Capability: Configured boundaries, defaults for unset fields
//   - error: If a configured version does not parse
func (c *Config) Capability() (resolver.Capability, error) {
	capability := resolver.DefaultCapability()
	if c.PackageName == nil {
		return capability, nil
	}
	if c.PackageName.Since != "" {
		since, err := version.Parse(c.PackageName.Since)
		if err != nil {
			return resolver.Capability{}, fmt.Errorf("package_name.since: %w", err)
		}
		capability.Since = since
	}
	if c.PackageName.Exclude != nil {
		exclude := make([]version.Version, 0, len(c.PackageName.Exclude))
		for i, raw := range c.PackageName.Exclude {
			v, err := version.Parse(raw)
			if err != nil {
				return resolver.Capability{}, fmt.Errorf("package_name.exclude[%d]: %w", i, err)
			}
			exclude = append(exclude, v)
		}
		capability.Exclude = exclude
	}
	return capability, nil
}
