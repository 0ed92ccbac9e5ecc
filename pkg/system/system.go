// Package system parses the legacy installation descriptor strings that
// older clients send instead of a structured request.
//
// A system descriptor lists the core and its plugins:
//
//	craft:3.1.0;pro,plugin-commerce:2.0.0,plugin-seo:1.4.2
//
// A plugin license descriptor maps plugin handles to license keys:
//
//	commerce:XXXX-YYYY,seo:ZZZZ
package system

import (
	"fmt"
	"strings"

	"github.com/ajxudir/updatecheck/pkg/constants"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/resolver"
	"github.com/ajxudir/updatecheck/pkg/verbose"
)

// pluginPrefix marks plugin entries in a system descriptor.
const pluginPrefix = "plugin-"

// Descriptor is a parsed system descriptor.
//
// Fields:
//   - CoreVersion: Installed core version as written; empty when absent
//   - Edition: Core edition (e.g. "solo", "pro"); empty when absent
//   - Plugins: Installed plugins in descriptor order
type Descriptor struct {
	CoreVersion string
	Edition     string
	Plugins     []resolver.PluginInstall
}

// Request converts the descriptor into a resolver request.
//
// Parameters:
//   - includePackageName: Optional capability override; nil derives it from the core version
//
// Returns:
//   - resolver.Request: Request with plugins in descriptor order
func (d Descriptor) Request(includePackageName *bool) resolver.Request {
	plugins := make([]resolver.PluginInstall, len(d.Plugins))
	copy(plugins, d.Plugins)
	return resolver.Request{
		CoreVersion:        d.CoreVersion,
		Plugins:            plugins,
		IncludePackageName: includePackageName,
	}
}

// Parse parses a system descriptor.
//
// Entries are separated by commas. The core entry is "craft:VERSION" with an
// optional ";EDITION" suffix, plugin entries are "plugin-HANDLE:VERSION".
// Entries with any other name are ignored. Versions are not validated here;
// the resolver reports malformed versions per component.
//
// Parameters:
//   - raw: Descriptor string
//
// Returns:
//   - Descriptor: Parsed descriptor
//   - error: ValidationError for a malformed entry or a duplicate component
func Parse(raw string) (Descriptor, error) {
	var d Descriptor
	seenCore := false
	seen := make(map[string]bool)

	for i, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return Descriptor{}, entryError(i, entry, "expected NAME:VERSION")
		}

		switch {
		case name == constants.DefaultCoreHandle:
			if seenCore {
				return Descriptor{}, entryError(i, entry, "duplicate core entry")
			}
			seenCore = true
			v, edition, _ := strings.Cut(value, ";")
			d.CoreVersion = strings.TrimSpace(v)
			d.Edition = strings.TrimSpace(edition)
		case strings.HasPrefix(name, pluginPrefix):
			handle := strings.TrimPrefix(name, pluginPrefix)
			if handle == "" {
				return Descriptor{}, entryError(i, entry, "missing plugin handle")
			}
			if seen[handle] {
				return Descriptor{}, entryError(i, entry, fmt.Sprintf("duplicate plugin %q", handle))
			}
			seen[handle] = true
			d.Plugins = append(d.Plugins, resolver.PluginInstall{Handle: handle, Version: value})
		default:
			verbose.Debugf("Ignoring system entry %q", entry)
		}
	}
	return d, nil
}

// ParseLicenses parses a plugin license descriptor into handle → key.
// Later entries for the same handle replace earlier ones.
//
// Parameters:
//   - raw: Descriptor string, e.g. "commerce:KEY1,seo:KEY2"
//
// Returns:
//   - map[string]string: License keys by plugin handle, never nil
//   - error: ValidationError for a malformed entry
func ParseLicenses(raw string) (map[string]string, error) {
	keys := make(map[string]string)
	for i, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		handle, key, ok := strings.Cut(entry, ":")
		handle = strings.TrimSpace(handle)
		key = strings.TrimSpace(key)
		if !ok || handle == "" || key == "" {
			return nil, &errors.ValidationError{
				Field:    fmt.Sprintf("licenses[%d]", i),
				Message:  fmt.Sprintf("malformed license entry %q", entry),
				Expected: "HANDLE:KEY",
			}
		}
		keys[handle] = key
	}
	return keys, nil
}

func entryError(index int, entry, message string) *errors.ValidationError {
	return &errors.ValidationError{
		Field:    fmt.Sprintf("system[%d]", index),
		Message:  fmt.Sprintf("%s in %q", message, entry),
		Expected: "craft:VERSION[;EDITION] or plugin-HANDLE:VERSION",
	}
}
