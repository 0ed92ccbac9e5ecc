package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/verbose"
	"github.com/ajxudir/updatecheck/pkg/version"
)

// maxConcurrency bounds the configurable plugin fan-out.
const maxConcurrency = 64

var (
	lineNumberPattern = regexp.MustCompile(`line (\d+):`)
	currencyPattern   = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidationResult holds the results of configuration validation.
type ValidationResult struct {
	Errors   []*errors.ValidationError
	Warnings []string
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessages returns all error messages as a formatted string.
//
// Returns:
//   - string: formatted error messages, or empty string if no errors
func (r *ValidationResult) ErrorMessages() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, "  - "+e.Error())
	}
	return "Configuration validation failed:\n" + strings.Join(msgs, "\n")
}

// VerboseErrorMessages is like ErrorMessages but includes expected values,
// valid keys and hints.
//
// Returns:
//   - string: detailed formatted error messages, or empty string if no errors
func (r *ValidationResult) VerboseErrorMessages() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, "  - "+e.VerboseError())
	}
	return "Configuration validation failed:\n" + strings.Join(msgs, "\n")
}

// Err returns the validation errors as a single error, or nil. The result
// matches *errors.ValidationError with errors.As.
func (r *ValidationResult) Err() error {
	switch len(r.Errors) {
	case 0:
		return nil
	case 1:
		return r.Errors[0]
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	return stderrors.Join(errs...)
}

func (r *ValidationResult) add(field, message string) *errors.ValidationError {
	verbose.Printf("Config validation ERROR: %s: %s", field, message)
	e := errors.NewConfigValidationError(field, message)
	r.Errors = append(r.Errors, e)
	return e
}

// Schema information for validation errors
var configSchema = map[string][]string{
	"Config":         {"extends", "working_dir", "core", "host_package", "plugins", "breakpoints", "package_name", "renewal_currency", "concurrency", "registry", "licenses", "security"},
	"CoreCfg":        {"handle", "package"},
	"BreakpointCfg":  {"lower", "lower_exclusive", "upper", "target"},
	"PackageNameCfg": {"since", "exclude"},
	"RegistryCfg":    {"source", "path", "url", "changelog_url", "timeout_seconds", "max_retries"},
	"SecurityCfg":    {"allow_path_traversal", "allow_absolute_paths", "max_config_file_size"},
}

// commonTypos maps common typos to correct field names
var commonTypos = map[string]map[string]string{
	"Config": {
		"extend":          "extends",
		"plugin":          "plugins",
		"breakpoint":      "breakpoints",
		"hostPackage":     "host_package",
		"packageName":     "package_name",
		"renewalCurrency": "renewal_currency",
		"license":         "licenses",
		"workingDir":      "working_dir",
	},
	"BreakpointCfg": {
		"from":           "lower",
		"to":             "target",
		"min":            "lower",
		"max":            "upper",
		"exclusive":      "lower_exclusive",
		"lowerExclusive": "lower_exclusive",
	},
	"RegistryCfg": {
		"type":         "source",
		"file":         "path",
		"changelog":    "changelog_url",
		"changelogUrl": "changelog_url",
		"timeout":      "timeout_seconds",
		"retries":      "max_retries",
		"maxRetries":   "max_retries",
	},
}

// ValidateConfigFile validates YAML configuration data for syntax errors and unknown fields.
//
// This performs strict validation using KnownFields(true) to detect typos,
// then validates the decoded structure.
//
// Parameters:
//   - data: YAML configuration data as bytes
//
// Returns:
//   - *ValidationResult: validation result with any errors and warnings found
func ValidateConfigFile(data []byte) *ValidationResult {
	result := &ValidationResult{}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		if stderrors.Is(err, io.EOF) {
			// An empty document is a valid, empty config.
			return result
		}
		errMsg := err.Error()
		verbose.Printf("Config validation FAILED: YAML decode error: %v", err)

		switch {
		case strings.Contains(errMsg, "field") && strings.Contains(errMsg, "not found"):
			fieldName, typeName := extractFieldAndType(errMsg)
			message := fmt.Sprintf("unknown field '%s'", fieldName)
			if line := extractLineNumber(errMsg); line > 0 {
				message = fmt.Sprintf("unknown field '%s' (line %d)", fieldName, line)
			}
			if suggestion := suggestSimilarField(fieldName, typeName); suggestion != "" {
				message += fmt.Sprintf(" (did you mean '%s'?)", suggestion)
			}
			verr := &errors.ValidationError{Message: message, ValidKeys: configSchema[typeName]}
			result.Errors = append(result.Errors, verr)
		case strings.Contains(errMsg, "cannot unmarshal"):
			result.Errors = append(result.Errors, &errors.ValidationError{Message: errMsg})
		default:
			result.Errors = append(result.Errors, &errors.ValidationError{
				Message: fmt.Sprintf("YAML syntax error: %s", errMsg),
			})
		}
		return result
	}

	validateConfigStruct(&cfg, result)
	return result
}

// Validate validates a loaded Config struct.
//
// Returns:
//   - *ValidationResult: validation result with any errors and warnings found
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}
	validateConfigStruct(c, result)
	return result
}

// validateConfigStruct validates versions, enums and ranges of a Config.
func validateConfigStruct(cfg *Config, result *ValidationResult) {
	validateBreakpoints(cfg.Breakpoints, result)

	if cfg.PackageName != nil {
		if cfg.PackageName.Since != "" {
			if _, err := version.Parse(cfg.PackageName.Since); err != nil {
				result.add("package_name.since", err.Error())
			}
		}
		for i, raw := range cfg.PackageName.Exclude {
			if _, err := version.Parse(raw); err != nil {
				result.add(fmt.Sprintf("package_name.exclude[%d]", i), err.Error())
			}
		}
	}

	if cfg.RenewalCurrency != "" && !currencyPattern.MatchString(cfg.RenewalCurrency) {
		e := result.add("renewal_currency", fmt.Sprintf("invalid currency '%s'", cfg.RenewalCurrency))
		e.Expected = "ISO 4217 code such as USD"
	}

	if cfg.Concurrency < 0 || cfg.Concurrency > maxConcurrency {
		e := result.add("concurrency", fmt.Sprintf("concurrency %d out of range", cfg.Concurrency))
		e.Expected = fmt.Sprintf("0 (default) to %d", maxConcurrency)
	}

	handles := make([]string, 0, len(cfg.Plugins))
	for handle := range cfg.Plugins {
		handles = append(handles, handle)
	}
	sort.Strings(handles)
	for _, handle := range handles {
		if strings.TrimSpace(handle) == "" {
			result.add("plugins", "plugin handle cannot be empty")
			continue
		}
		if pkg := cfg.Plugins[handle]; !strings.Contains(pkg, "/") {
			e := result.add("plugins."+handle, fmt.Sprintf("invalid package '%s'", pkg))
			e.Expected = "vendor/name"
		}
	}

	validateRegistry(&cfg.Registry, result)
}

func validateBreakpoints(breakpoints map[string][]BreakpointCfg, result *ValidationResult) {
	packages := make([]string, 0, len(breakpoints))
	for pkg := range breakpoints {
		packages = append(packages, pkg)
	}
	sort.Strings(packages)

	for _, pkg := range packages {
		if strings.TrimSpace(pkg) == "" {
			result.add("breakpoints", "package identifier cannot be empty")
			continue
		}
		for i, rule := range breakpoints[pkg] {
			prefix := fmt.Sprintf("breakpoints.%s[%d]", pkg, i)
			lower, lowerErr := version.Parse(rule.Lower)
			if lowerErr != nil {
				result.add(prefix+".lower", lowerErr.Error())
			}
			upper, upperErr := version.Parse(rule.Upper)
			if upperErr != nil {
				result.add(prefix+".upper", upperErr.Error())
			}
			target, targetErr := version.Parse(rule.Target)
			if targetErr != nil {
				result.add(prefix+".target", targetErr.Error())
			}
			if lowerErr != nil || upperErr != nil || targetErr != nil {
				continue
			}

			if !lower.Less(upper) {
				e := result.add(prefix, fmt.Sprintf("empty range: lower %s is not below upper %s", rule.Lower, rule.Upper))
				e.Hint = "upper is exclusive; use upper > lower"
			}
			if target.Less(lower) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: target %s is below the range it applies to", prefix, rule.Target))
			}
		}
	}
}

func validateRegistry(reg *RegistryCfg, result *ValidationResult) {
	switch reg.Source {
	case "", RegistrySourcePackagist:
		if reg.URL != "" {
			if u, err := url.Parse(reg.URL); err != nil || u.Scheme == "" || u.Host == "" {
				e := result.add("registry.url", fmt.Sprintf("invalid URL '%s'", reg.URL))
				e.Expected = "absolute http(s) URL"
			}
		}
	case RegistrySourceFile:
		if reg.Path == "" {
			e := result.add("registry.path", "path is required for the file source")
			e.Hint = "point registry.path at a YAML registry fixture"
		}
	default:
		e := result.add("registry.source", fmt.Sprintf("unknown registry source '%s'", reg.Source))
		e.ValidKeys = []string{RegistrySourceFile, RegistrySourcePackagist}
	}

	if reg.TimeoutSeconds < 0 {
		e := result.add("registry.timeout_seconds", "timeout must be positive")
		e.Expected = "positive integer (seconds)"
	}
	if reg.MaxRetries != nil && *reg.MaxRetries < 0 {
		result.add("registry.max_retries", "retries cannot be negative")
	}
}

// extractFieldAndType extracts the field and type names from an error like
// "line 3: field foo not found in type config.Config".
func extractFieldAndType(errMsg string) (field, typeName string) {
	parts := strings.SplitN(errMsg, "field ", 2)
	if len(parts) == 2 {
		field, _, _ = strings.Cut(parts[1], " ")
	}

	if idx := strings.Index(errMsg, "in type config."); idx >= 0 {
		typePart := errMsg[idx+len("in type config."):]
		if endIdx := strings.IndexAny(typePart, " \n"); endIdx > 0 {
			typeName = typePart[:endIdx]
		} else {
			typeName = typePart
		}
	}

	return field, typeName
}

// extractLineNumber extracts the line number from a YAML error message.
//
// Returns:
//   - int: the line number, or 0 if not found
func extractLineNumber(errMsg string) int {
	matches := lineNumberPattern.FindStringSubmatch(errMsg)
	if len(matches) >= 2 {
		var lineNum int
		_, _ = fmt.Sscanf(matches[1], "%d", &lineNum)
		return lineNum
	}
	return 0
}

// suggestSimilarField returns a suggested field name if the input looks like a typo.
//
// Parameters:
//   - field: the unknown field name
//   - typeName: the type name where the field was found
//
// Returns:
//   - string: suggested correct field name, or empty string if no suggestion
func suggestSimilarField(field, typeName string) string {
	if typos, ok := commonTypos[typeName]; ok {
		if suggestion, found := typos[field]; found {
			return suggestion
		}
	}

	if strings.Contains(field, "-") {
		snakeCase := strings.ReplaceAll(field, "-", "_")
		for _, known := range configSchema[typeName] {
			if known == snakeCase {
				return snakeCase
			}
		}
	}

	return ""
}
