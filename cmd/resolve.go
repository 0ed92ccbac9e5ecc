package cmd

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajxudir/updatecheck/pkg/display"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/output"
	"github.com/ajxudir/updatecheck/pkg/resolver"
	"github.com/ajxudir/updatecheck/pkg/system"
	"github.com/ajxudir/updatecheck/pkg/verbose"
)

var (
	resolveCoreFlag        string
	resolvePluginFlags     []string
	resolveSystemFlag      string
	resolveLicensesFlag    string
	resolveFormatFlag      string
	resolvePackageNameFlag string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve update information for an installation",
	Long: `Resolve the releases available to the core application and each plugin.

The installation is given either as --core and --plugin flags or as a
system descriptor:

  updatecheck resolve --core 3.1.25 --plugin commerce=1.2.0
  updatecheck resolve --system "craft:3.1.25;pro,plugin-commerce:1.2.0"

Each component is reported as eligible, breakpoint (a specific release must
be installed first) or expired (the license must be renewed). A plugin that
cannot be resolved is reported separately and exits with code 1.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveCoreFlag, "core", "", "Installed core version")
	resolveCmd.Flags().StringArrayVarP(&resolvePluginFlags, "plugin", "p", nil, "Installed plugin as HANDLE=VERSION (repeatable)")
	resolveCmd.Flags().StringVar(&resolveSystemFlag, "system", "", "System descriptor, e.g. \"craft:3.1.25;pro,plugin-commerce:1.2.0\"")
	resolveCmd.Flags().StringVar(&resolveLicensesFlag, "licenses", "", "Reported license keys as HANDLE:KEY,...")
	resolveCmd.Flags().StringVarP(&resolveFormatFlag, "format", "f", "table", "Output format: table, json, yaml")
	resolveCmd.Flags().StringVar(&resolvePackageNameFlag, "include-package-name", "auto", "Echo package names: auto, true, false")
	resolveCmd.MarkFlagsMutuallyExclusive("system", "core")
	resolveCmd.MarkFlagsMutuallyExclusive("system", "plugin")
}

// runResolve executes the resolve command.
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Command line arguments (unused)
//
// Returns:
//   - error: PartialSuccessError when some plugins failed, ExitError for
//     usage and config errors, or the core failure
func runResolve(cmd *cobra.Command, args []string) error {
	format, err := parseFormatFlag(resolveFormatFlag)
	if err != nil {
		return err
	}
	include, err := parsePackageNameFlag(resolvePackageNameFlag)
	if err != nil {
		return err
	}
	req, err := buildRequest(include)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}

	var keys map[string]string
	if resolveLicensesFlag != "" {
		keys, err = system.ParseLicenses(resolveLicensesFlag)
		if err != nil {
			return errors.NewExitError(errors.ExitConfigError, err)
		}
	}

	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}
	licenses, err := loadLicenses(cfg, keys)
	if err != nil {
		return err
	}
	r, err := newResolver(cfg, licenses)
	if err != nil {
		return err
	}

	result, err := r.Resolve(commandContext(cmd), req)
	if err != nil {
		if stderrors.Is(err, errors.ErrMissingInstalledVersion) {
			return errors.NewExitError(errors.ExitConfigError, err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if output.IsStructuredFormat(format) {
		err = output.WriteResult(out, format, result)
	} else {
		err = display.RenderResult(out, cfg.GetCoreHandle(), result)
	}
	if err != nil {
		return err
	}

	if failed := result.Failed(); len(failed) > 0 {
		verbose.Infof("Failed plugins: %s", strings.Join(failed, ", "))
		succeeded := len(result.Plugins) - len(failed)
		return errors.NewPartialSuccessError(succeeded, len(failed), result.Errors())
	}
	return nil
}

// buildRequest assembles the resolver request from --system or from
// --core and --plugin.
func buildRequest(include *bool) (resolver.Request, error) {
	if resolveSystemFlag != "" {
		d, err := system.Parse(resolveSystemFlag)
		if err != nil {
			return resolver.Request{}, err
		}
		if d.Edition != "" {
			verbose.Infof("Core edition: %s", d.Edition)
		}
		return d.Request(include), nil
	}

	plugins, err := parsePluginFlags(resolvePluginFlags)
	if err != nil {
		return resolver.Request{}, err
	}
	return resolver.Request{
		CoreVersion:        resolveCoreFlag,
		Plugins:            plugins,
		IncludePackageName: include,
	}, nil
}

// parsePluginFlags parses HANDLE=VERSION values in flag order.
//
// Parameters:
//   - values: Raw --plugin values
//
// Returns:
//   - []resolver.PluginInstall: Plugins in flag order
//   - error: ValidationError for a malformed or duplicate entry
func parsePluginFlags(values []string) ([]resolver.PluginInstall, error) {
	plugins := make([]resolver.PluginInstall, 0, len(values))
	seen := make(map[string]bool, len(values))
	for i, raw := range values {
		handle, v, ok := strings.Cut(raw, "=")
		handle = strings.TrimSpace(handle)
		v = strings.TrimSpace(v)
		if !ok || handle == "" || v == "" {
			return nil, &errors.ValidationError{
				Field:    fmt.Sprintf("plugin[%d]", i),
				Message:  fmt.Sprintf("malformed plugin %q", raw),
				Expected: "HANDLE=VERSION",
			}
		}
		if seen[handle] {
			return nil, &errors.ValidationError{
				Field:   fmt.Sprintf("plugin[%d]", i),
				Message: fmt.Sprintf("duplicate plugin %q", handle),
			}
		}
		seen[handle] = true
		plugins = append(plugins, resolver.PluginInstall{Handle: handle, Version: v})
	}
	return plugins, nil
}

// parsePackageNameFlag parses --include-package-name. "auto" returns nil so
// the resolver derives the capability from the core version.
func parsePackageNameFlag(value string) (*bool, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "auto" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, errors.NewExitError(errors.ExitConfigError, &errors.ValidationError{
			Field:     "include-package-name",
			Message:   fmt.Sprintf("invalid value %q", value),
			ValidKeys: []string{"auto", "true", "false"},
		})
	}
	return &b, nil
}
