package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ajxudir/updatecheck/pkg/changelog"
	"github.com/ajxudir/updatecheck/pkg/display"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/output"
	"github.com/ajxudir/updatecheck/pkg/releases"
	"github.com/ajxudir/updatecheck/pkg/version"
)

var releasesFormatFlag string

var releasesCmd = &cobra.Command{
	Use:   "releases PACKAGE FROM [TO]",
	Short: "List releases of a package newer than a version",
	Long: `List the releases of a package newer than FROM, newest first, enriched
with changelog details. When TO is given only releases up to and including
TO are listed.

Pre-releases are listed only when FROM is itself a pre-release of the same
or lower stability.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runReleases,
}

func init() {
	releasesCmd.Flags().StringVarP(&releasesFormatFlag, "format", "f", "table", "Output format: table, json, yaml")
}

// runReleases executes the releases command.
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: PACKAGE, FROM and optionally TO
//
// Returns:
//   - error: ExitError for usage and config errors, or the registry failure
func runReleases(cmd *cobra.Command, args []string) error {
	format, err := parseFormatFlag(releasesFormatFlag)
	if err != nil {
		return err
	}

	pkg := args[0]
	from, err := version.Parse(args[1])
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}
	var to *version.Version
	if len(args) == 3 {
		v, err := version.Parse(args[2])
		if err != nil {
			return errors.NewExitError(errors.ExitConfigError, err)
		}
		to = &v
	}

	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}
	reg, _, err := newRegistryFunc(cfg)
	if err != nil {
		return err
	}

	list, err := releases.NewBuilder(reg, changelog.NewMarkdownParser()).Build(commandContext(cmd), pkg, from, to)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if output.IsStructuredFormat(format) {
		return output.WriteReleases(out, format, list)
	}
	if len(list) == 0 {
		display.PrintNoReleasesMessage(out, pkg, from.Original())
		return nil
	}
	return display.RenderReleases(out, list)
}
