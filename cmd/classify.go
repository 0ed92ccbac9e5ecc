package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ajxudir/updatecheck/pkg/display"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/output"
	"github.com/ajxudir/updatecheck/pkg/version"
)

var (
	classifyPackageFlag string
	classifyFormatFlag  string
)

var classifyCmd = &cobra.Command{
	Use:   "classify VERSION",
	Short: "Show whether a version falls in a breakpoint range",
	Long: `Classify an installed version against the breakpoint rules of a package.

A version inside a breakpoint range must update to the breakpoint target
before newer releases become available. The core package is classified
when --package is not given.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyPackageFlag, "package", "", "Package identifier (default: the core package)")
	classifyCmd.Flags().StringVarP(&classifyFormatFlag, "format", "f", "table", "Output format: table, json, yaml")
}

// runClassify executes the classify command. It reads only the
// configuration; no registry is contacted.
func runClassify(cmd *cobra.Command, args []string) error {
	format, err := parseFormatFlag(classifyFormatFlag)
	if err != nil {
		return err
	}
	v, err := version.Parse(args[0])
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}

	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}
	set, err := cfg.BreakpointSet()
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}

	pkg := classifyPackageFlag
	if pkg == "" {
		pkg = cfg.GetCorePackage()
	}

	rule, matched := set.Classify(pkg, v)

	out := cmd.OutOrStdout()
	if output.IsStructuredFormat(format) {
		return output.WriteDocument(out, format, output.EncodeClassification(pkg, v, rule, matched))
	}
	return display.RenderClassification(out, pkg, v, rule, matched)
}
