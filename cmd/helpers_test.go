package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajxudir/updatecheck/pkg/testutil"
	"github.com/ajxudir/updatecheck/pkg/verbose"
)

// fixtureConfig points the file registry and the licenses at the sample fixtures.
const fixtureConfig = `registry:
  source: file
  path: registry.yml
licenses: licenses.yml
`

// writeFixtureDir writes the sample registry, licenses and a local config
// into a temporary directory and returns it.
func writeFixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteSampleFixtures(t, dir)
	testutil.WriteFile(t, dir, ".updatecheck.yml", fixtureConfig)
	return dir
}

// resetFlags restores every flag of the command tree to its default and
// gives every command a fresh context. Cobra keeps both between executions
// of the same command.
func resetFlags() {
	commands := append([]*cobra.Command{rootCmd}, rootCmd.Commands()...)
	for _, c := range commands {
		c.SetContext(context.Background())
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				if sv, ok := f.Value.(pflag.SliceValue); ok {
					_ = sv.Replace(nil)
				} else {
					_ = f.Value.Set(f.DefValue)
				}
				f.Changed = false
			})
		}
	}
}

// runCLI executes the root command with args and returns what it wrote to
// its output stream.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(func() {
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		verbose.Disable()
	})

	// cobra falls back to os.Args when args is nil
	if args == nil {
		args = []string{}
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := ExecuteTest()
	return out.String(), err
}
