package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajxudir/updatecheck/pkg/changelog"
	"github.com/ajxudir/updatecheck/pkg/display"
	"github.com/ajxudir/updatecheck/pkg/errors"
	"github.com/ajxudir/updatecheck/pkg/output"
	"github.com/ajxudir/updatecheck/pkg/releases"
	"github.com/ajxudir/updatecheck/pkg/version"
)

// lowestVersion orders before every parseable version.
const lowestVersion = "0.0.0-dev"

var (
	changelogSinceFlag  string
	changelogFormatFlag string
)

var changelogCmd = &cobra.Command{
	Use:   "changelog FILE",
	Short: "Parse a Markdown changelog",
	Long: `Parse a Markdown changelog into releases, newest first.

Release sections start with a level-two heading such as:

  ## 3.1.34 - 2019-02-26 [CRITICAL]

Only releases newer than --since are listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runChangelog,
}

func init() {
	changelogCmd.Flags().StringVar(&changelogSinceFlag, "since", "", "List only releases newer than this version")
	changelogCmd.Flags().StringVarP(&changelogFormatFlag, "format", "f", "table", "Output format: table, json, yaml")
}

// runChangelog executes the changelog command.
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Path of the changelog file
//
// Returns:
//   - error: ExitError for usage errors or an unreadable file
func runChangelog(cmd *cobra.Command, args []string) error {
	format, err := parseFormatFlag(changelogFormatFlag)
	if err != nil {
		return err
	}

	since := changelogSinceFlag
	if since == "" {
		since = lowestVersion
	}
	lower, err := version.Parse(since)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}

	data, err := readFileFunc(args[0])
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("failed to read changelog: %w", err))
	}

	entries, err := changelog.NewMarkdownParser().Parse(string(data), lower)
	if err != nil {
		return err
	}
	list := entriesToReleases(entries)

	out := cmd.OutOrStdout()
	if output.IsStructuredFormat(format) {
		return output.WriteReleases(out, format, list)
	}
	return display.RenderReleases(out, list)
}

// entriesToReleases orders parsed entries newest first. Every release
// carries its entry as metadata.
func entriesToReleases(entries map[string]changelog.Entry) []releases.Release {
	versions := make([]version.Version, 0, len(entries))
	byKey := make(map[string]changelog.Entry, len(entries))
	for _, entry := range entries {
		v, err := version.Parse(entry.Version)
		if err != nil {
			continue
		}
		versions = append(versions, v)
		byKey[v.Normalized()] = entry
	}
	version.Sort(versions, true)

	list := make([]releases.Release, 0, len(versions))
	for _, v := range versions {
		entry := byKey[v.Normalized()]
		list = append(list, releases.Release{
			Version: entry.Version,
			Key:     v.Normalized(),
			Metadata: &releases.Metadata{
				Critical: entry.Critical,
				Date:     entry.Date,
				Notes:    entry.Notes,
			},
		})
	}
	return list
}
