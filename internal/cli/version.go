package cli

import (
	"fmt"

	"github.com/patchdesk/patchdesk/internal/branding"
	"github.com/patchdesk/patchdesk/internal/buildinfo"
	"github.com/spf13/cobra"
)

var (
	versionShort bool
	versionJSON  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info, including the editor bundles, as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, buildVersion)
			return nil
		}

		if versionJSON {
			return printJSON(cmd, map[string]any{
				"version": buildVersion,
				"commit":  buildCommit,
				"date":    buildDate,
				"bundles": buildinfo.Read(buildinfo.PathsFromConfig(), log),
			})
		}

		fmt.Fprintf(out, "%s version %s (commit: %s, built: %s)\n", branding.CLIName(), buildVersion, buildCommit, buildDate)
		return nil
	},
}
