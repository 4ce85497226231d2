package cli

import (
	"errors"
	"fmt"

	"github.com/patchdesk/patchdesk/internal/buildinfo"
	"github.com/patchdesk/patchdesk/internal/userdata"
	"github.com/spf13/cobra"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair what can be repaired")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the data directory",
	Long: `Check the storage directory and its permissions, that the settings file
parses, that recent projects still exist, and which editor bundles are found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		rep, err := userdata.CheckUserdata(out, doctorFix, log)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "\nEditor bundles:")
		paths := buildinfo.PathsFromConfig()
		info := buildinfo.Read(paths, log)
		for _, part := range []struct {
			name string
			file string
			info map[string]any
		}{
			{"core", paths.CoreFile(), info.Core},
			{"ui", paths.UIFile(), info.UI},
			{"api", paths.APIFile(), info.API},
		} {
			if v := buildinfo.Version(part.info); v != "" {
				fmt.Fprintf(out, "  [ OK ] %s %s\n", part.name, v)
			} else if part.file == "" {
				fmt.Fprintf(out, "  [SKIP] %s: no dist directory configured\n", part.name)
			} else {
				fmt.Fprintf(out, "  [MISS] %s: no version in %s\n", part.name, part.file)
			}
		}

		if !doctorFix && !rep.Healthy() {
			return errors.New("problems found, run with --fix to repair")
		}
		return nil
	},
}
