package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/patchdesk/patchdesk/internal/api"
	"github.com/spf13/cobra"
)

var recentJSON bool

func init() {
	recentListCmd.Flags().BoolVar(&recentJSON, "json", false, "Output in JSON format")
	recentCmd.AddCommand(recentListCmd)
	rootCmd.AddCommand(recentCmd)
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Recently opened projects",
}

var recentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent projects, most recently updated first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		data, err := callAPI(cmd, a, api.CmdGetRecentPatches, nil)
		if err != nil {
			return err
		}
		patches, _ := data.([]api.RecentPatch)
		if recentJSON {
			return printJSON(cmd, patches)
		}
		if len(patches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recent projects.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "SHORT ID\tNAME\tUPDATED\tPATH")
		for _, p := range patches {
			updated := "-"
			if p.Updated != 0 {
				updated = time.UnixMilli(p.Updated).Format(time.DateTime)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ShortID, p.Name, updated, p.Path)
		}
		return w.Flush()
	},
}
