package cli

import (
	"fmt"
	"sort"

	"github.com/patchdesk/patchdesk/internal/api"
	"github.com/spf13/cobra"
)

func init() {
	collectCmd.AddCommand(collectAssetsCmd, collectOpsCmd)
	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Copy what the active project depends on into its directory",
}

var collectAssetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Copy external assets into the project's assets directory",
	Long: `Copy every asset the active project references from outside its directory into
<projectDir>/assets/ and point the references at the copies.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollect(cmd, api.CmdCollectAssets, "assets")
	},
}

var collectOpsCmd = &cobra.Command{
	Use:   "ops",
	Short: "Copy non-core ops the project uses into its op directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCollect(cmd, api.CmdCollectOps, "ops")
	},
}

func runCollect(cmd *cobra.Command, name api.CommandName, what string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	if err := a.requireProject(); err != nil {
		return err
	}
	data, err := callAPI(cmd, a, name, nil)
	if err != nil {
		return err
	}
	moved, _ := data.(map[string]string)
	out := cmd.OutOrStdout()
	if len(moved) == 0 {
		fmt.Fprintf(out, "No %s to collect.\n", what)
		return nil
	}
	keys := make([]string, 0, len(moved))
	for k := range moved {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  [ OK ] %s -> %s\n", k, moved[k])
	}
	fmt.Fprintf(out, "Collected %d %s.\n", len(moved), what)
	return nil
}
