package cli

import (
	"fmt"

	"github.com/patchdesk/patchdesk/internal/userdata"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the data directory",
	Long: `Create ~/.patchdesk/ with the settings storage directory, an initial
settings file, the shared op tree and the asset library. Existing items are
left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := userdata.GetRoot()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Initializing %s\n", root)
		if err := userdata.InitGlobal(out, log); err != nil {
			return fmt.Errorf("initializing data directory: %w", err)
		}
		fmt.Fprintln(out, "\nData directory initialized successfully.")
		return nil
	},
}
