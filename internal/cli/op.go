package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/patchdesk/patchdesk/internal/api"
	"github.com/patchdesk/patchdesk/internal/oplib"
	"github.com/spf13/cobra"
)

var (
	checkSource     string
	checkTargetDir  string
	checkVersionGap bool
	checkRename     bool
	checkJSON       bool
	opListJSON      bool
	opDirDialogs    dialogFlags
)

func init() {
	opCheckNameCmd.Flags().StringVar(&checkSource, "source", "", "Op being renamed or cloned")
	opCheckNameCmd.Flags().StringVar(&checkTargetDir, "target-dir", "", "Op directory the op would be written to")
	opCheckNameCmd.Flags().BoolVar(&checkVersionGap, "version-gap", false, "Also report gaps in version numbers")
	opCheckNameCmd.Flags().BoolVar(&checkRename, "rename", false, "The check is for an in-place rename")
	opCheckNameCmd.Flags().BoolVar(&checkJSON, "json", false, "Output in JSON format")
	opListCmd.Flags().BoolVar(&opListJSON, "json", false, "Output in JSON format")
	opAddDirCmd.Flags().StringVar(&opDirDialogs.opDir, "dir", "", "Op directory to add")
	opCmd.AddCommand(opCheckNameCmd, opListCmd, opDirsCmd, opAddDirCmd)
	rootCmd.AddCommand(opCmd)
}

var opCmd = &cobra.Command{
	Use:   "op",
	Short: "Inspect the op library",
}

var opCheckNameCmd = &cobra.Command{
	Use:   "check-name <name>",
	Short: "Check whether an op can be created or renamed to name",
	Long: `Check a proposed op name against the naming rules and the ops visible to the
active project (its op directories and the shared op tree). Problems block the
name; hints and consequences are informational.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		name := args[0]
		ignoreGap := !checkVersionGap
		data, err := callAPI(cmd, a, api.CmdCheckOpName, api.CheckOpNameRequest{
			Namespace:        oplib.Namespace(name),
			V:                oplib.ShortName(name),
			SourceName:       checkSource,
			OpTargetDir:      checkTargetDir,
			IgnoreVersionGap: &ignoreGap,
			FromRename:       checkRename,
		})
		if err != nil {
			return err
		}
		res := data.(api.CheckOpNameResponse)
		if checkJSON {
			return printJSON(cmd, res)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s\n", res.CheckedName, res.Action)
		for _, p := range res.Problems {
			fmt.Fprintf(out, "  [FAIL] %s\n", p)
		}
		for _, h := range res.Hints {
			fmt.Fprintf(out, "  [HINT] %s\n", h)
		}
		for _, c := range res.Consequences {
			fmt.Fprintf(out, "  [NOTE] %s\n", c)
		}
		if !res.Ok() {
			return fmt.Errorf("%s cannot be used", res.CheckedName)
		}
		fmt.Fprintln(out, "  [ OK ] name can be used")
		return nil
	},
}

var opListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the ops visible to the active project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		docs := a.api.Registry().Docs()
		if opListJSON {
			return printJSON(cmd, docs)
		}
		if len(docs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No ops found.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tVERSION\tSOURCE\tDIR")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", d.Name, oplib.KindOf(d.Name), oplib.Version(d.Name), d.Source, d.Dir)
		}
		return w.Flush()
	},
}

var opDirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "List where new ops of the active project may be written",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		data, err := callAPI(cmd, a, api.CmdGetOpTargetDirs, nil)
		if err != nil {
			return err
		}
		for _, d := range data.([]api.OpTargetDir) {
			fmt.Fprintln(cmd.OutOrStdout(), d.Dir)
		}
		return nil
	},
}

var opAddDirCmd = &cobra.Command{
	Use:   "add-dir --dir <dir>",
	Short: "Add an op directory to the active project for this session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(opDirDialogs.dialogs())
		if err != nil {
			return err
		}
		data, err := callAPI(cmd, a, api.CmdAddProjectOpDir, nil)
		if err != nil {
			return err
		}
		for _, d := range data.([]string) {
			fmt.Fprintln(cmd.OutOrStdout(), d)
		}
		return nil
	},
}
