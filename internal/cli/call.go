package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/patchdesk/patchdesk/internal/api"
	"github.com/spf13/cobra"
)

// dialogFlags answer the registry's file dialogs from the command line.
type dialogFlags struct {
	saveFile    string
	exportFile  string
	projectFile string
	opDir       string
}

func (f *dialogFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.saveFile, "save-file", "", "Answer to the save dialog")
	cmd.Flags().StringVar(&f.exportFile, "export-file", "", "Answer to the export dialog")
	cmd.Flags().StringVar(&f.projectFile, "project-file", "", "Answer to the open project dialog")
	cmd.Flags().StringVar(&f.opDir, "op-dir", "", "Answer to the op directory dialog")
}

func (f *dialogFlags) dialogs() api.StaticDialogs {
	return api.StaticDialogs{
		SaveFile:    f.saveFile,
		ExportFile:  f.exportFile,
		ProjectFile: f.projectFile,
		OpDir:       f.opDir,
	}
}

var callDialogs dialogFlags

func init() {
	callDialogs.register(callCmd)
	rootCmd.AddCommand(callCmd)
}

var callCmd = &cobra.Command{
	Use:   "call <command> [json]",
	Short: "Run a registry command and print its result",
	Long: `Run one command of the registry the editor host talks to, with an optional
JSON payload, and print the {success,data} or {error,msg,data} result.

File dialogs are answered by the --save-file, --export-file, --project-file and
--op-dir flags; an unanswered dialog counts as cancelled.`,
	Args: cobra.RangeArgs(1, 2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var names []string
		for _, name := range api.AllCommands() {
			if strings.HasPrefix(string(name), toComplete) {
				names = append(names, string(name))
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload json.RawMessage
		if len(args) == 2 {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("payload is not valid JSON")
			}
			payload = json.RawMessage(args[1])
		}

		a, err := openApp(callDialogs.dialogs())
		if err != nil {
			return err
		}
		res := a.api.Call(cmd.Context(), args[0], payload)
		if err := printJSON(cmd, res); err != nil {
			return err
		}
		if res.Error {
			return fmt.Errorf("%s failed: %s", args[0], res.Msg)
		}
		return nil
	},
}

// callAPI runs a registry command and turns an error result into an error.
func callAPI(cmd *cobra.Command, a *app, name api.CommandName, payload any) (any, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", name, err)
		}
		raw = data
	}
	res := a.api.Call(cmd.Context(), string(name), raw)
	if res.Error {
		if res.Data != nil {
			return nil, fmt.Errorf("%s: %s (%v)", name, res.Msg, res.Data)
		}
		return nil, fmt.Errorf("%s: %s", name, res.Msg)
	}
	return res.Data, nil
}
