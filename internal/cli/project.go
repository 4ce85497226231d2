package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/patchdesk/patchdesk/internal/api"
	"github.com/patchdesk/patchdesk/internal/project"
	"github.com/spf13/cobra"
)

var projectShowJSON bool

func init() {
	projectShowCmd.Flags().BoolVar(&projectShowJSON, "json", false, "Print the project as the editor receives it")
	projectCmd.AddCommand(projectNewCmd, projectOpenCmd, projectShowCmd, projectSaveAsCmd,
		projectRenameCmd, projectBackupCmd, projectValidateCmd, projectTouchCmd)
	rootCmd.AddCommand(projectCmd)
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create, open and manage project files",
}

// absProjectFile resolves a project file argument and checks its extension.
func absProjectFile(arg string) (string, error) {
	file, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", arg, err)
	}
	if !project.IsProjectFile(file) {
		return "", fmt.Errorf("%s is not a .%s file", arg, project.Extension())
	}
	return file, nil
}

var projectNewCmd = &cobra.Command{
	Use:   "new <file>",
	Short: "Create a project file and make it the active project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := absProjectFile(args[0])
		if err != nil {
			return err
		}
		if _, err := os.Stat(file); err == nil {
			return fmt.Errorf("%s already exists", file)
		}
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return fmt.Errorf("creating project directory: %w", err)
		}
		p := a.session.LoadProject("", a.session.GenerateNewProject())
		if err := a.session.WriteProjectToFile(file, p, nil); err != nil {
			return err
		}
		if a.session.LoadProject(file, nil) == nil {
			return fmt.Errorf("loading %s failed", file)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", file)
		return nil
	},
}

var projectOpenCmd = &cobra.Command{
	Use:   "open <file|id>",
	Short: "Make a project file, or a recent project by id or short id, the active project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		file := a.session.Recent().ProjectFile(args[0])
		if file == "" {
			if file, err = absProjectFile(args[0]); err != nil {
				return err
			}
		}
		p := a.session.LoadProject(file, nil)
		if p == nil {
			return fmt.Errorf("could not open %s", file)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opened %s (%s)\n", p.Name, file)
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		if err := a.requireProject(); err != nil {
			return err
		}
		if projectShowJSON {
			data, err := callAPI(cmd, a, api.CmdGetPatch, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, data)
		}

		p := a.session.Project()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Name:\t%s\n", p.Name)
		fmt.Fprintf(w, "File:\t%s\n", a.session.ProjectFile())
		fmt.Fprintf(w, "ID:\t%s\n", p.ID)
		fmt.Fprintf(w, "Short ID:\t%s\n", p.ShortID)
		fmt.Fprintf(w, "Owner:\t%s\n", p.CachedUsername)
		fmt.Fprintf(w, "Ops:\t%d\n", len(p.Ops))
		for i, dir := range a.session.OpTargetDirs() {
			label := ""
			if i == 0 {
				label = "Op dirs:"
			}
			fmt.Fprintf(w, "%s\t%s\n", label, dir)
		}
		return w.Flush()
	},
}

var projectSaveAsCmd = &cobra.Command{
	Use:   "save-as <file>",
	Short: "Save the active project as a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := absProjectFile(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(api.StaticDialogs{SaveFile: file})
		if err != nil {
			return err
		}
		if err := a.requireProject(); err != nil {
			return err
		}
		if _, err := callAPI(cmd, a, api.CmdSaveProjectAs, nil); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s as %s\n", a.session.Project().Name, file)
		return nil
	},
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Rename the active project and its file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		if err := a.requireProject(); err != nil {
			return err
		}
		data, err := callAPI(cmd, a, api.CmdSetProjectName, map[string]string{"name": args[0]})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %v (%s)\n", data.(map[string]string)["name"], a.session.ProjectFile())
		return nil
	},
}

var projectBackupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Export a backup copy of the active project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(api.StaticDialogs{ExportFile: file})
		if err != nil {
			return err
		}
		if err := a.requireProject(); err != nil {
			return err
		}
		if _, err := callAPI(cmd, a, api.CmdPatchCreateBackup, nil); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", file)
		return nil
	},
}

var projectTouchCmd = &cobra.Command{
	Use:   "touch",
	Short: "Mark the active project as updated now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		if err := a.requireProject(); err != nil {
			return err
		}
		if _, err := callAPI(cmd, a, api.CmdSetProjectUpdated, nil); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", a.session.Project().Name)
		return nil
	},
}

var projectValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a project file against the project schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading project file: %w", err)
		}
		issues, err := project.Validate(data)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(issues) == 0 {
			fmt.Fprintf(out, "  [ OK ] %s\n", args[0])
			return nil
		}
		for _, issue := range issues {
			fmt.Fprintf(out, "  [FAIL] %s\n", issue)
		}
		return fmt.Errorf("%s has %d schema issue(s)", args[0], len(issues))
	},
}
