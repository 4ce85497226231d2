package api

import "context"

// Dialog kinds passed to SaveProjectFile.
const (
	DialogSave   = "save"
	DialogExport = "export"
)

// Dialogs are the host's file pickers. An empty path with a nil error means
// the user cancelled.
type Dialogs interface {
	SaveProjectFile(ctx context.Context, kind string) (string, error)
	PickProjectFile(ctx context.Context) (string, error)
	PickOpDir(ctx context.Context) (string, error)
}

// StaticDialogs answers every dialog with a preset path. It serves
// non-interactive hosts such as the CLI, where the paths come from flags.
type StaticDialogs struct {
	SaveFile    string
	ExportFile  string
	ProjectFile string
	OpDir       string
}

func (d StaticDialogs) SaveProjectFile(_ context.Context, kind string) (string, error) {
	if kind == DialogExport {
		return d.ExportFile, nil
	}
	return d.SaveFile, nil
}

func (d StaticDialogs) PickProjectFile(context.Context) (string, error) {
	return d.ProjectFile, nil
}

func (d StaticDialogs) PickOpDir(context.Context) (string, error) {
	return d.OpDir, nil
}
