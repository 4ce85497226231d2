package cli

import (
	"fmt"

	"github.com/patchdesk/patchdesk/internal/api"
	"github.com/patchdesk/patchdesk/internal/branding"
	"github.com/patchdesk/patchdesk/internal/buildinfo"
	"github.com/patchdesk/patchdesk/internal/collect"
	"github.com/patchdesk/patchdesk/internal/recent"
	"github.com/patchdesk/patchdesk/internal/session"
	"github.com/patchdesk/patchdesk/internal/settings"
	"github.com/patchdesk/patchdesk/internal/userdata"
)

// app is the state one command works on: the settings store, the session
// restored from it and the command registry on top.
type app struct {
	store   *settings.Store
	session *session.Manager
	api     *api.API
}

// openApp opens the settings store and restores the last active project.
// dialogs answers the registry's file pickers; nil cancels every dialog.
func openApp(dialogs api.Dialogs) (*app, error) {
	storageDir, err := userdata.GetStorageDir()
	if err != nil {
		return nil, err
	}
	store, err := settings.Open(storageDir, branding.SettingsName(), log)
	if err != nil {
		return nil, fmt.Errorf("opening settings: %w", err)
	}

	paths := buildinfo.PathsFromConfig()
	s := session.New(store, recent.New(store, log), session.Options{
		Log:       log,
		BuildInfo: func() buildinfo.Info { return buildinfo.Read(paths, log) },
	})
	s.Restore()

	opsRoot, err := userdata.GetOpsRoot()
	if err != nil {
		return nil, err
	}
	a, err := api.New(api.Deps{
		Session:       s,
		Dialogs:       dialogs,
		Collector:     collect.New(log),
		SharedOpsPath: opsRoot,
		BuildPaths:    paths,
		Log:           log,
	})
	if err != nil {
		return nil, err
	}
	return &app{store: store, session: s, api: a}, nil
}

// requireProject returns an error when no project is active.
func (a *app) requireProject() error {
	if a.session.Project() == nil {
		return fmt.Errorf("no active project, run '%s project open <file>' first", branding.CLIName())
	}
	return nil
}
