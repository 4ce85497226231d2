package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patchdesk/patchdesk/internal/buildinfo"
	"github.com/patchdesk/patchdesk/internal/logging"
	"github.com/patchdesk/patchdesk/internal/project"
	"github.com/patchdesk/patchdesk/internal/recent"
	"github.com/patchdesk/patchdesk/internal/settings"
	"go.uber.org/zap"
)

var (
	// ErrNoProjectChosen is returned when the user declined to pick a file.
	ErrNoProjectChosen = errors.New("no project chosen")
	// ErrUnknownProject is returned when an operation needs an active
	// project and there is none.
	ErrUnknownProject = errors.New("unknown project")
)

// Options configures a Manager. Zero values are usable.
type Options struct {
	Log *zap.Logger
	// Now is the clock used for timestamps.
	Now func() time.Time
	// BuildInfo returns the build info stamped into saved projects.
	BuildInfo func() buildinfo.Info
}

// Manager holds the active project.
type Manager struct {
	store     *settings.Store
	recent    *recent.Cache
	log       *zap.Logger
	now       func() time.Time
	buildInfo func() buildinfo.Info

	current *project.Project
}

// New returns a Manager with no active project.
func New(store *settings.Store, cache *recent.Cache, opts Options) *Manager {
	m := &Manager{
		store:     store,
		recent:    cache,
		log:       logging.OrNop(opts.Log).Named("session"),
		now:       opts.Now,
		buildInfo: opts.BuildInfo,
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Settings returns the settings store.
func (m *Manager) Settings() *settings.Store { return m.store }

// Recent returns the recent-projects cache.
func (m *Manager) Recent() *recent.Cache { return m.recent }

// Project returns the active project, or nil.
func (m *Manager) Project() *project.Project { return m.current }

// ProjectFile returns the file backing the active project, or "".
func (m *Manager) ProjectFile() string {
	return m.store.GetString(settings.KeyProjectFile)
}

// ProjectDir returns the directory of the active project file, or "".
func (m *Manager) ProjectDir() string {
	return m.store.GetString(settings.KeyCurrentProjectDir)
}

// Restore loads the project file recorded in the settings, if any.
func (m *Manager) Restore() *project.Project {
	file := m.ProjectFile()
	if file == "" {
		return nil
	}
	return m.LoadProject(file, nil)
}

// LoadProject makes the project stored in file the active one and returns
// it. A file that is missing or fails to parse is logged and nil is
// returned; the active project is left as it was.
//
// With an empty file the active project pointer is cleared and template, which
// may be nil, becomes an in-memory-only active project.
func (m *Manager) LoadProject(file string, template *project.Project) *project.Project {
	if file == "" {
		m.setPointer("", "")
		m.setCurrent("", template)
		return template
	}

	p, err := project.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.log.Debug("project file does not exist", zap.String("file", file))
		} else {
			m.log.Error("failed to parse project from projectfile", zap.String("file", file), zap.Error(err))
		}
		return nil
	}

	m.setPointer(file, filepath.Dir(file))
	m.setCurrent(file, p)
	if err := m.recent.Add(file, p); err != nil {
		m.log.Warn("updating recent projects", zap.Error(err))
	}
	return p
}

func (m *Manager) setPointer(file, dir string) {
	var fileVal, dirVal any
	if file != "" {
		fileVal = file
	}
	if dir != "" {
		dirVal = dir
	}
	if err := m.store.Set(settings.KeyProjectFile, fileVal, false); err != nil {
		m.log.Warn("saving active project file", zap.Error(err))
	}
	if err := m.store.Set(settings.KeyCurrentProjectDir, dirVal, false); err != nil {
		m.log.Warn("saving active project dir", zap.Error(err))
	}
}

// setCurrent installs p as the active project. When p came from file and its
// name no longer matches the file name, the name is corrected on disk.
func (m *Manager) setCurrent(file string, p *project.Project) {
	m.current = p
	if p == nil {
		return
	}
	if err := m.store.Set(settings.KeyPatchID, p.ID, false); err != nil {
		m.log.Warn("saving active project id", zap.Error(err))
	}
	if file == "" {
		return
	}
	if name := project.NameFromFile(file); p.Name != name {
		p.SetName(name)
		if err := project.WriteFile(file, p, nil); err != nil {
			m.log.Warn("writing corrected project name", zap.String("file", file), zap.Error(err))
		}
	}
}

// WriteProjectToFile overwrites file with p, after applying payload if one
// is given. Writing the active project to a project file first brings its
// name in line with the file's base name.
func (m *Manager) WriteProjectToFile(file string, p *project.Project, payload *project.Payload) error {
	if p == nil {
		return ErrUnknownProject
	}
	if p == m.current && project.IsProjectFile(file) {
		if name := project.NameFromFile(file); p.Name != name || p.Summary == nil || p.Summary.Title != name {
			p.SetName(name)
		}
	}
	if err := project.WriteFile(file, p, payload); err != nil {
		return err
	}
	m.log.Debug("project written", zap.String("file", file))
	return nil
}

// CreateBackup returns an independent copy of the active project.
func (m *Manager) CreateBackup() (*project.Project, error) {
	if m.current == nil {
		return nil, ErrUnknownProject
	}
	return project.Backup(m.current)
}

// WriteBackup exports a backup of the active project to file.
func (m *Manager) WriteBackup(file string) error {
	if file == "" {
		return ErrNoProjectChosen
	}
	backup, err := m.CreateBackup()
	if err != nil {
		return err
	}
	if err := project.WriteFile(file, backup, nil); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// GenerateNewProject returns a new project owned by the current user. It
// does not become active.
func (m *Manager) GenerateNewProject() *project.Project {
	return project.Generate(m.CurrentUser(), m.now())
}

// CurrentUser returns the local user, generating and storing it on first use.
func (m *Manager) CurrentUser() project.User {
	var u project.User
	if err := m.store.Decode(settings.KeyCurrentUser, &u); err != nil {
		m.log.Warn("stored user is malformed, generating a new one", zap.Error(err))
		u = project.User{}
	}
	if u.ID != "" {
		return u
	}
	u = project.NewLocalUser(m.now())
	if err := m.store.Set(settings.KeyCurrentUser, u, true); err != nil {
		m.log.Warn("storing current user", zap.Error(err))
	}
	return u
}
