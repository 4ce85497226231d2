package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/patchdesk/patchdesk/internal/project"
	"go.uber.org/zap"
)

// SaveResult reports a completed SavePatch.
type SaveResult struct {
	Msg           string `json:"msg"`
	Updated       int64  `json:"updated"`
	UpdatedByUser string `json:"updatedByUser"`
}

// active returns the active project and its file, failing when either is
// missing.
func (m *Manager) active() (*project.Project, string, error) {
	if m.current == nil {
		return nil, "", ErrUnknownProject
	}
	file := m.ProjectFile()
	if file == "" {
		return nil, "", ErrNoProjectChosen
	}
	return m.current, file, nil
}

// SavePatch stamps the active project, writes it with the editor's payload
// and reloads it from disk.
func (m *Manager) SavePatch(payload *project.Payload) (*SaveResult, error) {
	p, file, err := m.active()
	if err != nil {
		return nil, err
	}

	p.Updated = m.now().UnixMilli()
	p.UpdatedByUser = m.CurrentUser().Username
	if m.buildInfo != nil {
		stamp, err := m.buildInfo().Stamp()
		if err != nil {
			return nil, err
		}
		p.BuildInfo = stamp
	}
	if err := m.WriteProjectToFile(file, p, payload); err != nil {
		return nil, err
	}
	if m.LoadProject(file, nil) == nil {
		return nil, fmt.Errorf("reloading %s after save failed", file)
	}
	return &SaveResult{Msg: "PROJECT_SAVED", Updated: p.Updated, UpdatedByUser: p.UpdatedByUser}, nil
}

// SaveProjectAs writes the active project to file as a new project of the
// current user and makes it active.
func (m *Manager) SaveProjectAs(file string) (*project.Project, error) {
	if file == "" {
		return nil, ErrNoProjectChosen
	}
	p := m.current
	if p == nil {
		return nil, ErrUnknownProject
	}

	user := m.CurrentUser()
	now := m.now().UnixMilli()
	p.CloneOf = p.ID
	p.ID = uuid.NewString()
	p.ShortID = project.ShortID(p.ID, now)
	p.SetName(project.NameFromFile(file))
	p.UserID = user.ID
	p.CachedUsername = user.Username
	p.Created = now
	p.Updated = now
	p.Users = json.RawMessage("[]")
	p.UsersReadOnly = json.RawMessage("[]")
	p.Visibility = project.VisibilityPrivate

	if err := m.WriteProjectToFile(file, p, nil); err != nil {
		return nil, err
	}
	loaded := m.LoadProject(file, nil)
	if loaded == nil {
		return nil, fmt.Errorf("loading %s after save failed", file)
	}
	return loaded, nil
}

// SetProjectName renames the active project and its file. The file keeps its
// directory; the recent-projects entry follows the rename.
func (m *Manager) SetProjectName(name string) (string, error) {
	p, oldFile, err := m.active()
	if err != nil {
		return "", err
	}
	newFile := filepath.Join(filepath.Dir(oldFile), project.FileName(name))
	if newFile != oldFile {
		if _, err := os.Stat(newFile); err == nil {
			return "", fmt.Errorf("renaming project: %s already exists", newFile)
		}
		if err := os.Rename(oldFile, newFile); err != nil {
			return "", fmt.Errorf("renaming project file: %w", err)
		}
	}

	p.SetName(project.NameFromFile(newFile))
	if err := m.WriteProjectToFile(newFile, p, nil); err != nil {
		return "", err
	}
	if err := m.recent.Replace(oldFile, newFile, p); err != nil {
		m.log.Warn("updating recent projects after rename", zap.Error(err))
	}
	if m.LoadProject(newFile, nil) == nil {
		return "", fmt.Errorf("loading %s after rename failed", newFile)
	}
	return p.Name, nil
}

// SetProjectUpdated bumps the updated stamp of the active project and writes
// it when it has a file.
func (m *Manager) SetProjectUpdated() (*project.Project, error) {
	p := m.current
	if p == nil {
		return nil, ErrUnknownProject
	}
	p.Updated = m.now().UnixMilli()
	if file := m.ProjectFile(); file != "" {
		if err := m.WriteProjectToFile(file, p, nil); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// SaveScreenshot records ref as the screenshot of the active project.
func (m *Manager) SaveScreenshot(ref string) error {
	p := m.current
	if p == nil || ref == "" {
		return ErrUnknownProject
	}
	p.Screenshot = ref
	if file := m.ProjectFile(); file != "" {
		return m.WriteProjectToFile(file, p, nil)
	}
	return nil
}

// AddProjectOpDir puts dir at the front of the active project's op
// directories and returns them.
func (m *Manager) AddProjectOpDir(dir string) ([]string, error) {
	if m.current == nil {
		return nil, ErrUnknownProject
	}
	if dir == "" {
		return nil, ErrNoProjectChosen
	}
	m.current.AddOpDir(dir)
	return m.current.OpDirs(), nil
}

// OpTargetDirs lists where new ops of the active project may be written: the
// project-local op tree first, then the project's op directories. Relative
// directories are resolved against the project directory.
func (m *Manager) OpTargetDirs() []string {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if dir == "" || seen[dir] {
			return
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}

	projectDir := m.ProjectDir()
	if projectDir != "" {
		add(project.OpsDir(projectDir))
	}
	if m.current != nil {
		for _, dir := range m.current.OpDirs() {
			if !filepath.IsAbs(dir) && projectDir != "" {
				dir = filepath.Join(projectDir, dir)
			}
			add(filepath.Clean(dir))
		}
	}
	return dirs
}

// GetPatch returns the active project prepared for the editor. When the
// project has a file, the file is the source: missing collaborator fields
// are filled in. Without any active project a new one is generated and
// made active.
func (m *Manager) GetPatch() (*project.Project, error) {
	var p *project.Project
	if file := m.ProjectFile(); file != "" {
		fromFile, err := project.ReadFile(file)
		if err != nil {
			m.log.Warn("reading project for editor, using memory copy", zap.String("file", file), zap.Error(err))
		} else {
			p = fromFile
			if len(p.UserList) == 0 {
				list, err := json.Marshal([]project.User{m.CurrentUser()})
				if err != nil {
					return nil, fmt.Errorf("encoding user list: %w", err)
				}
				p.UserList = list
			}
			if len(p.Teams) == 0 {
				p.Teams = json.RawMessage("[]")
			}
		}
	}
	if p == nil {
		p = m.current
	}
	if p == nil {
		p = m.LoadProject("", m.GenerateNewProject())
	}

	if p.Extra == nil {
		p.Extra = make(map[string]json.RawMessage)
	}
	p.Extra["allowEdit"] = json.RawMessage("true")
	p.SetName(p.Name)
	p.Summary.AllowEdit = true
	return p, nil
}
