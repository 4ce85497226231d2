package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/patchdesk/patchdesk/internal/config"
	"github.com/patchdesk/patchdesk/internal/logging"
	"go.uber.org/zap"
)

const fileName = "buildinfo.json"

// Paths are the dist directories of the bundles.
type Paths struct {
	Core       string
	UI         string
	Standalone string
}

// PathsFromConfig reads the dist directories from the process config.
func PathsFromConfig() Paths {
	return Paths{
		Core:       config.Get(config.KeyDistCore),
		UI:         config.Get(config.KeyDistUI),
		Standalone: config.Get(config.KeyDistStandalone),
	}
}

// CoreFile returns the core build info file. The core bundle ships inside the
// ui dist under js/ unless a separate core dist is configured.
func (p Paths) CoreFile() string {
	switch {
	case p.Core != "":
		return filepath.Join(p.Core, fileName)
	case p.UI != "":
		return filepath.Join(p.UI, "js", fileName)
	}
	return ""
}

// UIFile returns the ui build info file.
func (p Paths) UIFile() string {
	if p.UI == "" {
		return ""
	}
	return filepath.Join(p.UI, fileName)
}

// APIFile returns the standalone api build info file.
func (p Paths) APIFile() string {
	if p.Standalone == "" {
		return ""
	}
	return filepath.Join(p.Standalone, "public", "js", fileName)
}

// Info is the build information of the running bundles. Unreadable parts
// are empty objects.
type Info struct {
	UpdateWarning bool           `json:"updateWarning"`
	Core          map[string]any `json:"core"`
	UI            map[string]any `json:"ui"`
	API           map[string]any `json:"api"`
}

// Read loads all three build info files.
func Read(paths Paths, log *zap.Logger) Info {
	log = logging.OrNop(log)
	return Info{
		Core: readFile(paths.CoreFile(), log),
		UI:   readFile(paths.UIFile(), log),
		API:  readFile(paths.APIFile(), log),
	}
}

func readFile(path string, log *zap.Logger) map[string]any {
	out := map[string]any{}
	if path == "" {
		return out
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Info("failed to read buildinfo", zap.String("path", path), zap.Error(err))
		}
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		log.Info("failed to parse buildinfo", zap.String("path", path), zap.Error(err))
		return map[string]any{}
	}
	return out
}

// Version returns the "version" member of a build info part, or "".
func Version(part map[string]any) string {
	v, _ := part["version"].(string)
	return v
}

// CompareVersions compares two version strings using semver.
// Returns -1 if a < b, 0 if equal, 1 if a > b. A leading "v" is ignored.
func CompareVersions(a, b string) (int, error) {
	av, err := parseSemver(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := parseSemver(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// SavedWithNewerCore reports whether the core version recorded in a
// project's build info is newer than the running core. Missing or
// unparsable versions never warn.
func SavedWithNewerCore(running Info, projectBuildInfo json.RawMessage) bool {
	if len(projectBuildInfo) == 0 {
		return false
	}
	var saved struct {
		Core map[string]any `json:"core"`
	}
	if err := json.Unmarshal(projectBuildInfo, &saved); err != nil {
		return false
	}
	savedVersion, runningVersion := Version(saved.Core), Version(running.Core)
	if savedVersion == "" || runningVersion == "" {
		return false
	}
	cmp, err := CompareVersions(savedVersion, runningVersion)
	return err == nil && cmp > 0
}

// Stamp is the build info recorded in a project on save.
func (i Info) Stamp() (json.RawMessage, error) {
	data, err := json.Marshal(map[string]any{
		"core": i.Core,
		"ui":   i.UI,
		"api":  i.API,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding build info: %w", err)
	}
	return data, nil
}

func parseSemver(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(version, "v"))
}
