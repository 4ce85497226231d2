package project

import (
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	// AssetDirName is the project-local asset directory.
	AssetDirName = "assets"
	// OpsDirName is the project-local op tree.
	OpsDirName = "ops"
	// ScreenshotDirName holds generated thumbnails, named <shortId>.png.
	ScreenshotDirName = ".screenshots"

	fileScheme = "file://"
)

// AssetDir returns the project-local asset directory of a project stored in
// projectDir.
func AssetDir(projectDir string) string {
	return filepath.Join(projectDir, AssetDirName)
}

// AssetURL returns the project-relative URL of a file in the asset directory.
func AssetURL(name string) string {
	return "./" + AssetDirName + "/" + name
}

// OpsDir returns the project-local op tree.
func OpsDir(projectDir string) string {
	return filepath.Join(projectDir, OpsDirName)
}

// ScreenshotFile returns where the generated thumbnail of a project lives.
func ScreenshotFile(projectDir, shortID string) string {
	return filepath.Join(projectDir, ScreenshotDirName, shortID+".png")
}

// FileURL converts an absolute path into a file:// URL.
func FileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// AssetPath resolves an asset reference to a filesystem path. It accepts
// file:// URLs, absolute paths, and project-relative "./assets/..." URLs.
// ok is false for anything else (remote URLs, plain values).
func AssetPath(projectDir, ref string) (path string, ok bool) {
	switch {
	case strings.HasPrefix(ref, fileScheme):
		u, err := url.Parse(ref)
		if err != nil || u.Path == "" {
			return "", false
		}
		return filepath.FromSlash(u.Path), true
	case strings.HasPrefix(ref, "./"+AssetDirName+"/"):
		if projectDir == "" {
			return "", false
		}
		return filepath.Join(projectDir, filepath.FromSlash(strings.TrimPrefix(ref, "./"))), true
	case filepath.IsAbs(ref):
		return filepath.Clean(ref), true
	}
	return "", false
}

// IsLocalAsset reports whether path lies inside the project's asset directory.
func IsLocalAsset(projectDir, path string) bool {
	if projectDir == "" {
		return false
	}
	rel, err := filepath.Rel(AssetDir(projectDir), path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// AssetRefs returns every string port value that refers to a file, in op
// and port order. Duplicates are kept.
func (p *Project) AssetRefs(projectDir string) []string {
	var refs []string
	for _, op := range p.Ops {
		for _, port := range op.PortsIn {
			s, ok := stringValue(port.Value)
			if !ok {
				continue
			}
			if _, isFile := AssetPath(projectDir, s); isFile {
				refs = append(refs, s)
			}
		}
	}
	return refs
}

// ReplaceAssetURLs rewrites port values found in moved (old reference to new
// reference) and returns how many values changed.
func (p *Project) ReplaceAssetURLs(moved map[string]string) int {
	n := 0
	for i := range p.Ops {
		for j := range p.Ops[i].PortsIn {
			port := &p.Ops[i].PortsIn[j]
			s, ok := stringValue(port.Value)
			if !ok {
				continue
			}
			repl, found := moved[s]
			if !found {
				if path, ok := AssetPath("", s); ok {
					repl, found = moved[FileURL(path)]
				}
			}
			if !found {
				continue
			}
			raw, err := json.Marshal(repl)
			if err != nil {
				continue
			}
			port.Value = raw
			n++
		}
	}
	return n
}

func stringValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, s != ""
}
