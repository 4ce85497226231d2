package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/patchdesk/patchdesk/internal/branding"
)

// ErrParseFailure reports a project file that is not valid JSON or does not
// match the project schema.
var ErrParseFailure = errors.New("project file could not be parsed")

// Extension returns the project file extension without the leading dot.
func Extension() string {
	return branding.ProjectFileExtension()
}

// IsProjectFile reports whether path carries the project file extension.
func IsProjectFile(path string) bool {
	return path != "" && strings.HasSuffix(path, "."+Extension())
}

// NameFromFile returns the project name implied by a file path: its base
// name without the project extension.
func NameFromFile(path string) string {
	return strings.TrimSuffix(filepath.Base(path), "."+Extension())
}

// FileName returns the file name a project with the given name is saved
// under. Path separators are replaced so the result stays in one directory.
func FileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(name)
	if name == "" {
		name = DefaultName
	}
	if strings.HasSuffix(name, "."+Extension()) {
		return name
	}
	return name + "." + Extension()
}

// Parse validates and decodes a project document.
func Parse(data []byte) (*Project, error) {
	issues, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	if len(issues) > 0 {
		msgs := make([]string, len(issues))
		for i, is := range issues {
			msgs[i] = is.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrParseFailure, strings.Join(msgs, "; "))
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	return &p, nil
}

// ReadFile reads and parses the project file at path. A missing file is
// returned as an fs.ErrNotExist error.
func ReadFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// WriteFile overwrites path with p. A non-nil payload replaces the ops and
// ui of p before it is written.
func WriteFile(path string, p *Project, payload *Payload) error {
	if p == nil {
		return fmt.Errorf("no project to write")
	}
	if payload != nil {
		data, err := payload.Decode()
		if err != nil {
			return err
		}
		p.Ops = data.Ops
		p.UI = data.UI
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing project file: %w", err)
	}
	return nil
}
