// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults cover a missing or empty file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName              string `yaml:"cli_name"`
	DisplayName          string `yaml:"display_name"`
	Description          string `yaml:"description"`
	HomeDir              string `yaml:"home_dir"`
	EnvPrefix            string `yaml:"env_prefix"`
	GoModule             string `yaml:"go_module"`
	ProjectFileExtension string `yaml:"project_file_extension"`
	SettingsName         string `yaml:"settings_name"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:              "patchdesk",
			DisplayName:          "Patchdesk",
			Description:          "Local project and op library manager for the patch editor",
			HomeDir:              ".patchdesk",
			EnvPrefix:            "PATCHDESK",
			GoModule:             "github.com/patchdesk/patchdesk",
			ProjectFileExtension: "cables",
			SettingsName:         "patchdesk-preferences",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "patchdesk").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".patchdesk").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "PATCHDESK").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// ProjectFileExtension returns the project file extension without the dot.
func ProjectFileExtension() string { load(); return defaults.ProjectFileExtension }

// SettingsName returns the base name (no extension) of the settings JSON file.
func SettingsName() string { load(); return defaults.SettingsName }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "PATCHDESK_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
