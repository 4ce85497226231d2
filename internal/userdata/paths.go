package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/patchdesk/patchdesk/internal/branding"
	"github.com/patchdesk/patchdesk/internal/config"
)

// Directory names below the root, used when no configured location applies.
const (
	StorageDirName = "settings"
	OpsDirName     = "ops"
	AssetsDirName  = "assets"
)

// Permission constants.
const (
	DirPermSecure  os.FileMode = 0700
	FilePermSecure os.FileMode = 0600
	DirPermNormal  os.FileMode = 0755
)

// GetRoot returns the per-user data directory.
// It checks the PATCHDESK_HOME environment variable first,
// then falls back to ~/.patchdesk.
func GetRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// configuredOr returns the configured value, or <root>/<name> when the
// configuration has none.
func configuredOr(value, name string) (string, error) {
	if value != "" {
		return value, nil
	}
	root, err := GetRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

// GetStorageDir returns the directory holding the settings file.
func GetStorageDir() (string, error) {
	return configuredOr(config.StorageDir(), StorageDirName)
}

// GetOpsRoot returns the root of the shared op tree.
func GetOpsRoot() (string, error) {
	return configuredOr(config.OpsPath(), OpsDirName)
}

// GetAssetLibraryRoot returns the root of the shared asset library.
func GetAssetLibraryRoot() (string, error) {
	return configuredOr(config.AssetLibraryPath(), AssetsDirName)
}

// SettingsFile returns the path of the settings JSON file in storageDir.
func SettingsFile(storageDir string) string {
	return filepath.Join(storageDir, branding.SettingsName()+".json")
}

// GetSettingsPath returns the path of the settings JSON file.
func GetSettingsPath() (string, error) {
	dir, err := GetStorageDir()
	if err != nil {
		return "", err
	}
	return SettingsFile(dir), nil
}
