package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/patchdesk/patchdesk/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys.
const (
	KeyStorageDir       = "storage_dir"
	KeyOpsPath          = "ops_path"
	KeyAssetLibraryPath = "asset_library_path"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyDistCore         = "dist.core"
	KeyDistUI           = "dist.ui"
	KeyDistStandalone   = "dist.standalone"
)

// Dir returns the path to the config directory: $PATCHDESK_HOME when set,
// otherwise ~/.patchdesk/.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.patchdesk/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyStorageDir, filepath.Join(Dir(), "settings"))
	viper.SetDefault(KeyOpsPath, filepath.Join(Dir(), "ops"))
	viper.SetDefault(KeyAssetLibraryPath, filepath.Join(Dir(), "assets"))
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFormat, "console")

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// StorageDir is the directory holding the settings JSON file.
func StorageDir() string { return Get(KeyStorageDir) }

// OpsPath is the root of the shared (installed) op tree. Ops resolved under it
// are never collected into a project.
func OpsPath() string { return Get(KeyOpsPath) }

// AssetLibraryPath is the root of the shared asset library.
func AssetLibraryPath() string { return Get(KeyAssetLibraryPath) }
