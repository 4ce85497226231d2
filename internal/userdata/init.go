package userdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/patchdesk/patchdesk/internal/branding"
	"github.com/patchdesk/patchdesk/internal/settings"
	"go.uber.org/zap"
)

// InitGlobal creates the data directory structure and an initial settings
// file. It prints progress messages to w. Existing items are skipped with a
// message.
func InitGlobal(w io.Writer, log *zap.Logger) error {
	root, err := GetRoot()
	if err != nil {
		return err
	}
	if err := ensureDir(w, root, DirPermNormal); err != nil {
		return err
	}

	storageDir, err := GetStorageDir()
	if err != nil {
		return err
	}
	if err := ensureDir(w, storageDir, DirPermSecure); err != nil {
		return err
	}
	if err := ensureSettings(w, storageDir, log); err != nil {
		return err
	}

	opsRoot, err := GetOpsRoot()
	if err != nil {
		return err
	}
	if err := ensureDir(w, opsRoot, DirPermNormal); err != nil {
		return err
	}

	assets, err := GetAssetLibraryRoot()
	if err != nil {
		return err
	}
	return ensureDir(w, assets, DirPermNormal)
}

// ensureDir creates a directory if it doesn't exist.
func ensureDir(w io.Writer, path string, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	// MkdirAll does not apply perm to a directory that umask narrowed.
	if err := chmod(path, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}

// ensureSettings writes the compiled-in defaults when no settings file
// exists yet.
func ensureSettings(w io.Writer, storageDir string, log *zap.Logger) error {
	path := SettingsFile(storageDir)
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  [SKIP] %s already exists\n", path)
		return nil
	}

	store, err := settings.Open(storageDir, branding.SettingsName(), log)
	if err != nil {
		return err
	}
	if err := store.Set(settings.KeyStorageDir, filepath.Clean(storageDir), false); err != nil {
		return fmt.Errorf("creating settings file %s: %w", path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s\n", path)
	return nil
}
