package userdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/patchdesk/patchdesk/internal/branding"
	"github.com/patchdesk/patchdesk/internal/recent"
	"github.com/patchdesk/patchdesk/internal/settings"
	"go.uber.org/zap"
)

// Report counts the findings of CheckUserdata.
type Report struct {
	Missing  int
	Warnings int
	Failures int
	Fixed    int
}

// Healthy reports whether the check found nothing.
func (r Report) Healthy() bool {
	return r.Missing == 0 && r.Warnings == 0 && r.Failures == 0
}

// CheckUserdata validates the data directory, the settings file and the
// recent projects. When fix is true, it attempts to repair issues.
func CheckUserdata(w io.Writer, fix bool, log *zap.Logger) (Report, error) {
	var rep Report
	root, err := GetRoot()
	if err != nil {
		return rep, err
	}

	fmt.Fprintln(w, "Userdata check:")

	if _, statErr := os.Stat(root); os.IsNotExist(statErr) {
		rep.Missing++
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", root)
		if fix {
			fmt.Fprintf(w, "  [FIX ] Running %s init...\n", branding.CLIName())
			if initErr := InitGlobal(w, log); initErr != nil {
				return rep, fmt.Errorf("auto-fix init: %w", initErr)
			}
			rep.Fixed++
		} else {
			fmt.Fprintf(w, "         Run '%s init' to create\n", branding.CLIName())
		}
		return rep, nil
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", root)

	storageDir, err := GetStorageDir()
	if err != nil {
		return rep, err
	}
	if checkDirWithPerm(w, &rep, storageDir, DirPermSecure, fix) {
		if store := checkSettings(w, &rep, storageDir, fix, log); store != nil {
			checkRecent(w, &rep, store, fix, log)
		}
	}

	for _, get := range []func() (string, error){GetOpsRoot, GetAssetLibraryRoot} {
		dir, err := get()
		if err != nil {
			return rep, err
		}
		checkDirExists(w, &rep, dir, fix)
	}
	return rep, nil
}

// checkDirWithPerm reports whether path exists once the check is done.
func checkDirWithPerm(w io.Writer, rep *Report, path string, expectedPerm os.FileMode, fix bool) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		rep.Missing++
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		if fix {
			if mkErr := os.MkdirAll(path, expectedPerm); mkErr != nil {
				rep.Failures++
				fmt.Fprintf(w, "  [FAIL] Could not create %s: %v\n", path, mkErr)
				return false
			}
			chmod(path, expectedPerm)
			rep.Fixed++
			fmt.Fprintf(w, "  [FIX ] Created %s with %o\n", path, expectedPerm)
			return true
		}
		return false
	}
	if err != nil {
		rep.Failures++
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return false
	}

	if !permOK(info, expectedPerm) {
		rep.Warnings++
		fmt.Fprintf(w, "  [WARN] %s has permissions %o (expected %o)\n", path, info.Mode().Perm(), expectedPerm)
		if fix {
			if chErr := chmod(path, expectedPerm); chErr != nil {
				rep.Failures++
				fmt.Fprintf(w, "  [FAIL] Could not fix permissions on %s: %v\n", path, chErr)
				return true
			}
			rep.Fixed++
			fmt.Fprintf(w, "  [FIX ] Fixed permissions on %s to %o\n", path, expectedPerm)
		}
		return true
	}
	fmt.Fprintf(w, "  [ OK ] %s (permissions %o)\n", path, info.Mode().Perm())
	return true
}

// checkSettings opens the settings file. An unparsable file is reported;
// with fix it is moved aside and replaced by the defaults.
func checkSettings(w io.Writer, rep *Report, storageDir string, fix bool, log *zap.Logger) *settings.Store {
	path := SettingsFile(storageDir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		rep.Missing++
		fmt.Fprintf(w, "  [MISS] %s does not exist (defaults will be used)\n", path)
		if fix {
			if err := ensureSettings(w, storageDir, log); err != nil {
				rep.Failures++
				fmt.Fprintf(w, "  [FAIL] %v\n", err)
				return nil
			}
			rep.Fixed++
		}
	}

	store, err := settings.Open(storageDir, branding.SettingsName(), log)
	if err != nil {
		rep.Failures++
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return nil
	}
	last := store.LastLoad()
	if !errors.Is(last.Err, settings.ErrParseFailure) {
		if last.Outcome == settings.Loaded {
			fmt.Fprintf(w, "  [ OK ] %s parses\n", path)
		}
		return store
	}

	rep.Failures++
	fmt.Fprintf(w, "  [FAIL] %s is not valid JSON\n", path)
	if !fix {
		return store
	}
	broken := path + ".broken"
	if err := os.Rename(path, broken); err != nil {
		fmt.Fprintf(w, "  [FAIL] Could not move %s aside: %v\n", path, err)
		return store
	}
	if err := store.Set(settings.KeyStorageDir, storageDir, false); err != nil {
		fmt.Fprintf(w, "  [FAIL] Could not rewrite %s: %v\n", path, err)
		return store
	}
	rep.Fixed++
	fmt.Fprintf(w, "  [FIX ] Moved broken file to %s and wrote defaults\n", broken)
	return store
}

// checkRecent reports recent entries whose project file is gone. Fixing
// refreshes the cache, which drops them.
func checkRecent(w io.Writer, rep *Report, store *settings.Store, fix bool, log *zap.Logger) {
	var entries map[string]json.RawMessage
	if err := store.Decode(settings.KeyRecentProjects, &entries); err != nil {
		rep.Failures++
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", settings.KeyRecentProjects, err)
		return
	}

	var missing []string
	for path := range entries {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	sort.Strings(missing)
	if len(missing) == 0 {
		fmt.Fprintf(w, "  [ OK ] %d recent project(s)\n", len(entries))
		return
	}

	for _, path := range missing {
		rep.Warnings++
		fmt.Fprintf(w, "  [WARN] recent project %s no longer exists\n", path)
	}
	if fix {
		if err := recent.New(store, log).Refresh(); err != nil {
			rep.Failures++
			fmt.Fprintf(w, "  [FAIL] Could not refresh recent projects: %v\n", err)
			return
		}
		rep.Fixed++
		fmt.Fprintf(w, "  [FIX ] Dropped %d missing recent project(s)\n", len(missing))
	}
}

func checkDirExists(w io.Writer, rep *Report, path string, fix bool) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		rep.Missing++
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		if fix {
			if mkErr := os.MkdirAll(path, DirPermNormal); mkErr != nil {
				rep.Failures++
				fmt.Fprintf(w, "  [FAIL] Could not create %s: %v\n", path, mkErr)
				return
			}
			rep.Fixed++
			fmt.Fprintf(w, "  [FIX ] Created %s\n", path)
		}
		return
	}
	if err != nil {
		rep.Failures++
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return
	}
	if !info.IsDir() {
		rep.Warnings++
		fmt.Fprintf(w, "  [WARN] %s exists but is not a directory\n", path)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s exists\n", path)
}
