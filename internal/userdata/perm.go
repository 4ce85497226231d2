package userdata

import (
	"os"
	"runtime"
)

// chmod sets permissions. Windows has no Unix permission bits, so it is a
// no-op there.
func chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// permOK reports whether path has want, ignoring the check on Windows.
func permOK(info os.FileInfo, want os.FileMode) bool {
	return runtime.GOOS == "windows" || info.Mode().Perm() == want
}
