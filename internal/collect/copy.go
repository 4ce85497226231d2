package collect

import (
	"fmt"
	"os"
	"path/filepath"
)

// excludedNames are skipped when an op directory is copied.
var excludedNames = map[string]bool{
	".git":      true,
	".DS_Store": true,
}

// copyDir recursively copies src to dst, excluding entries in excludedNames.
// Existing files in dst are overwritten.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if excludedNames[entry.Name()] {
			continue
		}
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
		// Symlinks and special files are not copied.
	}
	return nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, srcInfo.Mode().Perm())
}

// freeName returns fileName if it is unused in dir, otherwise the first of
// name_1.ext, name_2.ext, ... that is.
func freeName(dir, fileName string) (string, error) {
	ext := filepath.Ext(fileName)
	stem := fileName[:len(fileName)-len(ext)]
	candidate := fileName
	for counter := 1; ; counter++ {
		_, err := os.Lstat(filepath.Join(dir, candidate))
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("probing %s: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, counter, ext)
	}
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel))
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && os.IsPathSeparator(rel[2])
}
