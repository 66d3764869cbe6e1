package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hpungsan/tokime/internal/config"
	"github.com/hpungsan/tokime/internal/errors"
)

// BackupExt is the required extension for backup files.
const BackupExt = ".json"

// backupPrefix starts every default backup file name.
const backupPrefix = "tokime-backup-"

type backupMode int

const (
	forExport backupMode = iota
	forImport
)

// resolveBackupPath checks a user-supplied backup path and returns it in
// absolute form. An empty export path becomes
// ~/.tokime/exports/tokime-backup-<date>.json.
//
// The file must sit directly in the exports directory or an allowed_paths
// entry; nested directories are refused so that O_NOFOLLOW on the final
// component covers every symlink swap. allow_unsafe_paths lifts the
// directory rule but never the symlink rule. An import file must also be a
// regular file no larger than MaxImportBytes.
func resolveBackupPath(path string, mode backupMode, cfg *config.Config, now time.Time) (string, error) {
	if path == "" {
		if mode == forImport {
			return "", errors.NewInvalidRequest("path is required")
		}
		dir, err := exportsDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, backupName(now))
	}

	if hasTraversal(path) {
		return "", errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}
	if filepath.Ext(abs) != BackupExt {
		return "", errors.NewInvalidRequest("backup file must have " + BackupExt + " extension")
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		if err := checkBackupDir(filepath.Dir(abs), cfg); err != nil {
			return "", err
		}
	}

	info, err := os.Lstat(abs)
	switch {
	case os.IsNotExist(err):
		if mode == forImport {
			return "", errors.NewFileNotFound(path)
		}
		return abs, nil
	case err != nil:
		return "", errors.NewInternal(fmt.Errorf("stat backup file: %w", err))
	case info.Mode()&os.ModeSymlink != 0:
		return "", errors.NewInvalidRequest("backup file must not be a symlink")
	case info.IsDir():
		return "", errors.NewInvalidRequest("backup path is a directory")
	}

	if mode == forImport {
		if !info.Mode().IsRegular() {
			return "", errors.NewInvalidImportFile("not a regular file")
		}
		if info.Size() > MaxImportBytes {
			return "", errors.NewInvalidImportFile(fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), MaxImportBytes))
		}
	}
	return abs, nil
}

// backupName is the default file name for a backup taken at now.
func backupName(now time.Time) string {
	return backupPrefix + now.Format(time.DateOnly) + BackupExt
}

// checkBackupDir requires dir to be one of the backup directories and not a symlink.
func checkBackupDir(dir string, cfg *config.Config) error {
	allowed, err := backupDirs(cfg)
	if err != nil {
		return err
	}
	if !slices.Contains(allowed, filepath.Clean(dir)) {
		return errors.NewInvalidRequest(fmt.Sprintf(
			"backup file must be directly in one of %v (no subdirectories)", allowed))
	}
	if info, err := os.Lstat(dir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("backup directory must not be a symlink")
	}
	return nil
}

// backupDirs lists the exports directory plus every absolute allowed_paths
// entry. A symlinked entry is matched by its target.
func backupDirs(cfg *config.Config) ([]string, error) {
	def, err := exportsDir()
	if err != nil {
		return nil, err
	}
	candidates := []string{def}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				candidates = append(candidates, p)
			}
		}
	}

	dirs := make([]string, 0, len(candidates))
	for _, d := range candidates {
		d = filepath.Clean(d)
		if info, err := os.Lstat(d); err == nil && info.Mode()&os.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(d)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve allowed path %s: %v", d, err))
			}
			d = target
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

// exportsDir returns ~/.tokime/exports.
func exportsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return filepath.Join(home, ".tokime", "exports"), nil
}

// hasTraversal reports a ".." component under either separator.
func hasTraversal(path string) bool {
	return slices.Contains(strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	}), "..")
}
