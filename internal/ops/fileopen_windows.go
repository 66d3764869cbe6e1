//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/tokime/internal/errors"
)

// createBackupTemp creates the temp file an export is staged in. Windows has
// no O_NOFOLLOW; resolveBackupPath has already refused symlinks.
func createBackupTemp(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return f, nil
}

// openBackup opens a backup for import.
func openBackup(path string) (*os.File, error) {
	f, err := os.Open(path)
	switch {
	case err == nil:
		return f, nil
	case os.IsNotExist(err):
		return nil, errors.NewFileNotFound(path)
	default:
		return nil, errors.NewInternal(err)
	}
}
