package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/hpungsan/tokime/internal/config"
	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: ~/.tokime/exports/tokime-backup-<date>.json
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path        string   `json:"path"`
	Keys        []string `json:"keys"`
	Stopwatches int      `json:"stopwatches"`
	ExportedAt  int64    `json:"exported_at"`
}

// RawKeysField is the reserved backup key listing store keys whose values
// were not JSON. Those values are written as JSON strings and unquoted again
// on import.
const RawKeysField = "_tokime_raw"

// Export writes every stored key to a single indented JSON object.
func Export(ctx context.Context, mgr *manager.Manager, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath, err := resolveBackupPath(input.Path, forExport, cfg, now)
	if err != nil {
		return nil, err
	}

	snapshot, err := mgr.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snapshot[RawKeysField]; ok {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("store key %q is reserved for backups", RawKeysField))
	}

	doc := make(map[string]json.RawMessage, len(snapshot)+1)
	var rawKeys []string
	for key, value := range snapshot {
		if json.Valid(value) {
			doc[key] = json.RawMessage(value)
			continue
		}
		quoted, err := json.Marshal(string(value))
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		doc[key] = quoted
		rawKeys = append(rawKeys, key)
	}
	if len(rawKeys) > 0 {
		slices.Sort(rawKeys)
		list, err := json.Marshal(rawKeys)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		doc[RawKeysField] = list
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}
	if err := writeFileAtomic(exportPath, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:        exportPath,
		Keys:        slices.Sorted(maps.Keys(snapshot)),
		Stopwatches: len(mgr.ListAll(ctx)),
		ExportedAt:  now.Unix(),
	}, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it into
// place, leaving any existing file untouched on failure.
func writeFileAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := createBackupTemp(tempPath)
	if err != nil {
		return err
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Windows cannot rename an open file.
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}
