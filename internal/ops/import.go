package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hpungsan/tokime/internal/config"
	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/manager"
	"github.com/hpungsan/tokime/internal/stopwatch"
)

// MaxImportBytes bounds the size of a backup file.
const MaxImportBytes = 16 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Keys        int `json:"keys"`
	Stopwatches int `json:"stopwatches"`
}

// Import overwrites stored keys with the contents of a backup file and
// reloads the manager. Keys absent from the file are left alone. Nothing is
// written unless the whole file decodes.
func Import(ctx context.Context, mgr *manager.Manager, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	path, err := resolveBackupPath(input.Path, forImport, cfg, time.Now())
	if err != nil {
		return nil, err
	}

	file, err := openBackup(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if len(data) > MaxImportBytes {
		return nil, errors.NewInvalidImportFile(fmt.Sprintf("file exceeds %d bytes", MaxImportBytes))
	}

	items, err := parseBackup(data, mgr.Key())
	if err != nil {
		return nil, err
	}

	if err := mgr.Restore(ctx, items); err != nil {
		return nil, err
	}

	return &ImportOutput{
		Keys:        len(items),
		Stopwatches: len(mgr.ListAll(ctx)),
	}, nil
}

// parseBackup decodes a backup object into raw store values. The stopwatch
// key, when present, must hold a valid collection. Keys named in
// RawKeysField are unquoted back to their original bytes.
func parseBackup(data []byte, stopwatchKey string) (map[string][]byte, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewInvalidImportFile(fmt.Sprintf("invalid JSON: %v", err))
	}
	if doc == nil {
		return nil, errors.NewInvalidImportFile("backup must be a JSON object")
	}

	if raw, ok := doc[stopwatchKey]; ok {
		var records []stopwatch.Record
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, errors.NewInvalidImportFile(fmt.Sprintf("invalid %q value: %v", stopwatchKey, err))
		}
	}

	var rawKeys []string
	if list, ok := doc[RawKeysField]; ok {
		if err := json.Unmarshal(list, &rawKeys); err != nil {
			return nil, errors.NewInvalidImportFile(fmt.Sprintf("invalid %q list: %v", RawKeysField, err))
		}
		delete(doc, RawKeysField)
	}

	items := make(map[string][]byte, len(doc))
	for key, raw := range doc {
		items[key] = []byte(raw)
	}
	for _, key := range rawKeys {
		raw, ok := doc[key]
		if !ok {
			return nil, errors.NewInvalidImportFile(fmt.Sprintf("%q lists missing key %q", RawKeysField, key))
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, errors.NewInvalidImportFile(fmt.Sprintf("raw value for %q must be a JSON string", key))
		}
		items[key] = []byte(text)
	}
	return items, nil
}
