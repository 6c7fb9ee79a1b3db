package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONFile keeps a snapshot as a JSON array in a single file. Writes go to a
// temporary file in the same directory which is then renamed over the
// target, so a crashed write never leaves a truncated snapshot behind.
type JSONFile[R any] struct {
	path string
}

// NewJSONFile returns a backend for the file at path. The file is not
// touched until Load or Save.
func NewJSONFile[R any](path string) *JSONFile[R] {
	return &JSONFile[R]{path: path}
}

// Path returns the snapshot location.
func (f *JSONFile[R]) Path() string {
	return f.path
}

// Load reads the snapshot. A missing file is reported as an error wrapping
// os.ErrNotExist. Anything other than a JSON array, including null, is a
// decode error.
func (f *JSONFile[R]) Load(_ context.Context) ([]R, error) {
	data, err := os.ReadFile(f.path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", f.path, err)
	}

	var records []R
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", f.path, err)
	}
	if records == nil {
		return nil, fmt.Errorf("store: decode %s: snapshot is not an array", f.path)
	}
	return records, nil
}

// Save replaces the snapshot with records.
func (f *JSONFile[R]) Save(ctx context.Context, records []R) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []R{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("store: create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("store: chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("store: replace %s: %w", f.path, err)
	}
	return nil
}
