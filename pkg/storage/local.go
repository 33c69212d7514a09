package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local stores file bytes flat in a single directory. Filenames are
// unique across the store, so there is no directory hierarchy on disk;
// the folder tree lives entirely in metadata.
type Local struct {
	dir string
}

// NewLocal creates the upload directory if needed and returns a store
// rooted there.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (l *Local) Dir() string {
	return l.dir
}

// Exists reports whether the named file has stored bytes.
func (l *Local) Exists(filename string) bool {
	path, err := l.path(filename)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Size returns the stored byte count for the named file.
func (l *Local) Size(filename string) (int64, error) {
	path, err := l.path(filename)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", filename, err)
	}
	return info.Size(), nil
}

// Delete removes the stored bytes. Deleting a missing file is a no-op.
func (l *Local) Delete(filename string) error {
	path, err := l.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", filename, err)
	}
	return nil
}

// List returns the names of all stored files.
func (l *Local) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// path resolves a filename inside the store, rejecting anything that could
// escape the upload directory.
func (l *Local) path(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, "/\\") ||
		filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	return filepath.Join(l.dir, filename), nil
}
