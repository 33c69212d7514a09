// Package memory provides an in-memory TableStore for tests and
// ephemeral deployments. Nothing survives a restart.
package memory

import (
	"sync"

	"github.com/snapfile/snapfile/pkg/metadata"
)

// Store keeps both tables in process memory. Load and save deep-copy the
// maps so callers can never alias the stored state.
type Store struct {
	mu      sync.Mutex
	folders map[string]metadata.Folder
	files   map[string]metadata.File
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		folders: make(map[string]metadata.Folder),
		files:   make(map[string]metadata.File),
	}
}

// LoadFolders returns a copy of the folder table.
func (s *Store) LoadFolders() (map[string]metadata.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyFolders(s.folders), nil
}

// SaveFolders replaces the folder table.
func (s *Store) SaveFolders(folders map[string]metadata.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = copyFolders(folders)
	return nil
}

// LoadFiles returns a copy of the file table.
func (s *Store) LoadFiles() (map[string]metadata.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyFiles(s.files), nil
}

// SaveFiles replaces the file table.
func (s *Store) SaveFiles(files map[string]metadata.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = copyFiles(files)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func copyFolders(src map[string]metadata.Folder) map[string]metadata.Folder {
	dst := make(map[string]metadata.Folder, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyFiles(src map[string]metadata.File) map[string]metadata.File {
	dst := make(map[string]metadata.File, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
