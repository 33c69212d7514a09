// Package badger provides a BadgerDB-backed TableStore.
//
// Each table is stored as a single JSON document under a fixed key, so a
// save replaces the whole table in one transaction. That matches the
// load-modify-store contract of the metadata service: Badger gives the
// durability and crash safety, the service gives the atomicity across the
// load-modify-store cycle.
package badger

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/snapfile/snapfile/pkg/metadata"
)

const (
	foldersKey = "tables/folders"
	filesKey   = "tables/files"
)

// Store persists the metadata tables in a BadgerDB database.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a Badger database at the given path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// LoadFolders reads the folder table document.
func (s *Store) LoadFolders() (map[string]metadata.Folder, error) {
	folders := make(map[string]metadata.Folder)
	if err := s.load(foldersKey, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// SaveFolders writes the folder table document.
func (s *Store) SaveFolders(folders map[string]metadata.Folder) error {
	return s.save(foldersKey, folders)
}

// LoadFiles reads the file table document.
func (s *Store) LoadFiles() (map[string]metadata.File, error) {
	files := make(map[string]metadata.File)
	if err := s.load(filesKey, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// SaveFiles writes the file table document.
func (s *Store) SaveFiles(files map[string]metadata.File) error {
	return s.save(filesKey, files)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// load unmarshals the document at key into out. A missing key leaves out
// untouched, so a fresh database yields empty tables.
func (s *Store) load(key string, out any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	return nil
}

// save marshals in and writes it under key in a single transaction.
func (s *Store) save(key string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
