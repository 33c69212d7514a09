// Package storage abstracts the byte store holding uploaded content.
// Handlers consult it for existence and size checks and for deleting
// bytes alongside file metadata.
package storage

// Store is the minimal surface the HTTP handlers need from the byte store.
type Store interface {
	// Exists reports whether the named file has stored bytes.
	Exists(filename string) bool

	// Size returns the stored byte count for the named file.
	Size(filename string) (int64, error)

	// Delete removes the stored bytes. Absence is not an error.
	Delete(filename string) error

	// List returns the names of all stored files.
	List() ([]string, error)
}
