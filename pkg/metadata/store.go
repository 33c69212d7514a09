package metadata

// TableStore persists the two metadata tables as whole documents.
//
// Implementations only need to round-trip the maps; all invariant
// enforcement happens in Service above them. Load on a fresh store returns
// an empty, non-nil map.
type TableStore interface {
	// LoadFolders returns the full folder table keyed by folder ID.
	LoadFolders() (map[string]Folder, error)

	// SaveFolders replaces the full folder table.
	SaveFolders(folders map[string]Folder) error

	// LoadFiles returns the full file table keyed by filename.
	LoadFiles() (map[string]File, error)

	// SaveFiles replaces the full file table.
	SaveFiles(files map[string]File) error

	// Close releases any resources held by the store.
	Close() error
}
