package metadata

import "time"

// Folder is a node in the folder tree.
//
// The root is not a materialized node: children of the root carry a nil
// ParentID. The parent relation must always form a forest with no cycles.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// File is the metadata record for an uploaded file.
//
// Filename is the unique key across the whole store. A nil FolderID places
// the file at the root. UploadedAt is the metadata-assignment timestamp and
// is refreshed on every re-assignment, including moves.
type File struct {
	Filename   string    `json:"filename"`
	FolderID   *string   `json:"folder_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
	Size       int64     `json:"size"`
}

// FolderSummary is a Folder together with aggregates over its direct
// children. Computed on read, never stored. Aggregates are not recursive:
// a folder's reported size excludes descendants' contents.
type FolderSummary struct {
	Folder
	FileCount   int   `json:"file_count"`
	FolderCount int   `json:"folder_count"`
	TotalSize   int64 `json:"total_size"`
}

// Listing describes the contents of a single folder: its direct child
// folders sorted by name, the folder's own summary (nil at the root), and
// the breadcrumb chain from the root down to the folder.
type Listing struct {
	Folders       []FolderSummary `json:"folders"`
	CurrentFolder *FolderSummary  `json:"current_folder,omitempty"`
	Breadcrumbs   []FolderSummary `json:"breadcrumbs"`
}
