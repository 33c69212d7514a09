package metadata

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service owns the folder tree and the file→folder index.
//
// Every mutating operation runs as an atomic load-modify-store cycle under
// an exclusive lock, so concurrent mutations can never both observe "no
// conflict" and both succeed. Reads share the lock and never observe a
// partially-written table. Aggregates are recomputed from full table scans
// at read time; there are no cached counters to go stale.
type Service struct {
	mu    sync.RWMutex
	store TableStore
}

// NewService creates a metadata service backed by the given table store.
func NewService(store TableStore) *Service {
	return &Service{store: store}
}

// CreateFolder creates a folder under the given parent (nil for root).
//
// Fails NotFound if the parent is absent and Conflict if a sibling with the
// same name already exists under the same parent.
func (s *Service) CreateFolder(name string, parentID *string) (*FolderSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewInvalidOperationError("folder name cannot be empty", "")
	}
	if strings.ContainsAny(name, "/\\") {
		return nil, NewInvalidOperationError("folder name cannot contain path separators", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	folders, err := s.store.LoadFolders()
	if err != nil {
		return nil, NewInternalError("failed to load folder table", err)
	}

	if parentID != nil {
		if _, ok := folders[*parentID]; !ok {
			return nil, NewNotFoundError("parent folder", *parentID)
		}
	}

	for _, f := range folders {
		if f.Name == name && sameParent(f.ParentID, parentID) {
			return nil, NewConflictError("folder with this name already exists", name)
		}
	}

	folder := Folder{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	folders[folder.ID] = folder

	if err := s.store.SaveFolders(folders); err != nil {
		return nil, NewInternalError("failed to save folder table", err)
	}

	return &FolderSummary{Folder: folder}, nil
}

// DeleteFolder removes an empty folder.
//
// Fails NotFound if the folder is absent and Conflict if any file or folder
// still references it. There is no cascading delete; emptiness is a
// precondition.
func (s *Service) DeleteFolder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	folders, err := s.store.LoadFolders()
	if err != nil {
		return NewInternalError("failed to load folder table", err)
	}
	if _, ok := folders[id]; !ok {
		return NewNotFoundError("folder", id)
	}

	for _, f := range folders {
		if f.ParentID != nil && *f.ParentID == id {
			return NewConflictError("folder contains subfolders", id)
		}
	}

	files, err := s.store.LoadFiles()
	if err != nil {
		return NewInternalError("failed to load file table", err)
	}
	for _, f := range files {
		if f.FolderID != nil && *f.FolderID == id {
			return NewConflictError("folder contains files", id)
		}
	}

	delete(folders, id)
	if err := s.store.SaveFolders(folders); err != nil {
		return NewInternalError("failed to save folder table", err)
	}
	return nil
}

// MoveFolder re-parents a folder (nil moves it to the root).
//
// Fails NotFound if the folder or destination is absent, Conflict if a
// sibling with the same name already exists at the destination, and
// InvalidOperation if the move would make the folder its own ancestor.
func (s *Service) MoveFolder(id string, newParentID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	folders, err := s.store.LoadFolders()
	if err != nil {
		return NewInternalError("failed to load folder table", err)
	}

	folder, ok := folders[id]
	if !ok {
		return NewNotFoundError("folder", id)
	}
	if newParentID != nil {
		if _, ok := folders[*newParentID]; !ok {
			return NewNotFoundError("destination folder", *newParentID)
		}
	}

	if wouldCreateCycle(folders, id, newParentID) {
		return NewInvalidOperationError("cannot move a folder into itself or its descendant", id)
	}

	for _, f := range folders {
		if f.ID != id && f.Name == folder.Name && sameParent(f.ParentID, newParentID) {
			return NewConflictError("folder with this name already exists at destination", folder.Name)
		}
	}

	folder.ParentID = newParentID
	folders[id] = folder

	if err := s.store.SaveFolders(folders); err != nil {
		return NewInternalError("failed to save folder table", err)
	}
	return nil
}

// AssignFile upserts the metadata record for a file, placing it in the
// given folder (nil for root). The same operation re-homes an existing
// file; UploadedAt is stamped to now on every assignment.
//
// Fails NotFound if the folder is absent.
func (s *Service) AssignFile(filename string, folderID *string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return NewInvalidOperationError("filename cannot be empty", "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if folderID != nil {
		folders, err := s.store.LoadFolders()
		if err != nil {
			return NewInternalError("failed to load folder table", err)
		}
		if _, ok := folders[*folderID]; !ok {
			return NewNotFoundError("folder", *folderID)
		}
	}

	files, err := s.store.LoadFiles()
	if err != nil {
		return NewInternalError("failed to load file table", err)
	}

	files[filename] = File{
		Filename:   filename,
		FolderID:   folderID,
		UploadedAt: time.Now().UTC(),
		Size:       size,
	}

	if err := s.store.SaveFiles(files); err != nil {
		return NewInternalError("failed to save file table", err)
	}
	return nil
}

// RemoveFile deletes the metadata record for a file. Absence is not an
// error; removal is idempotent.
func (s *Service) RemoveFile(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.store.LoadFiles()
	if err != nil {
		return NewInternalError("failed to load file table", err)
	}
	if _, ok := files[filename]; !ok {
		return nil
	}

	delete(files, filename)
	if err := s.store.SaveFiles(files); err != nil {
		return NewInternalError("failed to save file table", err)
	}
	return nil
}

// List returns the direct child folders of folderID (nil for root) sorted
// by name, the folder's own summary, and the breadcrumb chain from the
// root. Fails NotFound if folderID is given but absent.
func (s *Service) List(folderID *string) (*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folders, files, err := s.loadTables()
	if err != nil {
		return nil, err
	}

	var current *FolderSummary
	if folderID != nil {
		folder, ok := folders[*folderID]
		if !ok {
			return nil, NewNotFoundError("folder", *folderID)
		}
		cs := summarize(folder, folders, files)
		current = &cs
	}

	children := make([]FolderSummary, 0)
	for _, f := range folders {
		if sameParent(f.ParentID, folderID) {
			children = append(children, summarize(f, folders, files))
		}
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].Name < children[j].Name
	})

	return &Listing{
		Folders:       children,
		CurrentFolder: current,
		Breadcrumbs:   breadcrumbs(folderID, folders, files),
	}, nil
}

// FilesIn returns the names of the files directly in folderID (nil for
// root), sorted. Fails NotFound if folderID is given but absent.
func (s *Service) FilesIn(folderID *string) ([]string, error) {
	records, err := s.ListFiles(folderID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(records))
	for i, f := range records {
		names[i] = f.Filename
	}
	return names, nil
}

// ListFiles returns the full metadata records for the files directly in
// folderID (nil for root), newest first. Fails NotFound if folderID is
// given but absent.
func (s *Service) ListFiles(folderID *string) ([]File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folders, files, err := s.loadTables()
	if err != nil {
		return nil, err
	}
	if folderID != nil {
		if _, ok := folders[*folderID]; !ok {
			return nil, NewNotFoundError("folder", *folderID)
		}
	}

	records := make([]File, 0)
	for _, f := range files {
		if sameParent(f.FolderID, folderID) {
			records = append(records, f)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].UploadedAt.Equal(records[j].UploadedAt) {
			return records[i].Filename < records[j].Filename
		}
		return records[i].UploadedAt.After(records[j].UploadedAt)
	})
	return records, nil
}

// FileFolder returns the folder a file is assigned to (nil for root).
// Fails NotFound if the file has no metadata record.
func (s *Service) FileFolder(filename string) (*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.store.LoadFiles()
	if err != nil {
		return nil, NewInternalError("failed to load file table", err)
	}
	f, ok := files[filename]
	if !ok {
		return nil, NewNotFoundError("file", filename)
	}
	return f.FolderID, nil
}

// Counts returns the total folder and file counts.
func (s *Service) Counts() (folders, files int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ft, fl, err := s.loadTables()
	if err != nil {
		return 0, 0, err
	}
	return len(ft), len(fl), nil
}

func (s *Service) loadTables() (map[string]Folder, map[string]File, error) {
	folders, err := s.store.LoadFolders()
	if err != nil {
		return nil, nil, NewInternalError("failed to load folder table", err)
	}
	files, err := s.store.LoadFiles()
	if err != nil {
		return nil, nil, NewInternalError("failed to load file table", err)
	}
	return folders, files, nil
}

// sameParent compares two optional parent references, treating nil as the
// root on both sides.
func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// summarize computes the derived aggregates for a folder from full table
// scans. Counts and sizes cover direct children only.
func summarize(folder Folder, folders map[string]Folder, files map[string]File) FolderSummary {
	s := FolderSummary{Folder: folder}
	for _, f := range folders {
		if f.ParentID != nil && *f.ParentID == folder.ID {
			s.FolderCount++
		}
	}
	for _, f := range files {
		if f.FolderID != nil && *f.FolderID == folder.ID {
			s.FileCount++
			s.TotalSize += f.Size
		}
	}
	return s
}

// wouldCreateCycle reports whether re-parenting id under newParentID would
// make id its own ancestor. The upward walk is capped by the total folder
// count so a corrupted parent chain cannot loop forever; an unresolved
// chain at the cap is rejected as a cycle.
func wouldCreateCycle(folders map[string]Folder, id string, newParentID *string) bool {
	cur := newParentID
	for steps := 0; cur != nil; steps++ {
		if steps > len(folders) {
			return true
		}
		if *cur == id {
			return true
		}
		f, ok := folders[*cur]
		if !ok {
			return false
		}
		cur = f.ParentID
	}
	return false
}

// breadcrumbs builds the root-to-folder chain of summaries by walking
// parent links upward and reversing. The walk is capped by the total
// folder count; a dangling parent reference truncates the chain instead of
// failing the listing.
func breadcrumbs(folderID *string, folders map[string]Folder, files map[string]File) []FolderSummary {
	chain := make([]FolderSummary, 0)
	cur := folderID
	for steps := 0; cur != nil && steps <= len(folders); steps++ {
		f, ok := folders[*cur]
		if !ok {
			break
		}
		chain = append(chain, summarize(f, folders, files))
		cur = f.ParentID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
