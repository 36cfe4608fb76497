// Package models defines server-side data models persisted in the database.
package models

import "time"

// FolderType is the media type stored for folder records.
const FolderType = "folder"

// File is a row of the files table: either a file whose content lives in
// the blob store, or a folder that other records may reference as parent.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Path is the blob-store location, e.g. "/droply/<user>/folder/<parent>/<uuid>.png".
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"`

	FileURL      string  `json:"fileUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`

	UserID string `json:"userId"`
	// ParentID is nil for records at the root of the owner's tree.
	ParentID *string `json:"parentId"`

	IsFolder  bool `json:"isFolder"`
	IsStarred bool `json:"isStarred"`
	IsTrash   bool `json:"isTrash"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsRoot reports whether the record sits at the top of its owner's tree.
func (f *File) IsRoot() bool {
	return f.ParentID == nil
}

// FilePatch lists the mutable columns of a record; nil fields are left
// untouched by an update.
type FilePatch struct {
	Name      *string
	IsStarred *bool
	IsTrash   *bool
}

// View selects which records List returns.
type View string

const (
	ViewTree    View = ""
	ViewStarred View = "starred"
	ViewTrash   View = "trash"
)

// ListFilter narrows a listing. ParentID is only consulted for ViewTree.
type ListFilter struct {
	View     View
	ParentID *string
}
