// Package blobstore is the adapter between file records and the object
// store that holds their content.
package blobstore

import (
	"context"
	"io"
	"strings"
	"time"
)

// Object is a search hit. Ref is the store's own reference for the object
// and is what DeleteFile expects.
type Object struct {
	Ref  string
	Name string
	Size int64
}

// UploadResult describes a stored blob.
type UploadResult struct {
	URL          string
	Path         string
	ThumbnailURL *string
}

// Store is the blob store contract used by the file service.
type Store interface {
	Upload(ctx context.Context, body io.Reader, size int64, name, folder, contentType string) (*UploadResult, error)
	ListFiles(ctx context.Context, name string, limit int) ([]Object, error)
	DeleteFile(ctx context.Context, ref string) error
	PresignGet(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// ResolveID derives the blob identifier of a record: the last segment of
// fileURL with any query string removed, or else the last segment of path.
// ok is false when neither yields a non-empty segment.
func ResolveID(fileURL, path string) (id string, ok bool) {
	if fileURL != "" {
		withoutQuery, _, _ := strings.Cut(fileURL, "?")
		if id = lastSegment(withoutQuery); id != "" {
			return id, true
		}
	}
	if path != "" {
		if id = lastSegment(path); id != "" {
			return id, true
		}
	}
	return "", false
}

func lastSegment(s string) string {
	return s[strings.LastIndex(s, "/")+1:]
}
