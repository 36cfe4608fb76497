// Package services contains server-side business logic. FileService
// implements the file and folder lifecycle: upload, registration, star and
// trash toggles, deletion and trash purging.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/droply/internal/common"
	"github.com/dmitrijs2005/droply/internal/dbx"
	"github.com/dmitrijs2005/droply/internal/logging"
	"github.com/dmitrijs2005/droply/internal/server/blobstore"
	"github.com/dmitrijs2005/droply/internal/server/models"
	"github.com/dmitrijs2005/droply/internal/server/repositories/files"
	"github.com/dmitrijs2005/droply/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// RootFolder is the top-level namespace of every blob path.
const RootFolder = "/droply"

// UploadInput is a multipart upload.
type UploadInput struct {
	// DeclaredUserID is the uploader id sent with the form; it must match
	// the authenticated caller.
	DeclaredUserID string
	ParentID       string
	FileName       string
	ContentType    string
	Size           int64
	Body           io.Reader
}

// RegisterInput describes a blob the client already uploaded itself.
type RegisterInput struct {
	DeclaredUserID string
	URL            string
	Name           string
	Size           int64
	FileType       string
	ThumbnailURL   string
	Path           string
}

// FolderInput describes a folder to create.
type FolderInput struct {
	DeclaredUserID string
	Name           string
	ParentID       string
}

// FileService orchestrates the files repository and the blob store.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	logger      logging.Logger
	presignTTL  time.Duration
}

// NewFileService constructs a FileService.
func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, logger logging.Logger, presignTTL time.Duration) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "file_service"),
		presignTTL:  presignTTL,
	}
}

// validID rejects ids that cannot be a record id. Such ids are reported as
// not found, exactly like unknown ones.
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}

// Get returns an owned record.
func (s *FileService) Get(ctx context.Context, userID, id string) (*models.File, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Files(s.db).FindOwned(ctx, id, userID)
}

// List returns the records of one view.
func (s *FileService) List(ctx context.Context, userID string, view models.View, parentID string) ([]*models.File, error) {
	filter := models.ListFilter{View: view}
	if parentID != "" {
		if _, err := uuid.Parse(parentID); err != nil {
			return nil, fmt.Errorf("%w: invalid parent id", common.ErrorValidation)
		}
		filter.ParentID = &parentID
	}
	return s.repomanager.Files(s.db).List(ctx, userID, filter)
}

// ToggleStar reads the persisted flag and writes its negation.
func (s *FileService) ToggleStar(ctx context.Context, userID, id string) (*models.File, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	var updated *models.File
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		file, err := repo.FindOwned(ctx, id, userID)
		if err != nil {
			return err
		}

		starred := !file.IsStarred
		updated, err = repo.Update(ctx, id, userID, models.FilePatch{IsStarred: &starred})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ToggleTrash moves a record into or out of the trash. A folder carries its
// whole subtree along. Restoring a record also restores its trashed
// ancestors so that it becomes reachable again.
func (s *FileService) ToggleTrash(ctx context.Context, userID, id string) (*models.File, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	var updated *models.File
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		file, err := repo.FindOwned(ctx, id, userID)
		if err != nil {
			return err
		}

		trash := !file.IsTrash
		if !trash {
			if err := restoreAncestors(ctx, repo, file, userID); err != nil {
				return err
			}
		}

		if !file.IsFolder {
			updated, err = repo.Update(ctx, id, userID, models.FilePatch{IsTrash: &trash})
			return err
		}

		tree, err := repo.SetTrashSubtree(ctx, id, userID, trash)
		if err != nil {
			return err
		}
		for _, f := range tree {
			if f.ID == id {
				updated = f
			}
		}
		if updated == nil {
			return common.ErrorNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// restoreAncestors clears the trash flag on every trashed folder above file.
// Only the ancestors themselves are restored, their other children stay put.
func restoreAncestors(ctx context.Context, repo files.Repository, file *models.File, userID string) error {
	restored := false
	seen := map[string]bool{file.ID: true}
	for cur := file; !cur.IsRoot(); {
		parentID := *cur.ParentID
		if seen[parentID] {
			return nil
		}
		seen[parentID] = true

		parent, err := repo.FindOwned(ctx, parentID, userID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if parent.IsTrash {
			if _, err := repo.Update(ctx, parent.ID, userID, models.FilePatch{IsTrash: &restored}); err != nil {
				return err
			}
		}
		cur = parent
	}
	return nil
}

// Delete removes an owned record and returns its last state. For files the
// blob is removed first on a best-effort basis; folders take their whole
// subtree with them.
func (s *FileService) Delete(ctx context.Context, userID, id string) (*models.File, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	repo := s.repomanager.Files(s.db)

	file, err := repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !file.IsFolder {
		s.removeBlob(ctx, file)
		return repo.Delete(ctx, id, userID)
	}

	tree, err := repo.Subtree(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	for _, f := range tree {
		if !f.IsFolder {
			s.removeBlob(ctx, f)
		}
	}

	var deleted *models.File
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := s.repomanager.Files(tx).DeleteSubtree(ctx, id, userID)
		if err != nil {
			return err
		}
		for _, f := range rows {
			if f.ID == id {
				deleted = f
			}
		}
		if deleted == nil {
			return common.ErrorNotFound
		}
		s.logger.Info(ctx, "folder deleted", "file_id", id, "user_id", userID, "records", len(rows))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// removeBlob resolves the blob id of file, looks the object up by name and
// deletes it by its store reference, falling back to the resolved id. All
// failures are logged and swallowed.
func (s *FileService) removeBlob(ctx context.Context, file *models.File) {
	blobID, ok := blobstore.ResolveID(file.FileURL, file.Path)
	if !ok {
		s.logger.Warn(ctx, "no blob id for file, skipping remote delete", "file_id", file.ID)
		return
	}

	ref := blobID
	found, err := s.blobs.ListFiles(ctx, blobID, 1)
	switch {
	case err != nil:
		s.logger.Warn(ctx, "blob search failed, deleting by id", "file_id", file.ID, "blob_id", blobID, "error", err)
	case len(found) > 0:
		ref = found[0].Ref
	}

	if err := s.blobs.DeleteFile(ctx, ref); err != nil {
		s.logger.Warn(ctx, "blob delete failed", "file_id", file.ID, "blob_ref", ref, "error", err)
	}
}

// EmptyTrash purges every trashed record of the user. Blobs of trashed files
// are deleted by their resolved id first, one by one; failures are logged
// and do not stop the purge. Returns common.ErrorEmptyResult when the trash
// holds nothing.
func (s *FileService) EmptyTrash(ctx context.Context, userID string) ([]*models.File, error) {
	repo := s.repomanager.Files(s.db)

	trashed, err := repo.ListTrashed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(trashed) == 0 {
		return nil, common.ErrorEmptyResult
	}

	for _, f := range trashed {
		if f.IsFolder {
			continue
		}
		blobID, ok := blobstore.ResolveID(f.FileURL, f.Path)
		if !ok {
			continue
		}
		if err := s.blobs.DeleteFile(ctx, blobID); err != nil {
			s.logger.Warn(ctx, "blob delete failed", "file_id", f.ID, "blob_id", blobID, "error", err)
		}
	}

	deleted, err := repo.DeleteTrashed(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "trash emptied", "user_id", userID, "records", len(deleted))
	return deleted, nil
}

// AllowedContentType reports whether a multipart upload may carry ct.
func AllowedContentType(ct string) bool {
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

// StorageName returns a collision-resistant blob name that keeps the
// extension of original.
func StorageName(original string) string {
	ext := strings.TrimPrefix(path.Ext(original), ".")
	if ext == "" {
		return uuid.NewString()
	}
	return uuid.NewString() + "." + ext
}

// Upload stores a multipart upload in the blob store under
// /droply/<user>/folder/<parent> and records it.
func (s *FileService) Upload(ctx context.Context, userID string, in UploadInput) (*models.File, error) {
	if in.DeclaredUserID == "" || in.DeclaredUserID != userID {
		return nil, common.ErrorUnauthorized
	}
	if in.Body == nil {
		return nil, fmt.Errorf("%w: file not found", common.ErrorValidation)
	}
	if in.ParentID == "" {
		return nil, fmt.Errorf("%w: parent folder not found", common.ErrorValidation)
	}
	if !AllowedContentType(in.ContentType) {
		return nil, fmt.Errorf("%w: file type not supported", common.ErrorValidation)
	}

	repo := s.repomanager.Files(s.db)

	if err := s.checkParentFolder(ctx, repo.FindOwned, in.ParentID, userID); err != nil {
		return nil, err
	}

	folder := path.Join(RootFolder, userID, "folder", in.ParentID)
	res, err := s.blobs.Upload(ctx, in.Body, in.Size, StorageName(in.FileName), folder, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	parentID := in.ParentID
	file, err := repo.Insert(ctx, &models.File{
		Name:         in.FileName,
		Path:         res.Path,
		Size:         in.Size,
		Type:         in.ContentType,
		FileURL:      res.URL,
		ThumbnailURL: res.ThumbnailURL,
		UserID:       userID,
		ParentID:     &parentID,
	})
	if err != nil {
		if delErr := s.blobs.DeleteFile(ctx, res.Path); delErr != nil {
			s.logger.Warn(ctx, "orphan blob left after failed insert", "blob_ref", res.Path, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info(ctx, "file uploaded", "file_id", file.ID, "user_id", userID, "size", file.Size)
	return file, nil
}

func (s *FileService) checkParentFolder(ctx context.Context,
	find func(ctx context.Context, id, userID string) (*models.File, error), parentID, userID string) error {
	if _, err := uuid.Parse(parentID); err != nil {
		return fmt.Errorf("%w: parent folder not found", common.ErrorValidation)
	}
	parent, err := find(ctx, parentID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: parent folder not found", common.ErrorValidation)
		}
		return err
	}
	if !parent.IsFolder {
		return fmt.Errorf("%w: parent folder not found", common.ErrorValidation)
	}
	return nil
}

// Register records a blob that the client uploaded directly to the store.
// The record is created at the root of the caller's tree.
func (s *FileService) Register(ctx context.Context, userID string, in RegisterInput) (*models.File, error) {
	if in.DeclaredUserID != userID {
		return nil, common.ErrorUnauthorized
	}
	if in.URL == "" {
		return nil, fmt.Errorf("%w: invalid upload data", common.ErrorValidation)
	}

	file := &models.File{
		Name:    valueOr(in.Name, "untitled"),
		Size:    in.Size,
		Type:    valueOr(in.FileType, "image"),
		FileURL: in.URL,
		UserID:  userID,
	}
	file.Path = valueOr(in.Path, path.Join(RootFolder, userID, file.Name))
	if in.ThumbnailURL != "" {
		thumb := in.ThumbnailURL
		file.ThumbnailURL = &thumb
	}

	created, err := s.repomanager.Files(s.db).Insert(ctx, file)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "file registered", "file_id", created.ID, "user_id", userID)
	return created, nil
}

// CreateFolder adds a folder at the root or inside an owned folder.
func (s *FileService) CreateFolder(ctx context.Context, userID string, in FolderInput) (*models.File, error) {
	if in.DeclaredUserID != userID {
		return nil, common.ErrorUnauthorized
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%w: invalid folder name", common.ErrorValidation)
	}

	folder := &models.File{
		Name:     name,
		Path:     path.Join(RootFolder, userID, name),
		Type:     models.FolderType,
		UserID:   userID,
		IsFolder: true,
	}

	var created *models.File
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)
		if in.ParentID != "" {
			if err := s.checkParentFolder(ctx, repo.FindOwned, in.ParentID, userID); err != nil {
				return err
			}
			parentID := in.ParentID
			folder.ParentID = &parentID
			folder.Path = path.Join(RootFolder, userID, "folder", parentID, name)
		}

		var err error
		created, err = repo.Insert(ctx, folder)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DownloadURL returns a temporary URL for the blob of an owned file.
func (s *FileService) DownloadURL(ctx context.Context, userID, id string) (string, error) {
	file, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if file.IsFolder {
		return "", fmt.Errorf("%w: folders cannot be downloaded", common.ErrorValidation)
	}
	return s.blobs.PresignGet(ctx, file.Path, s.presignTTL)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
