package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/droply/internal/common"
	"github.com/dmitrijs2005/droply/internal/dbx"
	"github.com/dmitrijs2005/droply/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, name, path, size, type, file_url, thumbnail_url, user_id, parent_id, ` +
	`is_folder, is_starred, is_trash, created_at, updated_at`

// subtreeCTE selects the ids of $1 and its descendants owned by $2.
const subtreeCTE = `WITH RECURSIVE tree AS (
		SELECT id FROM files WHERE id = $1 AND user_id = $2
		UNION ALL
		SELECT f.id FROM files f JOIN tree t ON f.parent_id = t.id WHERE f.user_id = $2
	)`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	f := &models.File{}
	err := s.Scan(&f.ID, &f.Name, &f.Path, &f.Size, &f.Type, &f.FileURL, &f.ThumbnailURL, &f.UserID, &f.ParentID,
		&f.IsFolder, &f.IsStarred, &f.IsTrash, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepository) queryFiles(ctx context.Context, query string, args ...any) ([]*models.File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.File, error) {
	f, err := scanFile(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// FindOwned returns the record only if both id and owner match.
func (r *PostgresRepository) FindOwned(ctx context.Context, id, userID string) (*models.File, error) {
	query := `SELECT ` + columns + ` FROM files WHERE id = $1 AND user_id = $2`
	return r.queryOne(ctx, query, id, userID)
}

// Insert validates the record and its parent, assigns an id when missing and
// stores it. Timestamps come from the database.
func (r *PostgresRepository) Insert(ctx context.Context, file *models.File) (*models.File, error) {
	if err := validate(file); err != nil {
		return nil, err
	}
	if file.ParentID != nil {
		if err := r.checkParent(ctx, *file.ParentID, file.UserID); err != nil {
			return nil, err
		}
	}
	if file.ID == "" {
		file.ID = uuid.NewString()
	}

	query := `
		INSERT INTO files (id, name, path, size, type, file_url, thumbnail_url, user_id, parent_id,
			is_folder, is_starred, is_trash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		file.ID, file.Name, file.Path, file.Size, file.Type, file.FileURL, file.ThumbnailURL, file.UserID, file.ParentID,
		file.IsFolder, file.IsStarred, file.IsTrash).Scan(&file.CreatedAt, &file.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) checkParent(ctx context.Context, parentID, userID string) error {
	if _, err := uuid.Parse(parentID); err != nil {
		return fmt.Errorf("%w: parent folder not found", common.ErrorValidation)
	}

	var isFolder bool
	query := `SELECT is_folder FROM files WHERE id = $1 AND user_id = $2`
	if err := r.db.QueryRowContext(ctx, query, parentID, userID).Scan(&isFolder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: parent folder not found", common.ErrorValidation)
		}
		return fmt.Errorf("db error: %w", err)
	}
	if !isFolder {
		return fmt.Errorf("%w: parent is not a folder", common.ErrorValidation)
	}
	return nil
}

func validate(f *models.File) error {
	var missing []string
	if f.Name == "" {
		missing = append(missing, "name")
	}
	if f.Path == "" {
		missing = append(missing, "path")
	}
	if f.Type == "" {
		missing = append(missing, "type")
	}
	if f.UserID == "" {
		missing = append(missing, "userId")
	}
	if !f.IsFolder && f.FileURL == "" {
		missing = append(missing, "fileUrl")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", common.ErrorValidation, strings.Join(missing, ", "))
	}
	if f.Size < 0 {
		return fmt.Errorf("%w: negative size", common.ErrorValidation)
	}
	return nil
}

// Update applies the non-nil fields of patch to an owned record.
func (r *PostgresRepository) Update(ctx context.Context, id, userID string, patch models.FilePatch) (*models.File, error) {
	query := `
		UPDATE files SET
			name = COALESCE($3, name),
			is_starred = COALESCE($4, is_starred),
			is_trash = COALESCE($5, is_trash),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + columns
	return r.queryOne(ctx, query, id, userID, patch.Name, patch.IsStarred, patch.IsTrash)
}

// Delete removes an owned record and returns its last state.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) (*models.File, error) {
	query := `DELETE FROM files WHERE id = $1 AND user_id = $2 RETURNING ` + columns
	return r.queryOne(ctx, query, id, userID)
}

// List returns the records of one view. Trashed records only show up in
// the trash view.
func (r *PostgresRepository) List(ctx context.Context, userID string, filter models.ListFilter) ([]*models.File, error) {
	switch filter.View {
	case models.ViewStarred:
		query := `SELECT ` + columns + ` FROM files
			WHERE user_id = $1 AND is_starred AND NOT is_trash
			ORDER BY is_folder DESC, name`
		return r.queryFiles(ctx, query, userID)
	case models.ViewTrash:
		return r.ListTrashed(ctx, userID)
	case models.ViewTree:
		if filter.ParentID == nil {
			query := `SELECT ` + columns + ` FROM files
				WHERE user_id = $1 AND parent_id IS NULL AND NOT is_trash
				ORDER BY is_folder DESC, name`
			return r.queryFiles(ctx, query, userID)
		}
		query := `SELECT ` + columns + ` FROM files
			WHERE user_id = $1 AND parent_id = $2 AND NOT is_trash
			ORDER BY is_folder DESC, name`
		return r.queryFiles(ctx, query, userID, *filter.ParentID)
	default:
		return nil, fmt.Errorf("%w: unknown view %q", common.ErrorValidation, filter.View)
	}
}

// ListTrashed returns every trashed record of the user.
func (r *PostgresRepository) ListTrashed(ctx context.Context, userID string) ([]*models.File, error) {
	query := `SELECT ` + columns + ` FROM files WHERE user_id = $1 AND is_trash ORDER BY created_at`
	return r.queryFiles(ctx, query, userID)
}

// DeleteTrashed removes every trashed record of the user in one statement.
func (r *PostgresRepository) DeleteTrashed(ctx context.Context, userID string) ([]*models.File, error) {
	query := `DELETE FROM files WHERE user_id = $1 AND is_trash RETURNING ` + columns
	return r.queryFiles(ctx, query, userID)
}

func (r *PostgresRepository) Subtree(ctx context.Context, id, userID string) ([]*models.File, error) {
	query := subtreeCTE + `
		SELECT ` + columns + ` FROM files
		WHERE user_id = $2 AND id IN (SELECT id FROM tree)
		ORDER BY (id = $1) DESC, created_at`
	return r.queryFiles(ctx, query, id, userID)
}

// DeleteSubtree removes a record and all of its descendants.
func (r *PostgresRepository) DeleteSubtree(ctx context.Context, id, userID string) ([]*models.File, error) {
	query := subtreeCTE + `
		DELETE FROM files
		WHERE user_id = $2 AND id IN (SELECT id FROM tree)
		RETURNING ` + columns
	return r.queryFiles(ctx, query, id, userID)
}

// SetTrashSubtree sets is_trash on a record and all of its descendants.
func (r *PostgresRepository) SetTrashSubtree(ctx context.Context, id, userID string, trash bool) ([]*models.File, error) {
	query := subtreeCTE + `
		UPDATE files SET is_trash = $3, updated_at = now()
		WHERE user_id = $2 AND id IN (SELECT id FROM tree)
		RETURNING ` + columns
	return r.queryFiles(ctx, query, id, userID, trash)
}
