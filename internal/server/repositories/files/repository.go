package files

import (
	"context"

	"github.com/dmitrijs2005/droply/internal/server/models"
)

// Repository is the ownership-scoped access layer over the files table.
// Every lookup takes the caller's user id; records owned by someone else
// are reported exactly like missing ones, with common.ErrorNotFound.
type Repository interface {
	FindOwned(ctx context.Context, id, userID string) (*models.File, error)
	Insert(ctx context.Context, file *models.File) (*models.File, error)
	Update(ctx context.Context, id, userID string, patch models.FilePatch) (*models.File, error)
	Delete(ctx context.Context, id, userID string) (*models.File, error)
	List(ctx context.Context, userID string, filter models.ListFilter) ([]*models.File, error)
	ListTrashed(ctx context.Context, userID string) ([]*models.File, error)
	DeleteTrashed(ctx context.Context, userID string) ([]*models.File, error)

	// Subtree returns the record with the given id and all of its
	// descendants, root first.
	Subtree(ctx context.Context, id, userID string) ([]*models.File, error)
	DeleteSubtree(ctx context.Context, id, userID string) ([]*models.File, error)
	SetTrashSubtree(ctx context.Context, id, userID string, trash bool) ([]*models.File, error)
}
