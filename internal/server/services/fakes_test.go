package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/droply/internal/common"
	"github.com/dmitrijs2005/droply/internal/dbx"
	"github.com/dmitrijs2005/droply/internal/server/blobstore"
	"github.com/dmitrijs2005/droply/internal/server/models"
	"github.com/dmitrijs2005/droply/internal/server/repositories/files"
	"github.com/google/uuid"
)

// ---- repository fake ----

// memRepo is an in-memory files.Repository with the same ownership and
// parent rules as the PostgreSQL one.
type memRepo struct {
	files.Repository

	mu    sync.Mutex
	rows  map[string]*models.File
	seq   int
	fails map[string]error
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]*models.File{}, fails: map[string]error{}}
}

func clone(f *models.File) *models.File {
	c := *f
	return &c
}

// put stores a record directly, bypassing validation.
func (r *memRepo) put(f *models.File) *models.File {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	r.seq++
	f.CreatedAt = time.Unix(int64(r.seq), 0)
	f.UpdatedAt = f.CreatedAt
	r.rows[f.ID] = clone(f)
	return clone(f)
}

func (r *memRepo) owned(id, userID string) (*models.File, error) {
	f, ok := r.rows[id]
	if !ok || f.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

func (r *memRepo) FindOwned(ctx context.Context, id, userID string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fails["FindOwned"]; err != nil {
		return nil, err
	}
	f, err := r.owned(id, userID)
	if err != nil {
		return nil, err
	}
	return clone(f), nil
}

func (r *memRepo) Insert(ctx context.Context, file *models.File) (*models.File, error) {
	if err := r.fails["Insert"]; err != nil {
		return nil, err
	}
	if file.ParentID != nil {
		r.mu.Lock()
		p, err := r.owned(*file.ParentID, file.UserID)
		r.mu.Unlock()
		if err != nil || !p.IsFolder {
			return nil, common.ErrorValidation
		}
	}
	return r.put(clone(file)), nil
}

func (r *memRepo) Update(ctx context.Context, id, userID string, patch models.FilePatch) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.owned(id, userID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.IsStarred != nil {
		f.IsStarred = *patch.IsStarred
	}
	if patch.IsTrash != nil {
		f.IsTrash = *patch.IsTrash
	}
	return clone(f), nil
}

func (r *memRepo) Delete(ctx context.Context, id, userID string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fails["Delete"]; err != nil {
		return nil, err
	}
	f, err := r.owned(id, userID)
	if err != nil {
		return nil, err
	}
	r.remove(id)
	return clone(f), nil
}

// remove deletes a row and detaches its children.
func (r *memRepo) remove(id string) {
	delete(r.rows, id)
	for _, c := range r.rows {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
		}
	}
}

func (r *memRepo) sorted(keep func(*models.File) bool) []*models.File {
	out := []*models.File{}
	for _, f := range r.rows {
		if keep(f) {
			out = append(out, clone(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *memRepo) List(ctx context.Context, userID string, filter models.ListFilter) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(f *models.File) bool {
		if f.UserID != userID {
			return false
		}
		switch filter.View {
		case models.ViewTrash:
			return f.IsTrash
		case models.ViewStarred:
			return f.IsStarred && !f.IsTrash
		}
		if f.IsTrash {
			return false
		}
		if filter.ParentID == nil {
			return f.ParentID == nil
		}
		return f.ParentID != nil && *f.ParentID == *filter.ParentID
	}), nil
}

func (r *memRepo) ListTrashed(ctx context.Context, userID string) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fails["ListTrashed"]; err != nil {
		return nil, err
	}
	return r.sorted(func(f *models.File) bool { return f.UserID == userID && f.IsTrash }), nil
}

func (r *memRepo) DeleteTrashed(ctx context.Context, userID string) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sorted(func(f *models.File) bool { return f.UserID == userID && f.IsTrash })
	for _, f := range out {
		r.remove(f.ID)
	}
	return out, nil
}

func (r *memRepo) subtree(id, userID string) []*models.File {
	root, err := r.owned(id, userID)
	if err != nil {
		return []*models.File{}
	}
	out := []*models.File{clone(root)}
	for i := 0; i < len(out); i++ {
		parent := out[i].ID
		out = append(out, r.sorted(func(f *models.File) bool {
			return f.UserID == userID && f.ParentID != nil && *f.ParentID == parent
		})...)
	}
	return out
}

func (r *memRepo) Subtree(ctx context.Context, id, userID string) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subtree(id, userID), nil
}

func (r *memRepo) DeleteSubtree(ctx context.Context, id, userID string) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.subtree(id, userID)
	for _, f := range out {
		delete(r.rows, f.ID)
	}
	return out, nil
}

func (r *memRepo) SetTrashSubtree(ctx context.Context, id, userID string, trash bool) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.subtree(id, userID)
	for _, f := range out {
		r.rows[f.ID].IsTrash = trash
		f.IsTrash = trash
	}
	return out, nil
}

// ---- repository manager fake ----

type fakeManager struct {
	repo *memRepo
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Files(dbx.DBTX) files.Repository            { return m.repo }

// ---- blob store fake ----

type uploadCall struct {
	name, folder, contentType string
	size                      int64
	body                      string
}

type fakeStore struct {
	mu sync.Mutex

	// objects maps a searchable name to the store's reference.
	objects   map[string]string
	listErr   error
	deleteErr map[string]error
	uploadErr error

	lists   []string
	deletes []string
	uploads []uploadCall
	presign []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}, deleteErr: map[string]error{}}
}

func (s *fakeStore) Upload(ctx context.Context, body io.Reader, size int64, name, folder, contentType string) (*blobstore.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	s.uploads = append(s.uploads, uploadCall{name: name, folder: folder, contentType: contentType, size: size, body: string(b)})
	p := folder + "/" + name
	return &blobstore.UploadResult{URL: "https://cdn.test" + p, Path: p}, nil
}

func (s *fakeStore) ListFiles(ctx context.Context, name string, limit int) ([]blobstore.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, name)
	if s.listErr != nil {
		return nil, s.listErr
	}
	if ref, ok := s.objects[name]; ok {
		return []blobstore.Object{{Ref: ref, Name: name}}, nil
	}
	return nil, nil
}

func (s *fakeStore) DeleteFile(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, ref)
	return s.deleteErr[ref]
}

func (s *fakeStore) PresignGet(ctx context.Context, p string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presign = append(s.presign, p)
	return "https://signed.test" + p + "?ttl=" + ttl.String(), nil
}

var errBoom = errors.New("boom")
