package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/droply/internal/common"
	"github.com/dmitrijs2005/droply/internal/server/models"
	"github.com/dmitrijs2005/droply/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// caller is only reached behind authenticate, so a missing id is a wiring bug.
func (s *HTTPServer) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return userID, ok
}

// routeFileID reads the fileId route parameter; chi matches an empty segment,
// so "/files//star" arrives here with no id.
func routeFileID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "fileId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "File ID is required")
		return "", false
	}
	return id, true
}

type deleteResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	DeletedFile *models.File `json:"deletedFile"`
}

type emptyTrashResponse struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	DeletedFiles []*models.File `json:"deletedFiles"`
}

type imageKitPayload struct {
	URL          string `json:"url"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	FileType     string `json:"fileType"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Path         string `json:"path"`
}

type registerRequest struct {
	ImageKit *imageKitPayload `json:"imageKit"`
	UserID   string           `json:"userId"`
}

type folderRequest struct {
	Name     string `json:"name"`
	UserID   string `json:"userId"`
	ParentID string `json:"parentId"`
}

// Health reports whether the database answers a ping.
func (s *HTTPServer) Health(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.logger.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ToggleStar handles PATCH /files/{fileId}/star.
func (s *HTTPServer) ToggleStar(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	id, ok := routeFileID(w, r)
	if !ok {
		return
	}

	file, err := s.files.ToggleStar(r.Context(), userID, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// ToggleTrash handles PATCH /files/{fileId}/trash.
func (s *HTTPServer) ToggleTrash(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	id, ok := routeFileID(w, r)
	if !ok {
		return
	}

	file, err := s.files.ToggleTrash(r.Context(), userID, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// Delete handles DELETE /files/{fileId}/delete.
func (s *HTTPServer) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	id, ok := routeFileID(w, r)
	if !ok {
		return
	}

	file, err := s.files.Delete(r.Context(), userID, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{
		Success:     true,
		Message:     "File deleted successfully",
		DeletedFile: file,
	})
}

// EmptyTrash purges the caller's trash; an empty trash is a 404.
func (s *HTTPServer) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	deleted, err := s.files.EmptyTrash(r.Context(), userID)
	if errors.Is(err, common.ErrorEmptyResult) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No trashed files found"})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, emptyTrashResponse{
		Success:      true,
		Message:      fmt.Sprintf("Successfully deleted %d files", len(deleted)),
		DeletedFiles: deleted,
	})
}

// Upload handles the multipart form of POST /files/upload.
func (s *HTTPServer) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	if s.opts.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in := services.UploadInput{
		DeclaredUserID: r.FormValue("userId"),
		ParentID:       r.FormValue("parentId"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	default:
		defer func(f multipart.File) { _ = f.Close() }(file)
		in.Body = file
		in.FileName = header.Filename
		in.Size = header.Size
		in.ContentType = header.Header.Get("Content-Type")
	}

	created, err := s.files.Upload(r.Context(), userID, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Register records a blob the client already uploaded (POST /upload).
func (s *HTTPServer) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req registerRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload data")
		return
	}

	in := services.RegisterInput{DeclaredUserID: req.UserID}
	if kit := req.ImageKit; kit != nil {
		in.URL = kit.URL
		in.Name = kit.Name
		in.Size = kit.Size
		in.FileType = kit.FileType
		in.ThumbnailURL = kit.ThumbnailURL
		in.Path = kit.Path
	}

	created, err := s.files.Register(r.Context(), userID, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CreateFolder handles POST /folders/create.
func (s *HTTPServer) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req folderRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.files.CreateFolder(r.Context(), userID, services.FolderInput{
		DeclaredUserID: req.UserID,
		Name:           req.Name,
		ParentID:       req.ParentID,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List returns one view of the caller's records.
func (s *HTTPServer) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	files, err := s.files.List(r.Context(), userID, models.View(q.Get("view")), q.Get("parentId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// Download returns a presigned URL for the file content.
func (s *HTTPServer) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	id, ok := routeFileID(w, r)
	if !ok {
		return
	}

	url, err := s.files.DownloadURL(r.Context(), userID, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func decodeJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(body, 1<<20))
	return dec.Decode(v)
}
