// Package httpapi exposes the file service over HTTP with a chi router.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/droply/internal/logging"
	"github.com/dmitrijs2005/droply/internal/server/models"
	"github.com/dmitrijs2005/droply/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type fileService interface {
	ToggleStar(ctx context.Context, userID, id string) (*models.File, error)
	ToggleTrash(ctx context.Context, userID, id string) (*models.File, error)
	Delete(ctx context.Context, userID, id string) (*models.File, error)
	EmptyTrash(ctx context.Context, userID string) ([]*models.File, error)
	Upload(ctx context.Context, userID string, in services.UploadInput) (*models.File, error)
	Register(ctx context.Context, userID string, in services.RegisterInput) (*models.File, error)
	CreateFolder(ctx context.Context, userID string, in services.FolderInput) (*models.File, error)
	List(ctx context.Context, userID string, view models.View, parentID string) ([]*models.File, error)
	DownloadURL(ctx context.Context, userID, id string) (string, error)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// Options tune the HTTP server.
type Options struct {
	MaxUploadSize   int64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// HTTPServer serves the file API over HTTP.
type HTTPServer struct {
	address   string
	files     fileService
	db        pinger
	logger    logging.Logger
	jwtSecret []byte
	opts      Options
}

// NewHTTPServer constructs an HTTPServer; zero timeouts in opts get defaults.
func NewHTTPServer(a string, l logging.Logger, fs fileService, db pinger, secretKey string, opts Options) *HTTPServer {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = time.Minute
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		files:     fs,
		db:        db,
		jwtSecret: []byte(secretKey),
		opts:      opts,
	}
}

// Router builds the route table.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/health", s.Health)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/upload", s.Register)
		r.Post("/folders/create", s.CreateFolder)

		r.Route("/files", func(r chi.Router) {
			r.Get("/", s.List)
			r.Post("/upload", s.Upload)
			r.Delete("/empty-trash", s.EmptyTrash)

			r.Route("/{fileId}", func(r chi.Router) {
				r.Patch("/star", s.ToggleStar)
				r.Patch("/trash", s.ToggleTrash)
				r.Delete("/delete", s.Delete)
				r.Get("/download", s.Download)
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
