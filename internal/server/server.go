// Package server exposes the relgraph pipeline over HTTP.
//
// A client uploads an XML document, which starts a session holding the
// pristine source and the extracted records. The session can then be laid
// out, inspected, edited record by record, exported and downloaded as the
// patched document:
//
//	POST   /documents                          multipart upload ("file")
//	GET    /documents/{id}                     graph JSON
//	DELETE /documents/{id}
//	GET    /documents/{id}/layout?direction=LR layout JSON
//	GET    /documents/{id}/records/{recordID}  record plus neighbours
//	PUT    /documents/{id}/records/{recordID}  replace attributes/children
//	GET    /documents/{id}/export.{dot,svg}
//	GET    /documents/{id}/download            updated.xml
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/session"
	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// DefaultCleanupInterval is how often expired sessions are swept.
const DefaultCleanupInterval = time.Minute

// uploadOverhead allows for multipart framing on top of the document limit.
const uploadOverhead = 64 << 10

// Server routes HTTP requests to the pipeline and the session store.
type Server struct {
	router chi.Router
	store  session.Store
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger
	locks  *sessionLocks
}

// New creates a Server. opts supplies the load and layout defaults; a nil
// logger discards output.
func New(store session.Store, runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		store:  store,
		runner: runner,
		opts:   opts,
		logger: logger,
		locks:  newSessionLocks(),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Delete("/", s.handleDeleteDocument)
			r.Get("/layout", s.handleLayout)
			r.Get("/records/{recordID}", s.handleGetRecord)
			r.Put("/records/{recordID}", s.handleUpdateRecord)
			r.Get("/export.{format}", s.handleExport)
			r.Get("/download", s.handleDownload)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr and sweeps expired sessions until ctx is canceled,
// then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context, addr string, cleanupInterval time.Duration) error {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return session.RunCleanup(ctx, s.store, cleanupInterval,
			func(n int) { s.logger.Debug("expired sessions removed", "count", n) },
			func(err error) { s.logger.Warn("session cleanup failed", "err", err) })
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// maxUpload is the document size limit; negative disables it.
func (s *Server) maxUpload() int64 {
	if s.opts.MaxSize == 0 {
		return xmldoc.DefaultMaxSize
	}
	return s.opts.MaxSize
}
