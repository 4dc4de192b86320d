// Package api exposes collection management and analysis over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"pdf-analyzer/internal/analyzer"
	"pdf-analyzer/internal/collection"
	"pdf-analyzer/internal/models"
)

const (
	serviceName    = "pdf-analysis-system"
	serviceVersion = "1.0.0"
	maxUploadSize  = 64 << 20
)

// RunLister reads the run history of a collection.
type RunLister interface {
	ListRuns(ctx context.Context, collection string, limit int) ([]models.Run, error)
}

// SectionSearcher finds indexed sections similar to a query.
type SectionSearcher interface {
	Search(ctx context.Context, query string, n int) ([]models.SectionHit, error)
}

// Server holds the HTTP handlers. Each request runs its own analysis; the
// analyzer carries no request state.
type Server struct {
	analyzer  *analyzer.Analyzer
	layout    collection.Layout
	basePath  string
	outputDir string
	runs      RunLister
	sections  SectionSearcher
	logger    zerolog.Logger
}

type Options struct {
	BasePath  string
	OutputDir string
	Layout    collection.Layout
	Runs      RunLister
	Sections  SectionSearcher
	Logger    zerolog.Logger
}

func NewServer(a *analyzer.Analyzer, opts Options) *Server {
	return &Server{
		analyzer:  a,
		layout:    opts.Layout,
		basePath:  opts.BasePath,
		outputDir: opts.OutputDir,
		runs:      opts.Runs,
		sections:  opts.Sections,
		logger:    opts.Logger,
	}
}

// Router builds the chi router with all endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleAPIInfo)
	r.Get("/api", s.handleAPIInfo)
	r.Get("/health", s.handleHealth)

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", s.handleListCollections)
		r.Post("/", s.handleCreateCollection)
		r.Get("/{name}", s.handleCollectionInfo)
		r.Post("/{name}/pdfs", s.handleUploadPDFs)
	})

	r.Post("/analyze", s.handleAnalyze)
	r.Post("/analyze-batch", s.handleAnalyzeBatch)
	r.Get("/results/{name}", s.handleResults)
	r.Get("/runs/{name}", s.handleRuns)
	r.Get("/sections/search", s.handleSearchSections)
	r.Get("/keywords", s.handleKeywords)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("Request handled")
		}()
		next.ServeHTTP(ww, r)
	})
}
