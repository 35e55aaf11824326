package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/lexdraft/lexdraft/internal/common"
	"github.com/lexdraft/lexdraft/internal/draft"
	"github.com/lexdraft/lexdraft/internal/match"
	"github.com/lexdraft/lexdraft/internal/template"
)

// Config controls upload handling for the API server.
type Config struct {
	UploadRoot    string
	MaxUploadSize int64
}

// DefaultConfig returns the standard configuration used when no overrides
// are provided.
func DefaultConfig() Config {
	return Config{
		UploadRoot:    filepath.Join(os.TempDir(), "lexdraft_uploads"),
		MaxUploadSize: 10 << 20,
	}
}

// Merge overlays non-empty override fields onto the base configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.UploadRoot) != "" {
		result.UploadRoot = strings.TrimSpace(override.UploadRoot)
	}
	if override.MaxUploadSize > 0 {
		result.MaxUploadSize = override.MaxUploadSize
	}
	return result
}

// Server exposes the matching-and-drafting pipeline over HTTP. All domain
// decisions live in the services; handlers validate input and translate
// sentinel errors to status codes.
type Server struct {
	router    chi.Router
	ingestor  *template.Ingestor
	templates template.Store
	matcher   *match.Service
	drafts    *draft.Service
	cfg       Config
}

func NewServer(ingestor *template.Ingestor, templates template.Store, matcher *match.Service, drafts *draft.Service, cfg *Config) *Server {
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	s := &Server{
		router:    chi.NewRouter(),
		ingestor:  ingestor,
		templates: templates,
		matcher:   matcher,
		drafts:    drafts,
		cfg:       configuration,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Post("/v1/templates/upload", s.handleTemplateUpload)
	s.router.Get("/v1/templates", s.handleTemplateList)
	s.router.Get("/v1/templates/{templateID}", s.handleTemplateGet)
	s.router.Get("/v1/templates/{templateID}/variables/csv", s.handleTemplateVariablesCSV)
	s.router.Get("/v1/templates/{templateID}/export", s.handleTemplateExport)
	s.router.Post("/v1/draft/match", s.handleMatch)
	s.router.Post("/v1/draft/instance", s.handleInstanceCreate)
	s.router.Post("/v1/draft/answers", s.handleAnswersUpdate)
	s.router.Post("/v1/draft/generate", s.handleGenerate)
	s.router.Get("/v1/draft/{instanceID}", s.handleInstanceGet)
	s.router.Get("/v1/draft/{instanceID}/export/markdown", s.handleDraftMarkdown)
	s.router.Get("/v1/draft/{instanceID}/export/artifact", s.handleDraftArtifact)
}
