// Package api exposes the mock MindDump REST surface over chi.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/systemshift/minddump/internal/logger"
	"github.com/systemshift/minddump/internal/server/concepts"
	"github.com/systemshift/minddump/internal/server/folders"
	"github.com/systemshift/minddump/internal/server/notes"
	"github.com/systemshift/minddump/internal/server/settings"
	"github.com/systemshift/minddump/internal/server/store"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Prefix is the mount point of the versioned API.
const Prefix = "/api/v1"

// Server holds the HTTP server dependencies
type Server struct {
	notes    *notes.Manager
	folders  *folders.Manager
	concepts *concepts.Lookup
	settings *settings.Manager
	log      zerolog.Logger
	now      func() time.Time
}

// New creates the API server on top of a store.
func New(s *store.Store, log zerolog.Logger) *Server {
	return &Server{
		notes:    notes.NewManager(s, log),
		folders:  folders.NewManager(s, log),
		concepts: concepts.NewLookup(s),
		settings: settings.NewManager(s, log),
		log:      log.With().Str("component", "api").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Routes builds the router with middleware and every endpoint mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(s.log))
	r.Use(s.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(s.routeNotFound)
	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/", s.Root)
	r.Get("/health", s.Health)

	r.Route(Prefix, func(r chi.Router) {
		r.Route("/notes", func(r chi.Router) {
			r.Get("/", s.ListNotes)
			r.Post("/", s.CreateNote)
			r.Get("/{id}", s.GetNote)
			r.Put("/{id}", s.UpdateNote)
			r.Delete("/{id}", s.DeleteNote)
			r.Post("/{id}/prioritize", s.PrioritizeNote)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Get("/", s.ListFolders)
			r.Post("/", s.CreateFolder)
			r.Get("/tree", s.FolderTree)
			r.Get("/{id}", s.GetFolder)
			r.Put("/{id}", s.UpdateFolder)
			r.Delete("/{id}", s.DeleteFolder)
		})

		r.Get("/concepts", s.ListConcepts)
		r.Get("/concepts/{id}", s.GetConcept)

		r.Route("/users/me/settings", func(r chi.Router) {
			r.Get("/", s.GetSettings)
			r.Post("/", s.CreateSettings)
			r.Put("/", s.UpdateSettings)
			r.Delete("/", s.DeleteSettings)
		})
	})

	return r
}

// Root handles GET /
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     "MindDump Mock API",
		"version":  Version,
		"api_base": Prefix,
		"endpoints": map[string]string{
			"notes":    Prefix + "/notes",
			"folders":  Prefix + "/folders",
			"concepts": Prefix + "/concepts",
			"settings": Prefix + "/users/me/settings",
		},
	})
}

// Health handles GET /health
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
