// Package api implements the Shelf Vision HTTP API.
//
// The API exposes the layout pipeline over HTTP for the ShelvesAI backend
// and mobile client:
//
//	POST /v1/layout                  compute a layout from an inline payload
//	GET  /v1/shelves/{id}/layout     layout for a stored or backend shelf
//	POST /v1/shelves/{id}/refresh    recompute, bypassing caches
//	GET  /healthz                    liveness probe
//
// Layouts computed for a shelf are persisted to the store, so subsequent
// reads are served without recomputation until the shelf changes.
package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/backend"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/pipeline"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/store"
)

// Server is the HTTP API server. Construct with [New] and mount it as an
// http.Handler.
type Server struct {
	router  chi.Router
	runner  *pipeline.Runner
	store   store.Store
	backend *backend.Client
	logger  *log.Logger
}

// Options configures a [Server].
type Options struct {
	// Runner executes the layout pipeline. Required.
	Runner *pipeline.Runner

	// Store persists shelves and their layouts. Required.
	Store store.Store

	// Backend fetches shelves that aren't in the store. Optional: without
	// it, unknown shelf IDs are 404s.
	Backend *backend.Client

	// Logger receives request and error logs. Defaults to log.Default().
	Logger *log.Logger
}

// New creates the API server and mounts its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		runner:  opts.Runner,
		store:   opts.Store,
		backend: opts.Backend,
		logger:  opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleComputeLayout)
		r.Route("/shelves/{shelfID}", func(r chi.Router) {
			r.Get("/layout", s.handleShelfLayout)
			r.Post("/refresh", s.handleShelfRefresh)
		})
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
