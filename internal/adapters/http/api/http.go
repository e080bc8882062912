// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/mergington/activities/pkg/logger"
)

const defaultMaxChangeLimit = 100

// Dependencies required by HTTP handlers. Each handler depends only on the
// narrow interface it uses; the bundle is what the service satisfies.
type Dependencies interface {
	ActivityLister
	RosterEditor
	ChangeFeed
	StatsProvider
}

// Server wires HTTP routes for the activities API.
type Server struct {
	activitiesHandler *ActivitiesHandler
	rosterHandler     *RosterHandler
	changesHandler    *ChangesHandler
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxChangeLimit int
	logger         logger.Logger
}

// WithMaxChangeLimit caps the limit accepted by GET /activities/changes.
func WithMaxChangeLimit(limit int) Option {
	return func(o *serverOptions) {
		if limit > 0 {
			o.maxChangeLimit = limit
		}
	}
}

// WithLogger sets the logger handlers report server errors to.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{maxChangeLimit: defaultMaxChangeLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("api")
	}

	return &Server{
		activitiesHandler: NewActivitiesHandler(deps, o.logger),
		rosterHandler:     NewRosterHandler(deps, o.logger),
		changesHandler:    NewChangesHandler(deps, o.maxChangeLimit),
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps, o.logger),
	}
}

// Register attaches all API routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/activities", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.activitiesHandler.HandleList, "activities"))
		r.Get("/changes", MetricsMiddleware(s.changesHandler.HandleGetChanges, "changes"))
		r.Post("/{name}/signup", MetricsMiddleware(s.rosterHandler.HandleSignup, "signup"))
		r.Post("/{name}/unregister", MetricsMiddleware(s.rosterHandler.HandleUnregister, "unregister"))
	})
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	p := problemFor(err)
	writeJSON(w, p.status, errorResponse{Detail: p.detail, Code: p.code})
}

// activityName returns the decoded {name} path parameter. chi matches on the
// raw path when the request carries escaped slashes, so decode in that case.
func activityName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}
