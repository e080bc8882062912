package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mergington/activities/pkg/logger"
)

// RouterOptions configures the shared middleware stack.
type RouterOptions struct {
	// AllowedOrigins lists CORS origins. Empty disables CORS headers.
	AllowedOrigins []string

	// Logger receives one line per request. Nil uses the global logger.
	Logger logger.Logger
}

// NewRouter creates the top-level router with the middleware every route
// shares. Route groups register themselves on the result.
func NewRouter(opts RouterOptions) *chi.Mux {
	l := opts.Logger
	if l == nil {
		l = logger.Get().Named("http")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(l))
	r.Use(middleware.Recoverer)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Not Found", Code: "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "Method Not Allowed", Code: "method_not_allowed"})
	})
	return r
}
