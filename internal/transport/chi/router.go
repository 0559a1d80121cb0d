package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/metrics"
	"github.com/kailas-cloud/ondcsearch/internal/transport/wire"
)

// NewRouter mounts the API routes behind the standard middleware stack.
func NewRouter(s *Server, apiKeys []string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gochi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r gochi.Router) {
		r.Post("/search", s.Search)
		r.Post("/search/advanced", s.AdvancedSearch)
		r.Get("/categories", s.Categories)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, wire.ErrorResponseCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, wire.ErrorResponseCodeBadRequest, "method not allowed")
	})

	return r
}
