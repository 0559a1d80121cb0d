package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/category"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/response"
	"github.com/kailas-cloud/ondcsearch/internal/transport/wire"
	healthuc "github.com/kailas-cloud/ondcsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/ondcsearch/internal/usecase/search"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Searcher runs product searches.
type Searcher interface {
	Search(ctx context.Context, p request.Params) (response.Response, error)
	AdvancedSearch(ctx context.Context, p searchuc.AdvancedParams) (response.Response, error)
	BrowseCategories(ctx context.Context) category.Listing
}

// HealthChecker reports backend health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the search HTTP API.
type Server struct {
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler(domain.ErrInvalidQuery),
		validationHandler(domain.ErrInvalidLimit),
		validationHandler(domain.ErrInvalidPage),
		validationHandler(domain.ErrInvalidThreshold),
		validationHandler(domain.ErrInvalidFilter),
	}
	return s
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req wire.SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := s.search.Search(r.Context(), req.Params())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	annotateSearch(r.Context(), &resp)
	writeJSON(w, http.StatusOK, wire.FromResponse(&resp))
}

// AdvancedSearch handles POST /v1/search/advanced.
func (s *Server) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	var req wire.AdvancedSearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := s.search.AdvancedSearch(r.Context(), req.Params())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	annotateSearch(r.Context(), &resp)
	writeJSON(w, http.StatusOK, wire.FromResponse(&resp))
}

// Categories handles GET /v1/categories.
func (s *Server) Categories(w http.ResponseWriter, r *http.Request) {
	listing := s.search.BrowseCategories(r.Context())
	annotate(r.Context(), zap.Int("categories", len(listing.Categories)))
	writeJSON(w, http.StatusOK, wire.FromListing(&listing))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, wire.HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func annotateSearch(ctx context.Context, resp *response.Response) {
	annotate(ctx,
		zap.String("search_type", resp.SearchType.String()),
		zap.Int("results", len(resp.Results)),
		zap.Int("total_results", resp.TotalResults),
		zap.String("fallback", string(resp.Fallback)),
	)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, wire.ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code wire.ErrorResponseCode, message string) {
	writeJSON(w, status, wire.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// validationHandler maps a contract-violation sentinel to 400. Validation
// messages are built from caller input only and are returned as-is.
func validationHandler(sentinel error) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, http.StatusBadRequest, wire.ErrorResponseCodeValidationFailed, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			annotate(r.Context(), zap.String("validation_error", err.Error()))
			return
		}
	}
	s.logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, wire.ErrorResponseCodeInternalError, "internal error")
}
