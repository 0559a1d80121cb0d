package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = chiMiddleware.GetReqID(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("request id %q is not a UUID: %v", seen, err)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = chiMiddleware.GetReqID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-Request-ID", "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "abc-123" {
		t.Errorf("request id = %q", seen)
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestWideEventMiddleware_OneLineWithAnnotations(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mw := WideEventMiddleware(zap.New(core))

	h := RequestID(mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		annotate(r.Context(), zap.String("search_type", "vector"))
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/search", http.NoBody))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["search_type"] != "vector" || fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("fields = %v", fields)
	}
	if fields["request_id"] == "" || fields["request_id"] != rr.Header().Get("X-Request-ID") {
		t.Errorf("request_id = %v, header = %q", fields["request_id"], rr.Header().Get("X-Request-ID"))
	}
}
