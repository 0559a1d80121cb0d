package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/ondcsearch/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID reuses a caller-supplied X-Request-ID or generates a UUID, and stores
// it where chi's middleware.GetReqID finds it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), chiMiddleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// JSONRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func JSONRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEvent collects fields that handlers add to the request's canonical log line.
type wideEvent struct {
	mu     sync.Mutex
	fields []zap.Field
}

type wideEventKey struct{}

// annotate adds fields to the canonical log line of the current request.
func annotate(ctx context.Context, fields ...zap.Field) {
	ev, ok := ctx.Value(wideEventKey{}).(*wideEvent)
	if !ok {
		return
	}
	ev.mu.Lock()
	ev.fields = append(ev.fields, fields...)
	ev.mu.Unlock()
}

// WideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func WideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set(requestIDHeader, requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ev := &wideEvent{}
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)
			ctx = context.WithValue(ctx, wideEventKey{}, ev)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			ev.mu.Lock()
			fields = append(fields, ev.fields...)
			ev.mu.Unlock()

			reqLogger.Info("http_request", fields...)
		})
	}
}
