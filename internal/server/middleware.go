package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farhapartex/metasearch/internal/metrics"
)

type contextKey string

const requestIDKey contextKey = "request_id"

const requestIDHeader = "X-Request-ID"

// withRequestID tags every request with an ID, minting one when the client
// did not send its own. The ID is echoed back in the response header.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the ID tagged by withRequestID, or "" outside it.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// withObservability logs each served request and records its duration.
func withObservability(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			elapsed := time.Since(started)
			metrics.HTTPRequestDuration.
				WithLabelValues(routeLabel(r.URL.Path), strconv.Itoa(recorder.status)).
				Observe(elapsed.Seconds())

			log.Info("request served",
				zap.String("request_id", RequestIDFrom(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.status),
				zap.Duration("duration", elapsed),
			)
		})
	}
}

// statusRecorder captures the status code written by downstream handlers
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// routeLabel buckets paths into a fixed set so the duration metric keeps
// bounded label cardinality no matter what clients request.
func routeLabel(path string) string {
	switch {
	case path == "/":
		return "index"
	case path == "/search":
		return "search"
	case path == "/about":
		return "about"
	case path == "/settings":
		return "settings"
	case path == "/robots.txt":
		return "robots"
	case path == "/healthz":
		return "health"
	case strings.HasPrefix(path, "/static/"):
		return "static"
	default:
		return "other"
	}
}

// chain wraps a handler with middleware, first argument outermost.
func chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
