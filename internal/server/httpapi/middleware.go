package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fundingintake/internal/server/metrics"
)

type contextKey string

const (
	reviewerContextKey  contextKey = "reviewer"
	requestIDContextKey contextKey = "requestID"
)

const requestIDHeader = "X-Request-ID"

func (r *Router) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(req.Context(), requestIDContextKey, id)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// requestLogger logs method, route and status only. Bodies carry card data
// and are never logged.
func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := req.URL.Path
		if rctx := chi.RouteContext(req.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		metrics.RequestDuration.WithLabelValues(req.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		r.logger.Info("request",
			zap.String("request_id", getRequestID(req.Context())),
			zap.String("method", req.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
		)
	})
}

func (r *Router) reviewerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		authz := req.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		token := strings.TrimPrefix(authz, "Bearer ")
		reviewer, err := r.services.Reviewers.ParseToken(req.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(req.Context(), reviewerContextKey, reviewer)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func getReviewer(ctx context.Context) string {
	if v, ok := ctx.Value(reviewerContextKey).(string); ok {
		return v
	}
	return ""
}

func getRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDContextKey).(string); ok {
		return v
	}
	return ""
}
