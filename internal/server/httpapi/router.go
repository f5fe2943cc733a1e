package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fundingintake/internal/server/service"
	"fundingintake/internal/shared/logging"
	"fundingintake/internal/shared/models"
)

// Options tunes the router.
type Options struct {
	// MaxRequestBytes caps request bodies. Zero disables the cap.
	MaxRequestBytes int64
	// RequireReviewerToken gates the submission listing behind a reviewer
	// session token.
	RequireReviewerToken bool
}

type Router struct {
	services *service.Services
	logger   *zap.Logger
	opts     Options
}

func NewRouter(services *service.Services, logger *zap.Logger, opts Options) http.Handler {
	r := &Router{services: services, logger: logging.OrNop(logger).Named("http"), opts: opts}
	mux := chi.NewRouter()
	mux.Use(r.requestID)
	mux.Use(middleware.RealIP)
	mux.Use(r.requestLogger)
	mux.Use(middleware.Recoverer)

	mux.Get("/health", r.handleHealth)
	mux.Get("/openapi.yaml", r.handleSwagger)
	mux.Method(http.MethodGet, "/metrics", promhttp.Handler())

	mux.Post("/api/submit-form", r.handleSubmitApplication)
	mux.Post("/api/reviewer/login", r.handleReviewerLogin)

	mux.Group(func(pr chi.Router) {
		if opts.RequireReviewerToken {
			pr.Use(r.reviewerMiddleware)
		}
		pr.Get("/api/submit-form", r.handleListApplications)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
