// Package rest provides the HTTP JSON surface.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/app/recommend"
)

// Recommender runs recommendation requests.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// Config configures the router.
type Config struct {
	CORSOrigins        []string
	RateLimitPerMinute int // 0 disables rate limiting
}

// NewRouter builds the router. Callers may mount further handlers on it.
func NewRouter(cfg Config, rec Recommender) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Connect-Protocol-Version"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	h := &handler{recommender: rec}
	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(cfg.RateLimitPerMinute, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				}),
			))
		}
		r.Post("/recommend", h.recommend)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zlog.Debug().Msgf("http request: method=%s path=%s status=%d elapsed=%s",
			r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
