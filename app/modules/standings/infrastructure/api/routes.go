// Package standingsapi serves the standings REST API.
package standingsapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	standingsservice "github.com/Black-And-White-Club/tabroom/app/modules/standings/application"
	standingsauth "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/auth"
	standingsqueue "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/queue"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// JobLister reports queued recompute jobs.
type JobLister interface {
	PendingJobs(ctx context.Context, eventID string) ([]standingsqueue.JobInfo, error)
}

// Config tunes the HTTP surface.
type Config struct {
	AllowedOrigins []string
	// RequestsPerSecond and Burst bound each client IP.
	RequestsPerSecond float64
	Burst             int
	RequestTimeout    time.Duration
}

// API serves standings over HTTP.
type API struct {
	service standingsservice.Service
	auth    standingsauth.Provider
	logger  *slog.Logger
	live    http.HandlerFunc
	jobs    JobLister
}

// Option customizes an API.
type Option func(*API)

// WithLive mounts a websocket handler on /ws.
func WithLive(h http.HandlerFunc) Option {
	return func(a *API) { a.live = h }
}

// WithJobs enables the admin job listing.
func WithJobs(jobs JobLister) Option {
	return func(a *API) { a.jobs = jobs }
}

func New(service standingsservice.Service, auth standingsauth.Provider, logger *slog.Logger, opts ...Option) *API {
	a := &API{service: service, auth: auth, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Routes builds the router. Reads are public; writes need an admin token.
func (a *API) Routes(cfg Config) http.Handler {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 40
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(standingsauth.RateLimitMiddleware(standingsauth.NewIPRateLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, envelope{"status": "ok"})
	})

	r.Route("/api/events/{eventID}", func(r chi.Router) {
		if a.live != nil {
			r.Get("/ws", a.live)
		}

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
			r.Get("/standings", a.getStandings)
			r.Get("/tiers", a.getTiers)
			r.Get("/compare", a.comparePair)
			r.Get("/standings.xlsx", a.exportXLSX)
			r.Get("/registrations/{registrationID}/speaks.png", a.speakerChart)
		})

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
			r.Use(standingsauth.RequireRole(a.auth, a.logger, standingsauth.RoleAdmin))
			r.Put("/", a.configureEvent)
			r.Post("/ballots", a.submitBallot)
			r.Put("/tiebreakers", a.updateTiebreakers)
			r.Post("/recompute", a.recompute)
			r.Post("/archive", a.archive)
			r.Get("/jobs", a.listJobs)
		})
	})

	return r
}
