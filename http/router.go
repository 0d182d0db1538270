package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const requestTimeout = 60 * time.Second

type Handlers struct {
	Analysis *AnalysisHandler
	Scenario *ScenarioHandler
	Compare  *CompareHandler
}

type RouterOptions struct {
	CORSOrigins []string
	// Limiter guards the computation endpoints; nil disables rate limiting.
	Limiter *RateLimiter
}

// NewRouter wires every endpoint and the shared middleware stack.
func NewRouter(h Handlers, opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	origins := []string{"*"}
	if len(opts.CORSOrigins) > 0 {
		origins = opts.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handleHealth)

	r.Route("/chit", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(RateLimit(opts.Limiter))
		}

		r.Post("/analyze", h.Analysis.Analyze)
		r.Get("/analyses", h.Analysis.History)
		r.Post("/installment", h.Analysis.Installment)

		r.Post("/scenarios", h.Scenario.Sweep)
		r.Post("/scenarios/optimal", h.Scenario.Optimal)
		r.Post("/scenarios/export", h.Scenario.Export)
		r.Post("/frequencies", h.Scenario.Frequencies)

		r.Post("/compare", h.Compare.Compare)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
