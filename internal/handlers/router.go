package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig bundles what the router needs
type RouterConfig struct {
	Auth           *AuthHandler
	Advice         *AdviceHandler
	Media          *MediaHandler
	Home           *HomeHandler
	Middleware     *Middleware
	Metrics        *Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// NewRouter wires every route of the API
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cfg.Middleware.Logging)
	r.Use(middleware.Recoverer)
	r.Use(cfg.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/", cfg.Home.Home)
	r.Get("/healthz", cfg.Home.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	r.Post("/auth/register", cfg.Auth.Register)
	r.Post("/auth/login", cfg.Auth.Login)

	// Bearer protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(cfg.Middleware.RequireAuth)

		pr.Get("/users/me", cfg.Auth.Me)

		pr.Post("/advices", cfg.Advice.Create)
		pr.Get("/advices", cfg.Advice.List)
		pr.Get("/advices/{id}", cfg.Advice.Get)
		pr.Put("/advices/{id}", cfg.Advice.Update)
		pr.Delete("/advices/{id}", cfg.Advice.Delete)
		pr.Put("/advices/{id}/read", cfg.Advice.MarkRead)
		pr.Put("/advices/{id}/favorite", cfg.Advice.ToggleFavorite)
		pr.Post("/advices/{id}/unlock", cfg.Advice.Unlock)

		pr.Post("/upload-media", cfg.Media.Upload)
		pr.Get("/stats", cfg.Advice.Stats)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondDetail(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondDetail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
