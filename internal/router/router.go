package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/authline/authline/internal/middleware/metrics"
	"github.com/authline/authline/internal/setup"
)

// New creates and configures the chi router with all the routes.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)

	// setup CORS for browser frontends
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/login", h.SignIn)
		r.Post("/forgot_password", h.ForgotPassword)
		r.Post("/reset_password/{token}", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())
			r.Get("/user", h.GetUser)
			r.Post("/logout", h.Logout)
		})
	})

	// avoid 404s for preflight requests
	r.Options("/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
