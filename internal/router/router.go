package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ochan-dev/ochan/internal/handler"
	"github.com/ochan-dev/ochan/internal/middleware/metrics"
)

func New(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chi_middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Real-IP"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/boards", h.CreateBoard)

		r.Route("/{board}", func(r chi.Router) {
			r.Get("/", h.GetBoard)
			r.Post("/", h.CreateThread)

			r.Route("/{thread}", func(r chi.Router) {
				r.Get("/", h.GetThread)
				r.Post("/", h.CreateReply)
				r.Get("/{post}", h.GetPost)
			})
		})

		r.Post("/admin/{board}/{thread}/{flag}", h.ToggleThreadFlag)
	})

	return r
}
