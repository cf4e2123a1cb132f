package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

func Routes(h *Handler, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))

	r.Get("/health", h.Health)

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", h.CreateProject)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetStatus)
			r.Post("/start", h.StartProject)
			r.Get("/jobs", h.ListJobs)
			r.Get("/artifacts/{kind}", h.GetArtifact)
			r.Post("/approve", h.Approve)
			r.Post("/cancel", h.Cancel)
			r.Post("/retry", h.Retry)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
