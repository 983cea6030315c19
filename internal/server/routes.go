package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"currency_flip/pkg/middlewarex"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/leagues", func(r chi.Router) {
				r.Get("/", handler(s.getV1Leagues))

				r.Route("/{league}", func(r chi.Router) {
					r.Use(middlewarex.League)

					r.Get("/conversions", handler(s.getV1Conversions))
					r.Get("/snapshots", handler(s.getV1Snapshots))
				})
			})

			r.Get("/snapshots/{id}", handler(s.getV1Snapshot))
			r.Post("/pathfind", handler(s.postV1Pathfind))
			r.Post("/scans", handler(s.postV1Scans))
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			replyError(w, r, err)
		}
	}
}
