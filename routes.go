package main

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Router builds the HTTP API.
func Router() chi.Router {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Recoverer) // make sure this is last

	r.Route("/api", func(r chi.Router) {
		// login
		r.Post("/login", Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Get("/refresh_token", JWTRefresh)

			r.Post("/stop", StopAll)

			r.Route("/units", func(r chi.Router) {
				r.Get("/", ListUnits)

				r.Route("/{name}", func(r chi.Router) {
					r.Get("/", GetUnit)
					r.Put("/", UpdateUnit)
					r.Post("/stop", StopUnit)
					r.Get("/revision", GetRevision)
				})
			})
		})
	})

	r.Route("/ws", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/state", StateStreamHandler)
	})

	return r
}

// authenticated enforces JWT validation unless running in debug mode.
func authenticated(next http.Handler) http.Handler {
	validated := ValidateJWT(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ENV.DEBUG {
			next.ServeHTTP(w, r)
			return
		}
		validated.ServeHTTP(w, r)
	})
}
