package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authsvc "github.com/akozyrev/leadwell/internal/auth"
	authv1 "github.com/akozyrev/leadwell/internal/http/auth"
	dealv1 "github.com/akozyrev/leadwell/internal/http/deal"
	leadv1 "github.com/akozyrev/leadwell/internal/http/lead"
	"github.com/akozyrev/leadwell/internal/http/middleware"
	userv1 "github.com/akozyrev/leadwell/internal/http/user"
)

func New(
	auth *authsvc.Service,
	allowedOrigins []string,
	authV1 *authv1.Handler,
	leadsV1 *leadv1.Handler,
	dealsV1 *dealv1.Handler,
	usersV1 *userv1.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Metrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", authV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(auth))

			r.Route("/leads", leadsV1.Routes)

			r.Route("/deals", func(r chi.Router) {
				r.Use(chimiddleware.AllowContentType("application/json"))
				dealsV1.Routes(r)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(chimiddleware.AllowContentType("application/json"))
				usersV1.Routes(r)
			})
		})
	})

	return router
}
