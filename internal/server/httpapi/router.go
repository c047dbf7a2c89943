package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/portkeeper/portkeeper/internal/logging"
	"github.com/portkeeper/portkeeper/internal/token"
)

// NewRouter assembles the full route tree. /auth/signup, /auth/login,
// /auth/refresh, and /auth/logout are public; everything else requires a
// Bearer access token.
func NewRouter(auth Auth, catalog Catalog, codec *token.Codec, log logging.Logger) http.Handler {
	authHandler := NewAuthHandler(auth)
	servicesHandler := NewServicesHandler(catalog)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(log))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(codec))
			r.Post("/logout-all", authHandler.LogoutAll)
		})
	})

	r.Route("/services", func(r chi.Router) {
		r.Use(Authenticator(codec))
		r.Get("/", servicesHandler.List)
		r.Post("/", servicesHandler.Create)
		r.Get("/{id}", servicesHandler.Get)
		r.Patch("/{id}", servicesHandler.Update)
		r.Delete("/{id}", servicesHandler.Delete)
	})

	return r
}

func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}
