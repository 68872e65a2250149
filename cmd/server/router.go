package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/phrazzld/studyace/internal/api"
	apiMiddleware "github.com/phrazzld/studyace/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(app.corsMiddleware())

	authMW := apiMiddleware.NewAuthMiddleware(app.jwtService)
	sessionMW := apiMiddleware.NewSessionMiddleware(
		app.config.Session.CookieName,
		time.Duration(app.config.Session.TTLMinutes)*time.Minute,
		app.config.Session.CookieSecure,
	)
	api.RegisterRoutes(r, app.handlers(), authMW, sessionMW)

	r.Get("/health", api.Health)

	return r
}

// corsMiddleware allows the configured browser origins. Credentials are
// allowed so the session cookie travels with cross-origin requests, which
// means a wildcard origin is echoed back rather than sent as "*".
func (app *application) corsMiddleware() func(http.Handler) http.Handler {
	origins := app.config.Server.AllowedOrigins
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{apiMiddleware.TraceIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	for _, o := range origins {
		if o == "*" {
			opts.AllowedOrigins = nil
			opts.AllowOriginFunc = func(string) bool { return true }
			break
		}
	}
	return cors.New(opts).Handler
}
