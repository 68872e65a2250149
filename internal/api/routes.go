package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/studyace/internal/api/middleware"
)

// Handlers groups the route handlers mounted by RegisterRoutes.
type Handlers struct {
	Auth     *AuthHandler
	Account  *AccountHandler
	Sets     *SetHandler
	Practice *PracticeHandler
}

// RegisterRoutes mounts the /api routes on r. Every route gets an anonymous
// session cookie; signed-in-only routes sit behind authMW.Authenticate and
// the rest accept an optional bearer token.
func RegisterRoutes(
	r chi.Router,
	h Handlers,
	authMW *middleware.AuthMiddleware,
	sessionMW *middleware.SessionMiddleware,
) {
	r.Route("/api", func(r chi.Router) {
		r.Use(sessionMW.Handle)

		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.RefreshToken)

		// Signed-in only
		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)

			r.Get("/me", h.Account.Dashboard)
			r.Delete("/me", h.Account.DeleteAccount)
			r.Put("/me/username", h.Account.ChangeUsername)
			r.Put("/me/password", h.Account.ChangePassword)

			r.Get("/sets", h.Sets.ListSets)
			r.Post("/sets", h.Sets.CreateSet)
			r.Post("/sets/import", h.Sets.ImportSet)
			r.Put("/sets/{id}", h.Sets.UpdateSet)
			r.Delete("/sets/{id}", h.Sets.DeleteSet)
			r.Get("/sets/{id}/export", h.Sets.ExportSet)
		})

		// Signed-in users or anonymous sessions
		r.Group(func(r chi.Router) {
			r.Use(authMW.Optional)

			r.Get("/sets/{id}", h.Sets.GetSet)
			r.Get("/sets/{id}/search", h.Sets.SearchCards)
			r.Get("/sets/{id}/tags", h.Sets.Tags)

			r.Get("/practice/{setID}/{discipline}", h.Practice.CurrentQuestion)
			r.Post("/practice/{setID}/{discipline}/answer", h.Practice.SubmitAnswer)
			r.Get("/challenge", h.Practice.ChallengeStatus)
			r.Get("/leaderboard", h.Account.Leaderboard)
		})
	})
}
