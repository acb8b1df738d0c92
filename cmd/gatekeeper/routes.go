package main

import (
	"net/http"

	"github.com/dimitrije/gatekeeper/internal/handlers"
	authmw "github.com/dimitrije/gatekeeper/internal/middleware"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

type routes struct {
	auth    *handlers.AuthHandler
	email   *handlers.EmailAuthHandler
	events  *handlers.EventsHandler
	users   *handlers.UserHandler
	repos   *handlers.RepoHandler
	health  *handlers.HealthHandler
	docs    *handlers.DocsHandler
	release bool
}

// newRouter builds the full /api/v1 route table. OAuth routes live under
// /auth/oauth so the provider wildcard never shares a segment with the
// static /auth routes.
func newRouter(r routes, tokens authmw.TokenValidator) http.Handler {
	app := drift.New()

	if r.release {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/oauth/:provider/callback", r.auth.Callback)
	auth.Post("/magic-link", r.email.RequestMagicLink)
	auth.Post("/magic-link/verify", r.email.VerifyMagicLink)
	auth.Post("/refresh", r.email.RefreshToken)

	session := api.Group("")
	session.Use(authmw.OptionalAuth(tokens))
	session.Post("/auth/oauth/:provider/signin", r.auth.SignIn)
	session.Get("/auth/session", r.auth.Session)
	session.Get("/auth/user", r.auth.User)
	session.Post("/auth/signout", r.auth.SignOut)

	protected := api.Group("")
	protected.Use(authmw.Auth(tokens))
	protected.Post("/auth/email/signout", r.email.SignOut)
	protected.Get("/auth/events", r.events.Stream)
	protected.Get("/users/me", r.users.GetMe)
	protected.Patch("/users/me", r.users.UpdateMe)
	protected.Get("/repos/:owner/:repo", r.repos.GetRepository)
	protected.Get("/repos/:owner/:repo/pulls/:number", r.repos.GetPullRequest)

	api.Get("/health", r.health.Check)
	api.Get("/openapi.json", r.docs.OpenAPI)

	return app
}
