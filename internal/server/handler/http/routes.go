package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Schemes *SchemeHandler
	Auth    *AuthHandler
	Chat    *ChatHandler
	Videos  *VideoHandler
}

// NewRouter constructs the HTTP handler that serves the SchemeSeva API.
//
// Routes:
//
//	GET  /api/schemes            → Schemes.List
//	GET  /api/schemes/{id}       → Schemes.Get
//	GET  /api/categories         → Schemes.Categories
//	POST /api/auth/otp           → Auth.SendOTP
//	POST /api/auth/otp/verify    → Auth.VerifyOTP
//	POST /api/auth/login         → Auth.Login
//	POST /api/auth/password      → Auth.SetPassword (session)
//	POST /api/auth/logout        → Auth.Logout (session)
//	GET  /api/auth/session       → Auth.Session (session)
//	POST /api/chat               → Chat.Chat
//	GET  /api/videos/search      → Videos.Search
//
// Middleware chain (applied in order):
//  1. RequestID and Recoverer
//  2. AllowContentType("application/json") for request bodies
//  3. WithRequestLogging(logger)
//  4. SessionAuth on the protected group
func NewRouter(h Handlers, sessions middleware.SessionResolver, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/schemes", h.Schemes.List)
		r.Get("/schemes/{id}", h.Schemes.Get)
		r.Get("/categories", h.Schemes.Categories)

		r.Post("/chat", h.Chat.Chat)
		r.Get("/videos/search", h.Videos.Search)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp", h.Auth.SendOTP)
			r.Post("/otp/verify", h.Auth.VerifyOTP)
			r.Post("/login", h.Auth.Login)

			// Protected group: requires a live session
			r.Group(func(r chi.Router) {
				r.Use(middleware.SessionAuth(sessions, logger))
				r.Post("/password", h.Auth.SetPassword)
				r.Post("/logout", h.Auth.Logout)
				r.Get("/session", h.Auth.Session)
			})
		})
	})

	return r
}
