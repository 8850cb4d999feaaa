package handlers

import (
	"os"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes
		r.Post("/auth/signup", h.SignUpHandler)
		r.Post("/auth/login", h.LoginHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)
			r.Use(h.SessionContext)

			r.Post("/auth/logout", h.LogoutHandler)
			r.Post("/certificates", h.IssueHandler)
			r.Get("/certificates", h.ListCertificatesHandler)
			r.Get("/health", h.HealthHandler)
		})
	})
}

// InitAuth builds the shared token authority used both to issue
// session tokens and to verify them on secure routes.
func InitAuth() *jwtauth.JWTAuth {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	return jwtauth.New("HS256", []byte(jwtKey), nil)
}
