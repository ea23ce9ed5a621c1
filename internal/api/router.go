package api

import (
	"net/http"
	"time"

	"contest_tracker/internal/api/handler"
	"contest_tracker/internal/app/service"
	"contest_tracker/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	contestService *service.ContestService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// JWT Auth Middleware Setup
	// It will search for a token in "Authorization: Bearer T".
	r.Use(jwtauth.Verifier(security.TokenAuth)) // Verifies token, puts claims in context

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		// Contest routes (public reads, admin solution-link writes)
		contestHandler := handler.NewContestHandler(contestService)
		v1.Route("/contests", contestHandler.RegisterRoutes)
	})

	return r
}
