package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fintrack-server/src/handlers"
	"fintrack-server/src/middleware"
)

type Services struct {
	Auth         handlers.Authenticator
	Verifier     middleware.TokenVerifier
	Transactions handlers.TransactionService
	CORSOrigins  []string
	// AccessLog enables chi's request logger; tests leave it off.
	AccessLog    bool
}

func NewRouter(s Services) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if s.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(s.CORSOrigins))

	r.Get("/health", handlers.Health())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", handlers.Signup(s.Auth))
		r.Post("/login", handlers.Login(s.Auth))
	})

	// Protected routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.JWTAuthMiddleware(s.Verifier))

		r.Get("/transactions", handlers.ListTransactions(s.Transactions))
		r.Post("/transactions", handlers.CreateTransaction(s.Transactions))
		r.Put("/transactions/{id}", handlers.UpdateTransaction(s.Transactions))
		r.Delete("/transactions/{id}", handlers.DeleteTransaction(s.Transactions))
		r.Get("/summary", handlers.GetSummary(s.Transactions))
	})

	return r
}
