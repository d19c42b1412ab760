// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cardvault/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(cardHandler *handler.CardHandler, paymentHandler *handler.PaymentHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Saved-card vault routes
	r.Route("/cards", func(r chi.Router) {
		r.Get("/", cardHandler.ListCards)
		r.Post("/", cardHandler.AddCard)
		r.Put("/{cardID}/primary", cardHandler.SetPrimary)
		r.Delete("/{cardID}", cardHandler.DeleteCard)
	})

	// Charge attempts sit above the vault
	r.Post("/payments/charge", paymentHandler.ChargeCard)

	return r
}
