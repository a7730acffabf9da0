package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vibecommerce/storefront/internal/middleware"
)

func NewRouter(h *Handler, corsOrigins []string, defaultUserID string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)
	r.Use(middleware.CORS(corsOrigins))
	r.Use(middleware.UserID(defaultUserID))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/cart", h.GetCart)
		r.Post("/cart", h.AddToCart)
		r.Put("/cart/{id}", h.UpdateQuantity)
		r.Delete("/cart/{id}", h.RemoveFromCart)
		r.Post("/checkout", h.Checkout)
	})

	return r
}
