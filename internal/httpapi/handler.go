package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vibecommerce/storefront/internal/cart"
	"github.com/vibecommerce/storefront/internal/catalog"
	"github.com/vibecommerce/storefront/internal/checkout"
	"github.com/vibecommerce/storefront/internal/middleware"
)

const requestTimeout = 3 * time.Second

// The handler depends on narrow service interfaces so tests can swap in
// fakes.

type CatalogService interface {
	List(ctx context.Context) ([]catalog.Product, error)
}

type CartService interface {
	Add(ctx context.Context, userID, productID string, qty int) (cart.Line, bool, error)
	UpdateQuantity(ctx context.Context, userID, lineID string, qty int) (*cart.Line, error)
	Remove(ctx context.Context, userID, lineID string) error
	GetCart(ctx context.Context, userID string) (cart.Cart, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, userID string, submitted []checkout.LineInput) (checkout.Receipt, error)
}

type Handler struct {
	catalog  CatalogService
	cart     CartService
	checkout CheckoutService
	logger   *log.Logger
}

func NewHandler(catalogSvc CatalogService, cartSvc CartService, checkoutSvc CheckoutService, logger *log.Logger) *Handler {
	return &Handler{catalog: catalogSvc, cart: cartSvc, checkout: checkoutSvc, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	products, err := h.catalog.List(ctx)
	if err != nil {
		h.logger.Printf("list products: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := h.cart.GetCart(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.logger.Printf("get cart: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" || req.Qty < 1 {
		writeError(w, http.StatusBadRequest, "productId and a positive qty are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	line, created, err := h.cart.Add(ctx, middleware.GetUserID(ctx), req.ProductID, req.Qty)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Printf("add to cart: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, line)
}

type updateQtyRequest struct {
	Qty int `json:"qty"`
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "id")

	var req updateQtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	line, err := h.cart.UpdateQuantity(ctx, middleware.GetUserID(ctx), lineID, req.Qty)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		h.logger.Printf("update quantity: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Zero-quantity updates delete the line and carry no body.
	if line == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, line)
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.cart.Remove(ctx, middleware.GetUserID(ctx), lineID); err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		h.logger.Printf("remove from cart: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type checkoutRequest struct {
	CartItems []checkout.LineInput `json:"cartItems"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	receipt, err := h.checkout.Checkout(ctx, middleware.GetUserID(ctx), req.CartItems)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			writeError(w, http.StatusBadRequest, "Cannot checkout with an empty cart")
			return
		}
		h.logger.Printf("checkout: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
