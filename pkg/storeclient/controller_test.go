package storeclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// stubAPI is a minimal in-memory storefront backend.
type stubAPI struct {
	mux *http.ServeMux

	products []Product
	cart     Cart

	cartFetches  atomic.Int64
	failNextAdd  atomic.Bool
	lastCheckout []CartLine
}

func newStubAPI() *stubAPI {
	s := &stubAPI{
		products: []Product{
			{ID: "p1", Name: "Classic Tee", Price: 2499},
			{ID: "p2", Name: "Beanie Hat", Price: 1499},
		},
		cart: Cart{Items: []CartLine{}, Total: "0.00"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.products)
	})
	mux.HandleFunc("GET /api/cart", func(w http.ResponseWriter, r *http.Request) {
		s.cartFetches.Add(1)
		writeJSON(w, http.StatusOK, s.cart)
	})
	mux.HandleFunc("POST /api/cart", func(w http.ResponseWriter, r *http.Request) {
		if s.failNextAdd.Swap(false) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		var req struct {
			ProductID string `json:"productId"`
			Qty       int    `json:"qty"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		line := CartLine{ID: "l-" + req.ProductID, UserID: "user1", ProductID: req.ProductID, Qty: req.Qty, Price: 2499}
		s.cart.Items = append(s.cart.Items, line)
		s.cart.Total = "49.98"
		writeJSON(w, http.StatusCreated, line)
	})
	mux.HandleFunc("DELETE /api/cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.cart = Cart{Items: []CartLine{}, Total: "0.00"}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("PUT /api/cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Qty int `json:"qty"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Qty <= 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, CartLine{ID: r.PathValue("id"), Qty: req.Qty})
	})
	mux.HandleFunc("POST /api/checkout", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CartItems []CartLine `json:"cartItems"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.CartItems) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Cannot checkout with an empty cart"})
			return
		}
		s.lastCheckout = req.CartItems
		s.cart = Cart{Items: []CartLine{}, Total: "0.00"}
		writeJSON(w, http.StatusOK, Receipt{
			OrderID:   "VIBE-000001",
			Timestamp: time.Now().UTC(),
			Total:     "49.98",
			ItemCount: len(req.CartItems),
		})
	})
	s.mux = mux
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestController(t *testing.T) (*Controller, *stubAPI) {
	t.Helper()

	api := newStubAPI()
	srv := httptest.NewServer(api.mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "user1", srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return NewController(client), api
}

func TestOpenLoadsProductsAndCart(t *testing.T) {
	ctrl, api := newTestController(t)

	if err := ctrl.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	if len(ctrl.Products()) != 2 {
		t.Fatalf("expected 2 products, got %d", len(ctrl.Products()))
	}
	if got := ctrl.CartSnapshot(); got.Total != "0.00" || len(got.Items) != 0 {
		t.Fatalf("unexpected cart snapshot: %+v", got)
	}
	if n := api.cartFetches.Load(); n != 1 {
		t.Fatalf("expected 1 cart fetch on open, got %d", n)
	}
	if ctrl.CurrentView() != ViewProducts {
		t.Fatalf("expected products view, got %v", ctrl.CurrentView())
	}
}

func TestAddToCartRefetchesAndToasts(t *testing.T) {
	ctrl, api := newTestController(t)
	if err := ctrl.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := ctrl.AddToCart(context.Background(), "p1", 1); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	// open + post-mutation re-fetch
	if n := api.cartFetches.Load(); n != 2 {
		t.Fatalf("expected 2 cart fetches, got %d", n)
	}
	if got := ctrl.CartSnapshot(); len(got.Items) != 1 || got.Total != "49.98" {
		t.Fatalf("cart not refreshed from server: %+v", got)
	}

	toast := ctrl.Toast()
	if !toast.Shown || toast.Message != "Classic Tee added to cart!" {
		t.Fatalf("unexpected toast: %+v", toast)
	}
	if ctrl.PendingProductID() != "" {
		t.Fatalf("pending add should be cleared")
	}
}

func TestAddToCartFailureSetsBanner(t *testing.T) {
	ctrl, api := newTestController(t)
	if err := ctrl.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	api.failNextAdd.Store(true)
	if err := ctrl.AddToCart(context.Background(), "p1", 1); err == nil {
		t.Fatalf("expected error")
	}

	if got := ctrl.Banner(); got != "Failed to add item to cart." {
		t.Fatalf("unexpected banner: %q", got)
	}

	ctrl.DismissBanner()
	if ctrl.Banner() != "" {
		t.Fatalf("banner should be dismissable")
	}
}

func TestAddToCartRefusedWhileInFlight(t *testing.T) {
	ctrl, _ := newTestController(t)
	if err := ctrl.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	ctrl.mu.Lock()
	ctrl.pendingAdd = "p1"
	ctrl.mu.Unlock()

	if err := ctrl.AddToCart(context.Background(), "p1", 1); err != ErrAddInFlight {
		t.Fatalf("expected ErrAddInFlight, got %v", err)
	}
}

func TestToastAutoHides(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctrl.toastDelay = 20 * time.Millisecond

	ctrl.showToast("first")
	if got := ctrl.Toast(); !got.Shown {
		t.Fatalf("toast should be visible")
	}

	time.Sleep(60 * time.Millisecond)
	if got := ctrl.Toast(); got.Shown {
		t.Fatalf("toast should have auto-hidden: %+v", got)
	}
}

func TestNewToastReplacesTimer(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctrl.toastDelay = 50 * time.Millisecond

	ctrl.showToast("first")
	time.Sleep(30 * time.Millisecond)
	ctrl.showToast("second")

	// The first toast's deadline passes; the second must survive it.
	time.Sleep(30 * time.Millisecond)
	if got := ctrl.Toast(); !got.Shown || got.Message != "second" {
		t.Fatalf("second toast must outlive the first timer: %+v", got)
	}

	time.Sleep(40 * time.Millisecond)
	if got := ctrl.Toast(); got.Shown {
		t.Fatalf("second toast should eventually hide: %+v", got)
	}
}

func TestCheckoutResetsStateAndStoresReceipt(t *testing.T) {
	ctrl, api := newTestController(t)
	if err := ctrl.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := ctrl.AddToCart(context.Background(), "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	ctrl.SetView(ViewCheckout)

	receipt, err := ctrl.Checkout(context.Background())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if receipt.OrderID != "VIBE-000001" || receipt.ItemCount != 1 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if len(api.lastCheckout) != 1 {
		t.Fatalf("expected submitted snapshot of 1 line, got %d", len(api.lastCheckout))
	}

	if got := ctrl.CartSnapshot(); len(got.Items) != 0 || got.Total != "0.00" {
		t.Fatalf("cart should be reset locally: %+v", got)
	}
	if ctrl.CurrentView() != ViewProducts {
		t.Fatalf("expected return to products view")
	}
	if ctrl.LastReceipt() == nil {
		t.Fatalf("receipt should be retained")
	}
}

func TestCheckoutEmptyCartSetsBanner(t *testing.T) {
	ctrl, _ := newTestController(t)
	if err := ctrl.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := ctrl.Checkout(context.Background()); err == nil {
		t.Fatalf("expected error for empty cart")
	}
	if got := ctrl.Banner(); got != "Checkout failed. Please try again." {
		t.Fatalf("unexpected banner: %q", got)
	}
}

func TestClampQty(t *testing.T) {
	for _, tc := range []struct{ in, want int }{
		{-5, 1}, {0, 1}, {1, 1}, {50, 50}, {99, 99}, {150, 99},
	} {
		if got := clampQty(tc.in); got != tc.want {
			t.Fatalf("clampQty(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
