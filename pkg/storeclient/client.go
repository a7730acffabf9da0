// Package storeclient is a Go client for the storefront API. Client is the
// plain HTTP binding; Controller layers the stateful view logic on top of it.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Product mirrors the catalog entry served by GET /api/products.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl"`
}

// CartLine mirrors one cart row.
type CartLine struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Qty       int    `json:"qty"`
}

// Cart is the GET /api/cart response.
type Cart struct {
	Items []CartLine `json:"items"`
	Total string     `json:"total"`
}

// Receipt is the checkout confirmation.
type Receipt struct {
	OrderID   string    `json:"orderId"`
	Timestamp time.Time `json:"timestamp"`
	Total     string    `json:"total"`
	ItemCount int       `json:"itemCount"`
}

// APIError carries the status code and message of a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL *url.URL
	userID  string
	http    *http.Client
}

// NewClient binds to the API at baseURL, acting as userID. A nil httpClient
// falls back to a client with a 10s timeout.
func NewClient(baseURL, userID string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: u, userID: userID, http: httpClient}, nil
}

func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Cart(ctx context.Context) (Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

func (c *Client) AddToCart(ctx context.Context, productID string, qty int) (CartLine, error) {
	body := map[string]any{"productId": productID, "qty": qty}
	var line CartLine
	if err := c.do(ctx, http.MethodPost, "/api/cart", body, &line); err != nil {
		return CartLine{}, err
	}
	return line, nil
}

// UpdateQuantity returns the updated line, or nil when the server deleted the
// line (zero-quantity update, 204).
func (c *Client) UpdateQuantity(ctx context.Context, lineID string, qty int) (*CartLine, error) {
	body := map[string]any{"qty": qty}
	var line CartLine
	if err := c.do(ctx, http.MethodPut, "/api/cart/"+url.PathEscape(lineID), body, &line); err != nil {
		if err == errNoContent {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, lineID string) error {
	err := c.do(ctx, http.MethodDelete, "/api/cart/"+url.PathEscape(lineID), nil, nil)
	if err == errNoContent {
		return nil
	}
	return err
}

func (c *Client) Checkout(ctx context.Context, items []CartLine) (Receipt, error) {
	body := map[string]any{"cartItems": items}
	var receipt Receipt
	if err := c.do(ctx, http.MethodPost, "/api/checkout", body, &receipt); err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

// errNoContent marks a successful 204; it never escapes this package.
var errNoContent = fmt.Errorf("no content")

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-Id", c.userID)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return errNoContent
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
