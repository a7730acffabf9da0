package storeclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// View is the screen the controller currently presents.
type View int

const (
	ViewProducts View = iota
	ViewCart
	ViewCheckout
)

func (v View) String() string {
	switch v {
	case ViewCart:
		return "cart"
	case ViewCheckout:
		return "checkout"
	default:
		return "products"
	}
}

// Quantity policy applied on the client only; the server does not clamp.
const (
	minQty = 1
	maxQty = 99
)

const toastDuration = 3 * time.Second

// ErrAddInFlight is returned when an add for the same product is still
// outstanding. It backs the per-button disable behavior: rapid repeated
// clicks on one product do not stack requests.
var ErrAddInFlight = errors.New("add to cart already in flight for this product")

// Toast is a transient confirmation message.
type Toast struct {
	Message string
	Shown   bool
}

// Controller caches products and the cart and orchestrates API calls the way
// the storefront UI does: every mutation is followed by an unconditional
// re-fetch of the cart, so the local snapshot always reflects server state
// after a round-trip. Failures surface as a dismissable banner; nothing is
// retried.
type Controller struct {
	client *Client

	mu         sync.Mutex
	products   []Product
	cart       Cart
	view       View
	receipt    *Receipt
	banner     string
	pendingAdd string
	toast      Toast

	// The toast timer is replaced, not merely rescheduled, on every new
	// toast; toastGen invalidates callbacks from stopped timers that had
	// already fired.
	toastTimer *time.Timer
	toastGen   int
	toastDelay time.Duration
}

func NewController(client *Client) *Controller {
	return &Controller{
		client:     client,
		cart:       Cart{Items: []CartLine{}, Total: "0.00"},
		toastDelay: toastDuration,
	}
}

// Open loads products and the cart concurrently, as the UI does on mount.
// Each fetch failure sets its own banner message; the last writer wins.
func (c *Controller) Open(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, err := c.client.Products(ctx)
		if err != nil {
			c.setBanner("Failed to fetch products. Please try refreshing the page.")
			return err
		}
		c.mu.Lock()
		c.products = products
		c.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		cart, err := c.client.Cart(ctx)
		if err != nil {
			c.setBanner("Failed to fetch your cart. Please try again.")
			return err
		}
		c.setCart(cart)
		return nil
	})

	return g.Wait()
}

// RefreshCart re-fetches the cart snapshot from the server.
func (c *Controller) RefreshCart(ctx context.Context) error {
	cart, err := c.client.Cart(ctx)
	if err != nil {
		c.setBanner("Failed to fetch your cart. Please try again.")
		return err
	}
	c.setCart(cart)
	return nil
}

// AddToCart adds qty of the product and re-fetches the cart. While an add for
// the same product is in flight, further adds of that product are refused.
func (c *Controller) AddToCart(ctx context.Context, productID string, qty int) error {
	qty = clampQty(qty)

	c.mu.Lock()
	if c.pendingAdd == productID {
		c.mu.Unlock()
		return ErrAddInFlight
	}
	c.pendingAdd = productID
	c.banner = ""
	var name string
	for _, p := range c.products {
		if p.ID == productID {
			name = p.Name
			break
		}
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pendingAdd = ""
		c.mu.Unlock()
	}()

	if _, err := c.client.AddToCart(ctx, productID, qty); err != nil {
		c.setBanner("Failed to add item to cart.")
		return err
	}

	if err := c.RefreshCart(ctx); err != nil {
		return err
	}

	if name == "" {
		name = "Item"
	}
	c.showToast(name + " added to cart!")
	return nil
}

// UpdateQuantity changes a line's quantity (clamped to the 1..99 policy) and
// re-fetches the cart. A target of zero removes the line.
func (c *Controller) UpdateQuantity(ctx context.Context, lineID string, qty int) error {
	if qty > 0 {
		qty = clampQty(qty)
	}

	c.setBanner("")
	if _, err := c.client.UpdateQuantity(ctx, lineID, qty); err != nil {
		c.setBanner("Failed to update item quantity.")
		return err
	}
	return c.RefreshCart(ctx)
}

// Remove deletes a line and re-fetches the cart.
func (c *Controller) Remove(ctx context.Context, lineID string) error {
	c.setBanner("")
	if err := c.client.RemoveFromCart(ctx, lineID); err != nil {
		c.setBanner("Failed to remove item from cart.")
		return err
	}
	if err := c.RefreshCart(ctx); err != nil {
		return err
	}
	c.showToast("Item removed from cart.")
	return nil
}

// Checkout submits the current cart snapshot, records the receipt, empties
// the local cart, and returns to the products view.
func (c *Controller) Checkout(ctx context.Context) (*Receipt, error) {
	c.mu.Lock()
	items := make([]CartLine, len(c.cart.Items))
	copy(items, c.cart.Items)
	c.banner = ""
	c.mu.Unlock()

	receipt, err := c.client.Checkout(ctx, items)
	if err != nil {
		c.setBanner("Checkout failed. Please try again.")
		return nil, err
	}

	c.mu.Lock()
	c.receipt = &receipt
	c.cart = Cart{Items: []CartLine{}, Total: "0.00"}
	c.view = ViewProducts
	c.mu.Unlock()

	return &receipt, nil
}

func (c *Controller) Products() []Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Controller) CartSnapshot() Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]CartLine, len(c.cart.Items))
	copy(items, c.cart.Items)
	return Cart{Items: items, Total: c.cart.Total}
}

func (c *Controller) CurrentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) SetView(v View) {
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
}

// LastReceipt returns the receipt of the most recent checkout, if any.
func (c *Controller) LastReceipt() *Receipt {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.receipt == nil {
		return nil
	}
	r := *c.receipt
	return &r
}

// Banner returns the current error banner, empty when none is shown.
func (c *Controller) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

func (c *Controller) DismissBanner() {
	c.setBanner("")
}

// PendingProductID reports the product whose add is currently in flight.
func (c *Controller) PendingProductID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingAdd
}

func (c *Controller) Toast() Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toast
}

func (c *Controller) CloseToast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toastGen++
	c.toast = Toast{}
}

func (c *Controller) setBanner(msg string) {
	c.mu.Lock()
	c.banner = msg
	c.mu.Unlock()
}

func (c *Controller) setCart(cart Cart) {
	if cart.Items == nil {
		cart.Items = []CartLine{}
	}
	c.mu.Lock()
	c.cart = cart
	c.mu.Unlock()
}

func (c *Controller) showToast(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.toastTimer != nil {
		c.toastTimer.Stop()
	}
	c.toastGen++
	gen := c.toastGen
	c.toast = Toast{Message: msg, Shown: true}

	c.toastTimer = time.AfterFunc(c.toastDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// A newer toast (or a manual close) owns the state now.
		if c.toastGen != gen {
			return
		}
		c.toast = Toast{}
	})
}

func clampQty(qty int) int {
	if qty < minQty {
		return minQty
	}
	if qty > maxQty {
		return maxQty
	}
	return qty
}
