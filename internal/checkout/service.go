package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vibecommerce/storefront/internal/cart"
	"github.com/vibecommerce/storefront/internal/events"
	"github.com/vibecommerce/storefront/internal/sequence"
)

var ErrEmptyCart = errors.New("cannot checkout with an empty cart")

const orderSequenceKey = "orders"

// LineInput is the client's snapshot of a cart line as submitted at checkout.
// Only the shape is trusted: totals are recomputed from the server-side cart,
// and client-supplied prices are ignored.
type LineInput struct {
	ProductID string `json:"productId"`
	Price     int64  `json:"price"`
	Qty       int    `json:"qty"`
}

// Receipt is the ephemeral confirmation returned by checkout. It is not
// persisted as an order record.
type Receipt struct {
	OrderID   string    `json:"orderId"`
	Timestamp time.Time `json:"timestamp"`
	Total     string    `json:"total"`
	ItemCount int       `json:"itemCount"`
}

// CartStore is the slice of the cart the checkout needs.
type CartStore interface {
	ListByUser(ctx context.Context, userID string) ([]cart.Line, error)
	Clear(ctx context.Context, userID string) error
}

// EventPublisher emits the post-checkout notification. Publishing is
// best-effort: a broker failure never fails the checkout itself.
type EventPublisher interface {
	PublishCheckoutCompleted(ctx context.Context, userID string, payload events.CheckoutCompletedPayload) error
}

type Service struct {
	carts     CartStore
	sequences sequence.Repository
	publisher EventPublisher
	logger    *log.Logger

	now func() time.Time
}

func NewService(carts CartStore, sequences sequence.Repository, publisher EventPublisher, logger *log.Logger) *Service {
	return &Service{
		carts:     carts,
		sequences: sequences,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Checkout validates the submitted snapshot, recomputes the total from the
// server-side cart, clears the user's lines, and returns a receipt. The item
// count echoes the submitted snapshot length; nothing is verified against
// product availability and no order is persisted.
func (s *Service) Checkout(ctx context.Context, userID string, submitted []LineInput) (Receipt, error) {
	if len(submitted) == 0 {
		return Receipt{}, ErrEmptyCart
	}

	lines, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return Receipt{}, fmt.Errorf("load cart: %w", err)
	}
	total := cart.Total(lines)

	if err := s.carts.Clear(ctx, userID); err != nil {
		return Receipt{}, fmt.Errorf("clear cart: %w", err)
	}

	seq, err := s.sequences.Next(ctx, orderSequenceKey)
	if err != nil {
		return Receipt{}, fmt.Errorf("order sequence: %w", err)
	}

	receipt := Receipt{
		OrderID:   fmt.Sprintf("VIBE-%06d", seq),
		Timestamp: s.now().UTC(),
		Total:     cart.FormatTotal(total),
		ItemCount: len(submitted),
	}

	payload := events.CheckoutCompletedPayload{
		OrderID:   receipt.OrderID,
		UserID:    userID,
		Total:     total,
		ItemCount: receipt.ItemCount,
	}
	for _, l := range lines {
		payload.Items = append(payload.Items, events.CheckoutLineEvent{
			ProductID: l.ProductID,
			Quantity:  l.Qty,
			Price:     l.Price,
		})
	}
	if err := s.publisher.PublishCheckoutCompleted(ctx, userID, payload); err != nil {
		s.logger.Printf("publish checkout completed: %v", err)
	}

	return receipt, nil
}
