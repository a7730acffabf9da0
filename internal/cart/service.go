package cart

import (
	"context"
	"fmt"

	"github.com/vibecommerce/storefront/internal/catalog"
)

// ProductGetter is the slice of the catalog the cart needs: resolving a
// product id before it is copied into a line.
type ProductGetter interface {
	Get(ctx context.Context, productID string) (catalog.Product, error)
}

// Service implements the cart operations on top of the repository.
// The user identifier is threaded explicitly through every call; there is no
// ambient "current user".
type Service struct {
	repo     Repository
	products ProductGetter
}

func NewService(repo Repository, products ProductGetter) *Service {
	return &Service{repo: repo, products: products}
}

// Add resolves the product and adds it to the user's cart, folding repeated
// adds of the same product into a single line. Returns the resulting line and
// whether it was newly created. The 1..99 quantity clamp is a client-side
// policy; the server does not enforce an upper bound.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) (Line, bool, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return Line{}, false, fmt.Errorf("resolve product: %w", err)
	}

	return s.repo.Upsert(ctx, Line{
		UserID:    userID,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Qty:       qty,
	})
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes
// the line instead and returns a nil line; removal of an absent line succeeds
// silently. Updates of an absent line report ErrNotFound.
func (s *Service) UpdateQuantity(ctx context.Context, userID, lineID string, qty int) (*Line, error) {
	if qty <= 0 {
		if _, err := s.repo.Delete(ctx, userID, lineID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	l, err := s.repo.UpdateQty(ctx, userID, lineID, qty)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Remove deletes a line scoped to the user; ErrNotFound when nothing was
// deleted.
func (s *Service) Remove(ctx context.Context, userID, lineID string) error {
	rows, err := s.repo.Delete(ctx, userID, lineID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCart returns all of the user's lines plus the computed total.
func (s *Service) GetCart(ctx context.Context, userID string) (Cart, error) {
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	return Cart{Items: lines, Total: FormatTotal(Total(lines))}, nil
}
