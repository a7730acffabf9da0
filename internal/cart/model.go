package cart

import "fmt"

// Line is one row of a user's cart: a chosen quantity of a single product.
// Name and price are denormalized from the product at add time, so later
// catalog changes do not retroactively alter a cart already holding the item.
type Line struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Qty       int    `json:"qty"`
}

// Cart is the read model returned by GET /api/cart. Total is computed on
// read, never stored.
type Cart struct {
	Items []Line `json:"items"`
	Total string `json:"total"`
}

// FormatTotal renders a cent amount as a fixed two-decimal string.
func FormatTotal(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// Total sums price*qty over the given lines.
func Total(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Price * int64(l.Qty)
	}
	return sum
}
