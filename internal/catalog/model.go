package catalog

// Product is a catalog entry. Prices are stored in the smallest currency
// unit (cents) to keep arithmetic exact. Products are immutable after
// seeding; the API only ever reads them.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl"`
}
