package model

// Product mirrors the `products` table. Rating is optional; everything
// else is required at insert time.
type Product struct {
	ProductID     string   `json:"productId"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Rating        *float64 `json:"rating"`
	StockQuantity int64    `json:"stockQuantity"`
}
