package domain

import "time"

// Category determines which configured tax rate applies to a line.
type Category string

const (
	CategorySweet   Category = "sweet"
	CategorySavoury Category = "savoury"
)

type CartItem struct {
	ID        string   `json:"id" bson:"id"`
	Name      string   `json:"name" bson:"name"`
	UnitPrice float64  `json:"unit_price" bson:"unit_price"`
	Quantity  int      `json:"quantity" bson:"quantity"`
	Unit      string   `json:"unit" bson:"unit"` // "kg", "pcs"
	Category  Category `json:"category" bson:"category"`
}

type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartTotals is the priced view of a cart. Tax is rounded per category
// aggregate, not per line, so the figures here are what the customer sees
// everywhere (cart page, order record, export).
type CartTotals struct {
	Subtotal     float64 `json:"subtotal"`
	TaxAmount    float64 `json:"tax_amount"`
	Total        float64 `json:"total"`
	TotalUnits   int     `json:"total_units"`
	FreeDelivery bool    `json:"free_delivery"`
}
