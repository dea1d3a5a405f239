package domain

import "time"

// Snapshot sources, recorded so operators can tell which path the customer
// took before dropping off.
const (
	SnapshotSourceCheckout = "otp_checkout"
	SnapshotSourceWhatsApp = "whatsapp"
)

// AbandonedCartSnapshot captures checkout intent before verification
// completes. Immutable once written; advisory data for recovery outreach,
// never part of the order-creation transaction.
type AbandonedCartSnapshot struct {
	ID           string     `json:"id" bson:"_id"`
	CustomerName string     `json:"customer_name" bson:"customer_name"`
	Email        string     `json:"email" bson:"email"`
	Phone        string     `json:"phone" bson:"phone"`
	Items        []CartItem `json:"items" bson:"items"`
	Subtotal     float64    `json:"subtotal" bson:"subtotal"`
	TaxAmount    float64    `json:"tax_amount" bson:"tax_amount"`
	Total        float64    `json:"total" bson:"total"`
	Source       string     `json:"source" bson:"source"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
}
