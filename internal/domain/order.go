package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusReceived   OrderStatus = "received"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusReceived, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo is the status transition table:
// received -> processing -> completed, cancelled reachable from any
// non-terminal state. Same-value writes are allowed (idempotent).
func CanTransitionTo(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case OrderStatusReceived:
		return to == OrderStatusProcessing || to == OrderStatusCancelled
	case OrderStatusProcessing:
		return to == OrderStatusCompleted || to == OrderStatusCancelled
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusReceived PaymentStatus = "received"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusReceived
}

type CustomerContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderItem is a value copy of a cart item frozen at order creation time.
// Later cart or catalog changes cannot alter a placed order.
type OrderItem struct {
	ItemID    string   `json:"item_id"`
	Name      string   `json:"name"`
	UnitPrice float64  `json:"unit_price"`
	Quantity  int      `json:"quantity"`
	Unit      string   `json:"unit"`
	Category  Category `json:"category"`
}

type Order struct {
	ID                  uuid.UUID       `json:"id"`
	Customer            CustomerContact `json:"customer"`
	Address             string          `json:"address"`
	SpecialInstructions string          `json:"special_instructions"`
	Items               []OrderItem     `json:"items"`
	Subtotal            float64         `json:"subtotal"`
	TaxAmount           float64         `json:"tax_amount"`
	TotalAmount         float64         `json:"total_amount"`
	TotalUnits          int             `json:"total_units"`
	Status              OrderStatus     `json:"status"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// OverdueAge is how old a non-terminal order may get before the console
// flags it.
const OverdueAge = 24 * time.Hour

func (o *Order) Overdue(now time.Time) bool {
	return !o.Status.IsTerminal() && now.Sub(o.CreatedAt) > OverdueAge
}

// ShortID is the operator-facing order reference (uppercased uuid prefix).
func (o *Order) ShortID() string {
	s := o.ID.String()
	if len(s) > 8 {
		s = s[:8]
	}
	return upperASCII(s)
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
