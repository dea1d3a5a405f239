package cart

import (
	"math"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

// TaxRates maps a product category to its configured tax rate
// (e.g. 0.05 for sweets). Rates come from configuration, never from code.
type TaxRates map[domain.Category]float64

// Engine holds the working cart for one customer session. A cart is keyed
// by item id with no duplicates; item order is insertion order. Only one
// logical actor mutates a given cart, so the engine needs no locking.
type Engine struct {
	items []domain.CartItem
}

func NewEngine() *Engine {
	return &Engine{}
}

// FromItems rebuilds an engine around items loaded from the session store.
func FromItems(items []domain.CartItem) *Engine {
	e := &Engine{items: make([]domain.CartItem, len(items))}
	copy(e.items, items)
	return e
}

// AddItem inserts the item with quantity 1, or increments the quantity if
// an item with the same id is already in the cart.
func (e *Engine) AddItem(item domain.CartItem) {
	for i := range e.items {
		if e.items[i].ID == item.ID {
			e.items[i].Quantity++
			return
		}
	}
	item.Quantity = 1
	e.items = append(e.items, item)
}

// UpdateQuantity sets the quantity for an item. A quantity of zero or less
// removes the item, same as RemoveItem.
func (e *Engine) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		e.RemoveItem(id)
		return
	}
	for i := range e.items {
		if e.items[i].ID == id {
			e.items[i].Quantity = quantity
			return
		}
	}
}

// RemoveItem removes the item if present; no-op otherwise.
func (e *Engine) RemoveItem(id string) {
	for i, item := range e.items {
		if item.ID == id {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return
		}
	}
}

func (e *Engine) Clear() {
	e.items = nil
}

func (e *Engine) Empty() bool {
	return len(e.items) == 0
}

// Items returns a copy; callers cannot mutate the cart behind the engine's
// back.
func (e *Engine) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(e.items))
	copy(out, e.items)
	return out
}

// ComputeTotals prices the current cart. Tax is summed per category first
// and rounded to two decimals at the category aggregate, not per line;
// rounding per line drifts from what the storefront shows the customer.
func (e *Engine) ComputeTotals(rates TaxRates, freeDeliveryThreshold float64) domain.CartTotals {
	var totals domain.CartTotals
	taxByCategory := make(map[domain.Category]float64)

	for _, item := range e.items {
		lineTotal := item.UnitPrice * float64(item.Quantity)
		totals.Subtotal += lineTotal
		taxByCategory[item.Category] += lineTotal * rates[item.Category]
		totals.TotalUnits += item.Quantity
	}

	for _, tax := range taxByCategory {
		totals.TaxAmount += round2(tax)
	}

	totals.Subtotal = round2(totals.Subtotal)
	totals.TaxAmount = round2(totals.TaxAmount)
	totals.Total = round2(totals.Subtotal + totals.TaxAmount)
	totals.FreeDelivery = freeDeliveryThreshold > 0 && totals.Subtotal >= freeDeliveryThreshold
	return totals
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
