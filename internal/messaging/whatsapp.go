// Package messaging builds the WhatsApp deep links the storefront and the
// admin console hand off to. A deep link is a URL with a pre-filled,
// human-readable message; sending it is entirely on the operator's side.
package messaging

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

// DeepLink builds a wa.me URL for the given phone number with the message
// pre-filled. Non-digit characters in the phone number are stripped.
func DeepLink(phone, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", digitsOnly(phone), url.QueryEscape(message))
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteByte(byte(c))
		}
	}
	return b.String()
}

// StatusMessage is the per-status reminder template for an order.
func StatusMessage(o *domain.Order) string {
	ref := o.ShortID()
	switch o.Status {
	case domain.OrderStatusReceived:
		return fmt.Sprintf("Namaste %s! We have received your order #%s (₹%.2f). We will start preparing it shortly.", o.Customer.Name, ref, o.TotalAmount)
	case domain.OrderStatusProcessing:
		return fmt.Sprintf("Namaste %s! Your order #%s is being prepared. We will let you know once it is ready.", o.Customer.Name, ref)
	case domain.OrderStatusCompleted:
		return fmt.Sprintf("Namaste %s! Your order #%s is ready. Thank you for ordering with Srinidhi Feast!", o.Customer.Name, ref)
	case domain.OrderStatusCancelled:
		return fmt.Sprintf("Namaste %s, your order #%s has been cancelled. Please reach out if this was a mistake.", o.Customer.Name, ref)
	}
	return fmt.Sprintf("Namaste %s! Update on your order #%s.", o.Customer.Name, ref)
}

// PaymentReminderMessage is the generic payment nudge, independent of
// order status.
func PaymentReminderMessage(o *domain.Order) string {
	return fmt.Sprintf("Namaste %s! A gentle reminder: payment of ₹%.2f for order #%s is pending. Thank you!", o.Customer.Name, o.TotalAmount, o.ShortID())
}

// OrderSummaryMessage is the pre-filled message for the direct WhatsApp
// checkout handoff, which bypasses the OTP flow entirely.
func OrderSummaryMessage(name, address string, items []domain.CartItem, totals domain.CartTotals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order from %s\n", name)
	for _, item := range items {
		fmt.Fprintf(&b, "- %s x%d %s @ ₹%.2f\n", item.Name, item.Quantity, item.Unit, item.UnitPrice)
	}
	fmt.Fprintf(&b, "Subtotal: ₹%.2f\nTax: ₹%.2f\nTotal: ₹%.2f\n", totals.Subtotal, totals.TaxAmount, totals.Total)
	if totals.FreeDelivery {
		b.WriteString("Free delivery\n")
	}
	fmt.Fprintf(&b, "Deliver to: %s", address)
	return b.String()
}
